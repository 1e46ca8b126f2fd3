package store

import (
	"context"
	"fmt"
	"time"
)

// RecordSession appends a session to the history and returns it with its id.
func (s *Store) RecordSession(ctx context.Context, sess Session) (Session, error) {
	if sess.EndedAt.IsZero() {
		sess.EndedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (mode, task_id, category, planned_seconds, minutes, skipped, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.Mode, sess.TaskID, sess.Category, sess.PlannedSeconds, sess.Minutes, sess.Skipped,
		sess.EndedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return Session{}, fmt.Errorf("record session: %w", err)
	}
	sess.ID, _ = res.LastInsertId()
	sess.EndedAt = sess.EndedAt.UTC().Truncate(time.Second)
	return sess, nil
}

// ListSessions returns sessions matching f, most recent first.
func (s *Store) ListSessions(ctx context.Context, f SessionFilter) ([]Session, error) {
	query := `SELECT id, mode, task_id, category, planned_seconds, minutes, skipped, ended_at FROM sessions WHERE 1=1`
	var args []any

	if f.Mode != "" {
		query += ` AND mode = ?`
		args = append(args, f.Mode)
	}
	if f.TaskID != "" {
		query += ` AND task_id = ?`
		args = append(args, f.TaskID)
	}
	if f.From != nil {
		query += ` AND ended_at >= ?`
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		query += ` AND ended_at < ?`
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}
	if !f.IncludeSkipped {
		query += ` AND skipped = 0`
	}
	query += ` ORDER BY ended_at DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var endedAt string
		if err := rows.Scan(&sess.ID, &sess.Mode, &sess.TaskID, &sess.Category,
			&sess.PlannedSeconds, &sess.Minutes, &sess.Skipped, &endedAt); err != nil {
			return nil, err
		}
		sess.EndedAt, _ = time.Parse(time.RFC3339, endedAt)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// CountSessions returns how many countdowns of mode ended in [from, to),
// split into completed and skipped.
func (s *Store) CountSessions(ctx context.Context, mode string, from, to time.Time) (completed, skipped int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN skipped = 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN skipped = 1 THEN 1 ELSE 0 END), 0)
		FROM sessions
		WHERE mode = ?
		  AND ended_at >= ? AND ended_at < ?`,
		mode, from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	).Scan(&completed, &skipped)
	if err != nil {
		err = fmt.Errorf("count sessions: %w", err)
	}
	return
}
