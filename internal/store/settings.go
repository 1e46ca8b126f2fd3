package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sadopc/tomato/internal/period"
	"github.com/sadopc/tomato/internal/timer"
)

// Setting keys.
const (
	KeyWork            = "pomodoro_work"
	KeyBreak           = "pomodoro_break"
	KeyLongBreak       = "pomodoro_long_break"
	KeyCount           = "pomodoro_count"
	KeyAutoStartBreaks = "auto_start_breaks"
	KeyAutoStartFocus  = "auto_start_focus"
	KeyDailyGoal       = "daily_goal"
	KeyWeekStart       = "week_start"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// TimerSettings reads the countdown settings. Missing rows fall back to the
// defaults; unparsable values are an error.
func (s *Store) TimerSettings() (timer.Settings, error) {
	out := timer.DefaultSettings()
	ints := []struct {
		key string
		dst *int
	}{
		{KeyWork, &out.FocusSeconds},
		{KeyBreak, &out.ShortBreakSeconds},
		{KeyLongBreak, &out.LongBreakSeconds},
		{KeyCount, &out.LongBreakInterval},
	}
	for _, f := range ints {
		v, ok, err := s.lookup(f.key)
		if err != nil {
			return out, err
		}
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return out, fmt.Errorf("parse setting %q: %w", f.key, err)
		}
		*f.dst = n
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{KeyAutoStartBreaks, &out.AutoStartBreaks},
		{KeyAutoStartFocus, &out.AutoStartFocus},
	}
	for _, f := range bools {
		v, ok, err := s.lookup(f.key)
		if err != nil {
			return out, err
		}
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return out, fmt.Errorf("parse setting %q: %w", f.key, err)
		}
		*f.dst = b
	}
	return out, nil
}

// SaveTimerSettings writes every countdown setting in one transaction.
func (s *Store) SaveTimerSettings(ts timer.Settings) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	rows := []Setting{
		{KeyWork, strconv.Itoa(ts.FocusSeconds)},
		{KeyBreak, strconv.Itoa(ts.ShortBreakSeconds)},
		{KeyLongBreak, strconv.Itoa(ts.LongBreakSeconds)},
		{KeyCount, strconv.Itoa(ts.LongBreakInterval)},
		{KeyAutoStartBreaks, strconv.FormatBool(ts.AutoStartBreaks)},
		{KeyAutoStartFocus, strconv.FormatBool(ts.AutoStartFocus)},
	}
	for _, r := range rows {
		if _, err := tx.Exec(
			`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			r.Key, r.Value,
		); err != nil {
			return fmt.Errorf("save setting %q: %w", r.Key, err)
		}
	}
	return tx.Commit()
}

// DailyGoal returns the daily focus goal. Defaults to 8h.
func (s *Store) DailyGoal() (time.Duration, error) {
	v, ok, err := s.lookup(KeyDailyGoal)
	if err != nil || !ok {
		return 8 * time.Hour, err
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return 8 * time.Hour, fmt.Errorf("parse setting %q: %w", KeyDailyGoal, err)
	}
	return time.Duration(secs) * time.Second, nil
}

// WeekStart returns the configured first day of the week.
func (s *Store) WeekStart() (time.Weekday, error) {
	v, _, err := s.lookup(KeyWeekStart)
	if err != nil {
		return time.Monday, err
	}
	return period.ParseWeekday(v), nil
}

func (s *Store) lookup(key string) (string, bool, error) {
	v, err := s.GetSetting(key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}
