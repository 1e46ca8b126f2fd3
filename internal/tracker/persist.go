package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sadopc/tomato/internal/domain"
	"github.com/sadopc/tomato/internal/stats"
	"github.com/sadopc/tomato/internal/store"
	"github.com/sadopc/tomato/internal/streak"
	"github.com/sadopc/tomato/internal/task"
)

const (
	opLoad = "load"
	opSave = "save"
)

// Load restores saved state. Each key is loaded on its own: a key that was
// never saved starts from defaults, and a key that cannot be read or decoded
// is reported and also starts from defaults. The returned error joins every
// persistence error; the tracker is usable either way.
//
// Loading counts as activity for the streak.
func (t *Tracker) Load(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var errs []error
	load := func(key string, dst any) bool {
		data, err := t.kv.Load(ctx, key)
		if err != nil {
			errs = append(errs, t.report(opLoad, key, err))
			return false
		}
		if data == nil {
			t.log.Debug("no saved state, using defaults", "key", key)
			return false
		}
		if err := json.Unmarshal(data, dst); err != nil {
			errs = append(errs, t.report(opLoad, key, fmt.Errorf("decode: %w", err)))
			return false
		}
		return true
	}

	var tasks []task.Task
	if load(KeyTasks, &tasks) {
		t.tasks.Restore(tasks)
	}

	var (
		snap    stats.Snapshot
		daily   map[string]stats.Daily
		weekly  map[string]stats.Weekly
		monthly map[string]stats.Monthly
		yearly  map[string]stats.Yearly
	)
	if load(KeyDaily, &daily) {
		snap.Daily = daily
	}
	if load(KeyWeekly, &weekly) {
		snap.Weekly = weekly
	}
	if load(KeyMonthly, &monthly) {
		snap.Monthly = monthly
	}
	if load(KeyYearly, &yearly) {
		snap.Yearly = yearly
	}
	t.stats.Restore(snap)

	var sd streak.Data
	if load(KeyStreak, &sd) {
		t.streak.Restore(sd)
	}
	// Load errors are returned here; LastPersistError only tracks writes.
	t.lastErr = nil

	if t.streak.RecordActivity(t.now()) {
		t.saveStreak()
	}
	t.log.Debug("state loaded", "tasks", t.tasks.Len())
	return errors.Join(errs...)
}

// LastPersistError returns the most recent save error and clears it. Errors
// from Load are returned by Load alone.
func (t *Tracker) LastPersistError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	err := t.lastErr
	t.lastErr = nil
	return err
}

func (t *Tracker) saveTasks() { t.save(KeyTasks, t.tasks.Snapshot()) }

func (t *Tracker) saveStreak() { t.save(KeyStreak, t.streak.Data()) }

// saveStats writes all four period maps.
func (t *Tracker) saveStats() {
	snap := t.stats.Snapshot()
	t.save(KeyDaily, snap.Daily)
	t.save(KeyWeekly, snap.Weekly)
	t.save(KeyMonthly, snap.Monthly)
	t.save(KeyYearly, snap.Yearly)
}

// save encodes v and writes it. Failures are reported, never returned:
// in-memory state stays authoritative.
func (t *Tracker) save(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		t.report(opSave, key, fmt.Errorf("encode: %w", err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := t.kv.Save(ctx, key, data); err != nil {
		t.report(opSave, key, err)
	}
}

func (t *Tracker) recordSession(s store.Session) {
	if t.sessions == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if _, err := t.sessions.RecordSession(ctx, s); err != nil {
		t.report(opSave, "sessions", err)
	}
}

// report logs a persistence failure and hands it to the hook. Callers hold mu.
func (t *Tracker) report(op, key string, err error) error {
	perr := &domain.PersistenceError{Op: op, Key: key, Err: err}
	t.log.Error("persistence failed", "op", op, "key", key, "error", err)
	t.lastErr = perr
	if t.onError != nil {
		t.onError(perr)
	}
	return perr
}
