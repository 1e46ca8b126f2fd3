package tracker

import (
	"github.com/sadopc/tomato/internal/category"
	"github.com/sadopc/tomato/internal/store"
	"github.com/sadopc/tomato/internal/timer"
)

// Start runs the countdown and arms the scheduler.
func (t *Tracker) Start() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.engine.Start() {
		return false
	}
	t.arm()
	return true
}

// Pause stops the countdown, keeping the remaining time.
func (t *Tracker) Pause() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disarm()
	return t.engine.Pause()
}

// Reset restores the full duration of the current mode.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disarm()
	t.engine.Reset()
}

// SetMode switches mode when the countdown is not running.
func (t *Tracker) SetMode(m timer.Mode) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.engine.SetMode(m) {
		return false
	}
	t.disarm()
	return true
}

// Skip abandons the current countdown and moves to the next mode. Nothing is
// credited; the skip is kept in the session history.
func (t *Tracker) Skip() timer.Transition {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disarm()

	before := t.engine.State()
	planned := t.engine.Settings().Duration(before.Mode)
	tr := t.engine.Skip()

	sess := store.Session{
		Mode:           tr.From.String(),
		TaskID:         before.ActiveTaskID,
		PlannedSeconds: planned,
		Skipped:        true,
		EndedAt:        t.now(),
	}
	if tr.From == timer.Focus {
		sess.Category = t.categoryOf(before.ActiveTaskID)
	}
	t.recordSession(sess)
	t.log.Debug("skipped", "from", tr.From.String(), "to", tr.To.String())
	return tr
}

// Tick advances the countdown by one second. It is what the scheduler calls;
// tests and headless drivers may call it directly.
func (t *Tracker) Tick() *timer.Completion {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tick()
}

// tick runs one second. Callers hold mu.
func (t *Tracker) tick() *timer.Completion {
	c := t.engine.Tick()
	if c != nil && !c.AutoStarted {
		t.disarm()
	}
	return c
}

// UpdateSettings validates and applies s. While a countdown is active the
// change waits for the next transition.
func (t *Tracker) UpdateSettings(s timer.Settings) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.engine.UpdateSettings(s); err != nil {
		return err
	}
	if t.settings != nil {
		if err := t.settings.SaveTimerSettings(s); err != nil {
			t.report(opSave, "settings", err)
		}
	}
	return nil
}

// completed reacts to a natural completion. It runs inside engine.Tick, which
// Tick calls with mu held.
func (t *Tracker) completed(c timer.Completion) {
	at := t.now()
	sess := store.Session{
		Mode:           c.Mode.String(),
		TaskID:         c.TaskID,
		PlannedSeconds: c.Seconds,
		EndedAt:        at,
	}

	if c.Mode == timer.Focus {
		minutes := float64(c.Seconds) / 60
		cat := t.categoryOf(c.TaskID)
		if err := t.stats.CreditFocusSession(at, minutes, cat); err != nil {
			t.log.Warn("category rejected, crediting default", "category", cat, "error", err)
			cat = category.Default
			if err := t.stats.CreditFocusSession(at, minutes, cat); err != nil {
				t.log.Error("focus session not credited", "minutes", minutes, "error", err)
			}
		}
		t.stats.CountPomodoro(at)
		sess.Category = cat
		sess.Minutes = minutes

		if c.TaskID != "" {
			if _, done, err := t.tasks.IncrementPomodoro(c.TaskID); err == nil {
				if done {
					t.stats.CreditTaskCompletion(at)
				}
				t.saveTasks()
			}
		}
		if t.streak.RecordActivity(at) {
			t.saveStreak()
		}
		t.saveStats()
	}

	t.recordSession(sess)
	t.log.Info("countdown finished",
		"mode", c.Mode.String(),
		"next", c.Next.String(),
		"session", c.Session,
		"task", c.TaskID,
	)
}

// arm points the scheduler at Tick for a new arming. Callers hold mu.
func (t *Tracker) arm() {
	t.armGen++
	gen := t.armGen
	t.sched.Arm(func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if gen != t.armGen {
			return
		}
		t.tick()
	})
}

// disarm stops the scheduler and retires the current arming. Callers hold mu.
func (t *Tracker) disarm() {
	t.armGen++
	t.sched.Disarm()
}

// categoryOf is the category credited for id: the task's, or the default
// when there is no task or it no longer exists.
func (t *Tracker) categoryOf(id string) string {
	if id == "" {
		return category.Default
	}
	tk, err := t.tasks.Get(id)
	if err != nil {
		return category.Default
	}
	return tk.Category
}
