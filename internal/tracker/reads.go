package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/sadopc/tomato/internal/stats"
	"github.com/sadopc/tomato/internal/store"
	"github.com/sadopc/tomato/internal/streak"
	"github.com/sadopc/tomato/internal/task"
	"github.com/sadopc/tomato/internal/timer"
)

// insightWindow is how far back session history feeds insights.
const insightWindow = 28 * 24 * time.Hour

// Report is the four periods containing one instant.
type Report struct {
	Daily   stats.Daily
	Weekly  stats.Weekly
	Monthly stats.Monthly
	Yearly  stats.Yearly
}

func (t *Tracker) Timer() timer.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.engine.State()
}

// TimerSettings returns the settings in effect and any pending change.
func (t *Tracker) TimerSettings() (current timer.Settings, pending *timer.Settings) {
	t.mu.Lock()
	defer t.mu.Unlock()
	current = t.engine.Settings()
	if p, ok := t.engine.PendingSettings(); ok {
		pending = &p
	}
	return current, pending
}

// ConsumeFinished reports whether a countdown finished since the last call.
func (t *Tracker) ConsumeFinished() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.engine.ConsumeFinished()
}

func (t *Tracker) Tasks() []task.Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tasks.List()
}

func (t *Tracker) Task(id string) (task.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tasks.Get(id)
}

// TodayTasks returns tasks created today, local time.
func (t *Tracker) TodayTasks() []task.Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tasks.Today(t.now())
}

func (t *Tracker) TasksByCategory(cat string) []task.Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tasks.ByCategory(cat)
}

// ActiveTask returns the task attached to the countdown, if any.
func (t *Tracker) ActiveTask() (task.Task, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.engine.State().ActiveTaskID
	if id == "" {
		return task.Task{}, false
	}
	tk, err := t.tasks.Get(id)
	return tk, err == nil
}

// Stats returns the periods containing at.
func (t *Tracker) Stats(at time.Time) Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Report{
		Daily:   t.stats.Daily(at),
		Weekly:  t.stats.Weekly(at),
		Monthly: t.stats.Monthly(at),
		Yearly:  t.stats.Yearly(at),
	}
}

// StatsNow is Stats for the current instant.
func (t *Tracker) StatsNow() Report { return t.Stats(t.now()) }

// RecentDays returns the daily records for the n days ending today, oldest
// first. Days without activity are zeroed.
func (t *Tracker) RecentDays(n int) []stats.Daily {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	out := make([]stats.Daily, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, t.stats.Daily(now.AddDate(0, 0, -i)))
	}
	return out
}

// Snapshot returns every recorded period.
func (t *Tracker) Snapshot() stats.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats.Snapshot()
}

func (t *Tracker) Streak() streak.Data {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.streak.Data()
}

// CurrentStreak is the streak that is still alive today.
func (t *Tracker) CurrentStreak() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.streak.Current(t.now())
}

// RecordActivity marks today as active.
func (t *Tracker) RecordActivity() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.streak.RecordActivity(t.now()) {
		return false
	}
	t.saveStreak()
	return true
}

// Goals returns the focus goals in effect.
func (t *Tracker) Goals() stats.Goals {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats.Goals()
}

// UpdateGoals changes the focus goals.
func (t *Tracker) UpdateGoals(g stats.Goals) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.SetGoals(g, t.now())
	t.saveStats()
}

// Insights combine this week's category breakdown with the focus history of
// the last four weeks.
func (t *Tracker) Insights(ctx context.Context) (stats.Insights, error) {
	t.mu.Lock()
	now := t.now()
	breakdown := t.stats.Weekly(now).CategoryBreakdown
	t.mu.Unlock()

	var samples []stats.Sample
	if t.sessions != nil {
		from := now.Add(-insightWindow)
		sessions, err := t.sessions.ListSessions(ctx, store.SessionFilter{
			Mode: timer.Focus.String(),
			From: &from,
		})
		if err != nil {
			return stats.Insights{}, fmt.Errorf("list sessions: %w", err)
		}
		for _, s := range sessions {
			samples = append(samples, stats.Sample{At: s.StartedAt().In(now.Location()), Minutes: s.Minutes})
		}
	}
	return stats.ComputeInsights(breakdown, samples), nil
}

// Sessions returns the countdown history matching f.
func (t *Tracker) Sessions(ctx context.Context, f store.SessionFilter) ([]store.Session, error) {
	if t.sessions == nil {
		return nil, nil
	}
	return t.sessions.ListSessions(ctx, f)
}
