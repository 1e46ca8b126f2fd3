// Package streak counts consecutive calendar days with activity.
package streak

import (
	"slices"
	"sync"
	"time"

	"github.com/sadopc/tomato/internal/period"
)

// Entry is the streak length reached on a day.
type Entry struct {
	Date   string `json:"date" yaml:"date"`
	Streak int    `json:"streak" yaml:"streak"`
}

// Data is the persisted streak state. History is append-only, one entry per
// active day, oldest first.
type Data struct {
	LastActiveDate string  `json:"last_active_date" yaml:"last_active_date"`
	CurrentStreak  int     `json:"current_streak" yaml:"current_streak"`
	LongestStreak  int     `json:"longest_streak" yaml:"longest_streak"`
	History        []Entry `json:"history" yaml:"history"`
}

// Tracker guards a Data.
type Tracker struct {
	mu   sync.RWMutex
	data Data
}

// New returns a tracker with no activity.
func New() *Tracker { return &Tracker{} }

// RecordActivity marks the calendar day of at as active. It reports whether
// the streak changed: repeated calls on the same day are no-ops, the day after
// the last active day extends the streak, and anything else starts over at 1.
// A day earlier than the last active one is ignored.
func (t *Tracker) RecordActivity(at time.Time) bool {
	today := period.Day(at)

	t.mu.Lock()
	defer t.mu.Unlock()
	d := &t.data

	next := 1
	if d.LastActiveDate != "" {
		gap, err := period.DaysBetween(d.LastActiveDate, today)
		switch {
		case err != nil:
			// Unreadable last date: start over.
		case gap <= 0:
			return false
		case gap == 1:
			next = d.CurrentStreak + 1
		}
	}

	d.CurrentStreak = next
	d.LongestStreak = max(d.LongestStreak, next)
	d.LastActiveDate = today
	d.History = append(d.History, Entry{Date: today, Streak: next})
	return true
}

// Data returns a copy of the streak state.
func (t *Tracker) Data() Data {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d := t.data
	d.History = slices.Clone(d.History)
	return d
}

// Current is the streak as seen on the day of at: CurrentStreak while the
// last active day is today or yesterday, 0 once a day has been missed.
func (t *Tracker) Current(at time.Time) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.data.LastActiveDate == "" {
		return 0
	}
	gap, err := period.DaysBetween(t.data.LastActiveDate, period.Day(at))
	if err != nil || gap > 1 {
		return 0
	}
	return t.data.CurrentStreak
}

// Restore replaces the state. LongestStreak is raised to CurrentStreak if a
// stored value fell behind.
func (t *Tracker) Restore(d Data) {
	d.History = slices.Clone(d.History)
	d.CurrentStreak = max(0, d.CurrentStreak)
	d.LongestStreak = max(d.LongestStreak, d.CurrentStreak)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data = d
}
