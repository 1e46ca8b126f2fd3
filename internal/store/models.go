package store

import "time"

type Setting struct {
	Key   string
	Value string
}

// Session is one finished or skipped countdown.
type Session struct {
	ID             int64     `json:"id" yaml:"id"`
	Mode           string    `json:"mode" yaml:"mode"`
	TaskID         string    `json:"task_id,omitempty" yaml:"task_id,omitempty"`
	Category       string    `json:"category,omitempty" yaml:"category,omitempty"`
	PlannedSeconds int       `json:"planned_seconds" yaml:"planned_seconds"`
	Minutes        float64   `json:"minutes" yaml:"minutes"` // credited focus minutes
	Skipped        bool      `json:"skipped" yaml:"skipped"`
	EndedAt        time.Time `json:"ended_at" yaml:"ended_at"`
}

// StartedAt is EndedAt minus the planned length. Skipped sessions have no
// reliable start and return EndedAt.
func (s Session) StartedAt() time.Time {
	if s.Skipped {
		return s.EndedAt
	}
	return s.EndedAt.Add(-time.Duration(s.PlannedSeconds) * time.Second)
}

// SessionFilter is used to filter sessions in queries.
type SessionFilter struct {
	Mode   string
	TaskID string
	From   *time.Time
	To     *time.Time
	// IncludeSkipped keeps skipped sessions in the result.
	IncludeSkipped bool
	Limit          int
}
