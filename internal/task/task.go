package task

import "time"

// Task is a unit of work focus sessions are credited to.
type Task struct {
	ID                 string     `json:"id" yaml:"id"`
	Title              string     `json:"title" yaml:"title"`
	Category           string     `json:"category" yaml:"category"`
	EstimatedPomodoros int        `json:"estimated_pomodoros" yaml:"estimated_pomodoros"`
	CompletedPomodoros int        `json:"completed_pomodoros" yaml:"completed_pomodoros"`
	Completed          bool       `json:"completed" yaml:"completed"`
	CreatedAt          time.Time  `json:"created_at" yaml:"created_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// Remaining is the number of estimated pomodoros not yet done, floored at 0.
func (t Task) Remaining() int {
	return max(0, t.EstimatedPomodoros-t.CompletedPomodoros)
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	Title              *string
	Category           *string
	EstimatedPomodoros *int
	CompletedPomodoros *int
	Completed          *bool
}

// Change reports completion transitions caused by an update.
type Change struct {
	Completed bool // went from open to completed
	Reopened  bool // went from completed to open
}
