package timer

import (
	"fmt"

	"github.com/sadopc/tomato/internal/domain"
)

// Default durations, in seconds.
const (
	DefaultFocusSeconds      = 25 * 60
	DefaultShortBreakSeconds = 5 * 60
	DefaultLongBreakSeconds  = 15 * 60
	DefaultLongBreakInterval = 4
)

// Settings configures countdown lengths and auto-start behaviour.
type Settings struct {
	FocusSeconds      int
	ShortBreakSeconds int
	LongBreakSeconds  int
	AutoStartBreaks   bool
	AutoStartFocus    bool
	// LongBreakInterval is the number of focus sessions between long breaks.
	LongBreakInterval int
}

// DefaultSettings returns the classic 25/5/15 pomodoro configuration.
func DefaultSettings() Settings {
	return Settings{
		FocusSeconds:      DefaultFocusSeconds,
		ShortBreakSeconds: DefaultShortBreakSeconds,
		LongBreakSeconds:  DefaultLongBreakSeconds,
		LongBreakInterval: DefaultLongBreakInterval,
	}
}

// Validate checks that every duration is positive and the interval is at least 1.
func (s Settings) Validate() error {
	var errs []domain.FieldError
	check := func(field string, v int) {
		if v <= 0 {
			errs = append(errs, domain.FieldError{Field: field, Message: fmt.Sprintf("must be > 0 (got %d)", v)})
		}
	}
	check("focus_seconds", s.FocusSeconds)
	check("short_break_seconds", s.ShortBreakSeconds)
	check("long_break_seconds", s.LongBreakSeconds)
	if s.LongBreakInterval < 1 {
		errs = append(errs, domain.FieldError{
			Field:   "long_break_interval",
			Message: fmt.Sprintf("must be >= 1 (got %d)", s.LongBreakInterval),
		})
	}
	return domain.NewValidationErrors(errs)
}

// Duration returns the configured length of mode in seconds.
func (s Settings) Duration(m Mode) int {
	switch m {
	case ShortBreak:
		return s.ShortBreakSeconds
	case LongBreak:
		return s.LongBreakSeconds
	default:
		return s.FocusSeconds
	}
}

// autoStart reports whether a countdown in next starts without user input.
func (s Settings) autoStart(next Mode) bool {
	if next == Focus {
		return s.AutoStartFocus
	}
	return s.AutoStartBreaks
}
