package timer

import (
	"fmt"
	"strings"
)

// Mode is the phase the countdown belongs to.
type Mode int

const (
	Focus Mode = iota
	ShortBreak
	LongBreak
)

var modeNames = map[Mode]string{
	Focus:      "focus",
	ShortBreak: "short_break",
	LongBreak:  "long_break",
}

var modeLabels = map[Mode]string{
	Focus:      "FOCUS",
	ShortBreak: "SHORT BREAK",
	LongBreak:  "LONG BREAK",
}

// Modes lists every mode in cycle order.
func Modes() []Mode { return []Mode{Focus, ShortBreak, LongBreak} }

func (m Mode) String() string {
	if n, ok := modeNames[m]; ok {
		return n
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Valid reports whether m is one of Modes.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// Label is the upper-case display name.
func (m Mode) Label() string { return modeLabels[m] }

// IsBreak reports whether m is a short or long break.
func (m Mode) IsBreak() bool { return m == ShortBreak || m == LongBreak }

// ParseMode accepts the String form, plus "short"/"long" shorthands.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "focus", "work":
		return Focus, nil
	case "short_break", "short", "shortbreak":
		return ShortBreak, nil
	case "long_break", "long", "longbreak":
		return LongBreak, nil
	}
	return Focus, fmt.Errorf("unknown mode %q", s)
}
