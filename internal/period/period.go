// Package period derives calendar period keys from timestamps. Keys are
// computed in the location of the timestamp passed in, so callers control
// what "local" means.
package period

import (
	"fmt"
	"strings"
	"time"
)

const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
	YearLayout  = "2006"
)

// Day returns the calendar date key of t.
func Day(t time.Time) string { return t.Format(DayLayout) }

// Month returns the month key of t, e.g. "2026-10".
func Month(t time.Time) string { return t.Format(MonthLayout) }

// Year returns the year key of t.
func Year(t time.Time) string { return t.Format(YearLayout) }

// MonthOfYear returns the two-digit month of t, e.g. "03".
func MonthOfYear(t time.Time) string { return fmt.Sprintf("%02d", int(t.Month())) }

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the first day of the week containing t.
func StartOfWeek(t time.Time, first time.Weekday) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) - int(first) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// Week returns the key of the week containing t: the date its first day falls on.
func Week(t time.Time, first time.Weekday) string {
	return Day(StartOfWeek(t, first))
}

// SameDay reports whether a and b fall on the same calendar day in a's location.
func SameDay(a, b time.Time) bool {
	return Day(a) == Day(b.In(a.Location()))
}

// ParseDay parses a day key as midnight UTC.
func ParseDay(key string) (time.Time, error) {
	t, err := time.Parse(DayLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", key, err)
	}
	return t, nil
}

// DaysBetween returns the number of calendar days from a to b (b - a).
func DaysBetween(a, b string) (int, error) {
	ta, err := ParseDay(a)
	if err != nil {
		return 0, err
	}
	tb, err := ParseDay(b)
	if err != nil {
		return 0, err
	}
	return int(tb.Sub(ta).Hours() / 24), nil
}

// ParseWeekday accepts "monday" or "sunday" (any case); anything else is Monday.
func ParseWeekday(s string) time.Weekday {
	if strings.EqualFold(strings.TrimSpace(s), "sunday") {
		return time.Sunday
	}
	return time.Monday
}
