package tui

import (
	"fmt"
	"math"
	"time"
)

// viewState represents the currently active view.
type viewState int

const (
	viewToday viewState = iota
	viewTimer
	viewTasks
	viewStats
	viewSettings
)

var viewNames = []string{"Today", "Timer", "Tasks", "Stats", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

// formatClock renders seconds as MM:SS, or H:MM:SS past an hour.
func formatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// formatMinutes renders fractional minutes as "1h 05m" or "25m".
func formatMinutes(minutes float64) string {
	total := int(math.Round(minutes))
	if total < 60 {
		return fmt.Sprintf("%dm", total)
	}
	return fmt.Sprintf("%dh %02dm", total/60, total%60)
}

func formatHours(minutes float64) string {
	return fmt.Sprintf("%.1fh", minutes/60)
}

// progressBar draws a width-cell bar filled to pct (0-100).
func progressBar(pct float64, width int) string {
	if width < 1 {
		return ""
	}
	pct = math.Max(0, math.Min(100, pct))
	filled := int(math.Round(pct / 100 * float64(width)))
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += successStyle.Render("█")
		} else {
			bar += mutedStyle.Render("░")
		}
	}
	return bar
}
