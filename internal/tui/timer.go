package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tomato/internal/stats"
	"github.com/sadopc/tomato/internal/task"
	"github.com/sadopc/tomato/internal/timer"
	"github.com/sadopc/tomato/internal/tracker"
)

// timerModel drives the countdown. The tracker's scheduler does the ticking;
// the view re-reads state on every tickMsg.
type timerModel struct {
	tracker *tracker.Tracker
	width   int
	height  int

	state    timer.State
	settings timer.Settings
	pending  *timer.Settings
	active   task.Task
	hasTask  bool
	today    stats.Daily
}

func newTimerModel(tr *tracker.Tracker) timerModel {
	t := timerModel{tracker: tr}
	t.refresh()
	return t
}

func (t *timerModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

func (t *timerModel) refresh() {
	t.state = t.tracker.Timer()
	t.settings, t.pending = t.tracker.TimerSettings()
	t.active, t.hasTask = t.tracker.ActiveTask()
	t.today = t.tracker.StatsNow().Daily
}

func (t timerModel) update(msg tea.Msg) (timerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		t.refresh()
		return t, nil

	case tea.KeyMsg:
		var cmd tea.Cmd
		switch {
		case key.Matches(msg, keys.Start):
			if t.tracker.Start() {
				cmd = status("Started " + t.state.Mode.Label())
			}
		case key.Matches(msg, keys.Pause):
			if t.state.IsRunning {
				t.tracker.Pause()
				cmd = status("Paused")
			} else if t.tracker.Start() {
				cmd = status("Resumed")
			}
		case key.Matches(msg, keys.Reset):
			t.tracker.Reset()
			cmd = status("Reset")
		case key.Matches(msg, keys.Skip):
			tr := t.tracker.Skip()
			cmd = status(fmt.Sprintf("Skipped to %s", strings.ToLower(tr.To.Label())))
		case key.Matches(msg, keys.Mode):
			next := nextMode(t.state.Mode)
			if !t.tracker.SetMode(next) {
				cmd = errorStatus("Pause the timer before switching mode")
			}
		}
		t.refresh()
		return t, cmd
	}
	return t, nil
}

func nextMode(m timer.Mode) timer.Mode {
	modes := timer.Modes()
	for i, mode := range modes {
		if mode == m {
			return modes[(i+1)%len(modes)]
		}
	}
	return timer.Focus
}

func (t timerModel) view() string {
	w := t.width - 4

	title := titleStyle.Render("Pomodoro Timer")

	clock := formatClock(t.state.SecondsRemaining)
	var timeDisplay, phaseLabel string
	switch {
	case t.state.IsPaused:
		timeDisplay = timerPausedStyle.Width(w - 6).Render(clock)
		phaseLabel = warningStyle.Bold(true).Render(t.state.Mode.Label() + " · PAUSED")
	case t.state.IsRunning:
		timeDisplay = modeStyle(t.state.Mode).Width(w - 6).Align(lipgloss.Center).Render(clock)
		phaseLabel = modeStyle(t.state.Mode).Render(t.state.Mode.Label())
	default:
		timeDisplay = timerStyle.Width(w - 6).Render(clock)
		phaseLabel = mutedStyle.Render(t.state.Mode.Label() + " · ready")
	}

	taskLine := mutedStyle.Render("No active task. Press a on the Tasks view to pick one.")
	if t.hasTask {
		taskLine = categoryDot(t.active.Category) + " " + highlightStyle.Render(t.active.Title) +
			mutedStyle.Render(fmt.Sprintf("  %d/%d", t.active.CompletedPomodoros, t.active.EstimatedPomodoros))
	}

	content := []string{
		title,
		"",
		timeDisplay,
		phaseLabel,
		"",
		t.renderProgress(),
		"",
		taskLine,
	}

	if t.pending != nil {
		content = append(content, "", warningStyle.Render("New settings apply after this countdown"))
	}

	content = append(content, "",
		mutedStyle.Render(fmt.Sprintf("Today: %s focused, %d pomodoros",
			formatMinutes(t.today.TotalFocusMinutes), t.today.PomodoroCount)),
	)

	controls := mutedStyle.Render("s: start  space: pause/resume  r: reset  x: skip  m: mode")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, append(content, "", controls)...),
	)
}

// renderProgress shows the position inside the current long-break cycle.
func (t timerModel) renderProgress() string {
	interval := t.settings.LongBreakInterval
	if interval < 1 {
		return ""
	}
	done := t.state.CompletedSessions % interval
	if done == 0 && t.state.CompletedSessions > 0 && t.state.Mode == timer.LongBreak {
		done = interval
	}
	var parts []string
	for i := 0; i < interval; i++ {
		switch {
		case i < done:
			parts = append(parts, successStyle.Render("●"))
		case i == done && t.state.Mode == timer.Focus && !t.state.Idle():
			parts = append(parts, accentStyle.Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	counter := mutedStyle.Render(fmt.Sprintf("  %d sessions", t.state.CompletedSessions))
	return strings.Join(parts, " ") + counter
}

func status(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func errorStatus(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: true} }
}
