package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tomato/internal/stats"
	"github.com/sadopc/tomato/internal/store"
	"github.com/sadopc/tomato/internal/task"
	"github.com/sadopc/tomato/internal/timer"
	"github.com/sadopc/tomato/internal/tracker"
)

const recentSessions = 5

// dashboardModel is the Today view: goal progress, streak, today's tasks and
// the latest sessions.
type dashboardModel struct {
	tracker *tracker.Tracker
	width   int
	height  int

	state    timer.State
	today    stats.Daily
	streak   int
	tasks    []task.Task
	sessions []store.Session
	titles   map[string]string
}

func newDashboardModel(tr *tracker.Tracker) dashboardModel {
	return dashboardModel{tracker: tr}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type dashboardDataMsg struct {
	today    stats.Daily
	streak   int
	tasks    []task.Task
	sessions []store.Session
	titles   map[string]string
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		sessions, _ := d.tracker.Sessions(context.Background(), store.SessionFilter{
			IncludeSkipped: true,
			Limit:          recentSessions,
		})
		titles := make(map[string]string)
		for _, t := range d.tracker.Tasks() {
			titles[t.ID] = t.Title
		}
		return dashboardDataMsg{
			today:    d.tracker.StatsNow().Daily,
			streak:   d.tracker.CurrentStreak(),
			tasks:    d.tracker.TodayTasks(),
			sessions: sessions,
			titles:   titles,
		}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.today = msg.today
		d.streak = msg.streak
		d.tasks = msg.tasks
		d.sessions = msg.sessions
		d.titles = msg.titles
		return d, nil

	case tickMsg:
		d.state = d.tracker.Timer()
		return d, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start):
			if d.tracker.Start() {
				d.state = d.tracker.Timer()
				return d, status("Started " + d.state.Mode.Label())
			}
		case key.Matches(msg, keys.Pause):
			if d.state.IsRunning {
				d.tracker.Pause()
			} else {
				d.tracker.Start()
			}
			d.state = d.tracker.Timer()
		}
	}
	return d, nil
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderTimerPanel(contentWidth),
		d.renderSummaryPanel(contentWidth),
		d.renderTasksPanel(contentWidth),
		d.renderRecentPanel(contentWidth),
	)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	clock := formatClock(d.state.SecondsRemaining)
	var indicator string
	style := panelStyle
	switch {
	case d.state.IsRunning:
		indicator = modeStyle(d.state.Mode).Render("●  " + d.state.Mode.Label())
		style = activePanelStyle
	case d.state.IsPaused:
		indicator = warningStyle.Render("⏸  PAUSED")
	default:
		indicator = mutedStyle.Render("■  " + d.state.Mode.Label() + "  press s to start")
	}
	line := fmt.Sprintf("%s   %s", titleStyle.Render(clock), indicator)
	return style.Width(w).Render(line)
}

func (d dashboardModel) renderSummaryPanel(w int) string {
	title := titleStyle.Render("Today")
	total := highlightStyle.Render(formatMinutes(d.today.TotalFocusMinutes))
	header := fmt.Sprintf("%s  %s  %s", title, total,
		mutedStyle.Render(fmt.Sprintf("%d pomodoros  streak %d", d.today.PomodoroCount, d.streak)))

	rows := []string{header}
	if d.today.GoalMinutes > 0 {
		barWidth := min(40, max(10, w-30))
		rows = append(rows, fmt.Sprintf("%s %.0f%% of %s",
			progressBar(d.today.Progress(), barWidth), d.today.Progress(), formatHours(d.today.GoalMinutes)))
	}

	for _, cat := range stats.Categories(d.today.CategoryBreakdown) {
		m := d.today.CategoryBreakdown[cat]
		if m <= 0 {
			continue
		}
		rows = append(rows, fmt.Sprintf("  %s %-12s %s", categoryDot(cat), cat, formatMinutes(m)))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderTasksPanel(w int) string {
	title := titleStyle.Render("Today's Tasks")
	if len(d.tasks) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No tasks created today"),
		))
	}

	rows := []string{title}
	for _, t := range d.tasks {
		mark := "○"
		style := normalItemStyle
		if t.Completed {
			mark = successStyle.Render("✓")
			style = doneItemStyle
		}
		rows = append(rows, fmt.Sprintf("  %s %s %s %s", mark, categoryDot(t.Category),
			style.Render(t.Title), mutedStyle.Render(fmt.Sprintf("%d/%d", t.CompletedPomodoros, t.EstimatedPomodoros))))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent Sessions")
	if len(d.sessions) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No sessions yet"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	for _, s := range d.sessions {
		mark := "✓"
		if s.Skipped {
			mark = "↷"
		}
		label := s.Mode
		if m, err := timer.ParseMode(s.Mode); err == nil {
			label = strings.ToLower(m.Label())
		}
		name := d.titles[s.TaskID]
		row := fmt.Sprintf("  %s %s  %-12s %-6s %s", mark, s.EndedAt.Local().Format("15:04"),
			label, formatMinutes(s.Minutes), mutedStyle.Render(name))
		rows = append(rows, row)
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
