package tui

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tomato/internal/period"
	"github.com/sadopc/tomato/internal/stats"
	"github.com/sadopc/tomato/internal/streak"
	"github.com/sadopc/tomato/internal/tracker"
)

type statsMode int

const (
	statsDay statsMode = iota
	statsWeek
	statsMonth
	statsYear
)

var statsModeNames = []string{"Day", "Week", "Month", "Year"}

type bar struct {
	label   string
	minutes map[string]float64 // by category; a single "" key when not broken down
}

type statsModel struct {
	tracker *tracker.Tracker
	now     func() time.Time
	width   int
	height  int

	mode   statsMode
	offset int // periods back from the current one

	totals   stats.Totals
	label    string
	bars     []bar
	streak   streak.Data
	current  int
	insights stats.Insights
	pomos    int

	chart barchart.Model
}

func newStatsModel(tr *tracker.Tracker) statsModel {
	return statsModel{
		tracker: tr,
		now:     time.Now,
		chart:   barchart.New(60, 12),
	}
}

func (r *statsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type statsDataMsg struct {
	totals   stats.Totals
	label    string
	bars     []bar
	pomos    int
	streak   streak.Data
	current  int
	insights stats.Insights
}

func (r statsModel) refresh() tea.Cmd {
	return func() tea.Msg { return r.fetch() }
}

// anchor is an instant inside the period being viewed.
func (r statsModel) anchor() time.Time {
	now := r.now()
	switch r.mode {
	case statsWeek:
		return now.AddDate(0, 0, -7*r.offset)
	case statsMonth:
		first := time.Date(now.Year(), now.Month(), 1, 12, 0, 0, 0, now.Location())
		return first.AddDate(0, -r.offset, 0)
	case statsYear:
		return time.Date(now.Year()-r.offset, 6, 1, 12, 0, 0, 0, now.Location())
	default:
		return now.AddDate(0, 0, -r.offset)
	}
}

func (r statsModel) fetch() statsDataMsg {
	at := r.anchor()
	rep := r.tracker.Stats(at)
	msg := statsDataMsg{
		streak:  r.tracker.Streak(),
		current: r.tracker.CurrentStreak(),
	}
	if in, err := r.tracker.Insights(context.Background()); err == nil {
		msg.insights = in
	}

	switch r.mode {
	case statsWeek:
		msg.totals = rep.Weekly.Totals
		msg.label = "Week of " + dayLabel(rep.Weekly.WeekStart, "Jan 02, 2006")
		msg.bars = seriesBars(weekDays(rep.Weekly.WeekStart), rep.Weekly.DailyFocusTime, func(k string) string { return dayLabel(k, "Mon 02") })
	case statsMonth:
		msg.totals = rep.Monthly.Totals
		msg.label = at.Format("January 2006")
		msg.bars = seriesBars(sortedKeys(rep.Monthly.WeeklyFocusTime), rep.Monthly.WeeklyFocusTime, func(k string) string { return dayLabel(k, "Jan 02") })
	case statsYear:
		msg.totals = rep.Yearly.Totals
		msg.label = rep.Yearly.Year
		msg.bars = seriesBars(months, rep.Yearly.MonthlyFocusTime, monthLabel)
	default:
		msg.totals = rep.Daily.Totals
		msg.pomos = rep.Daily.PomodoroCount
		msg.label = at.Format("Monday, Jan 02 2006")
		// Seven days ending on the viewed one, stacked by category.
		for i := 6; i >= 0; i-- {
			d := r.tracker.Stats(at.AddDate(0, 0, -i)).Daily
			msg.bars = append(msg.bars, bar{label: dayLabel(d.Date, "Mon 02"), minutes: d.CategoryBreakdown})
		}
	}
	return msg
}

var months = []string{"01", "02", "03", "04", "05", "06", "07", "08", "09", "10", "11", "12"}

// seriesBars makes one bar per key, in order. Keys missing from m are zero.
func seriesBars(keys []string, m map[string]float64, label func(string) string) []bar {
	out := make([]bar, 0, len(keys))
	for _, k := range keys {
		out = append(out, bar{label: label(k), minutes: map[string]float64{"": m[k]}})
	}
	return out
}

func sortedKeys(m map[string]float64) []string {
	return slices.Sorted(maps.Keys(m))
}

// weekDays lists the seven day keys starting at start.
func weekDays(start string) []string {
	first, err := period.ParseDay(start)
	if err != nil {
		return nil
	}
	out := make([]string, 7)
	for i := range out {
		out[i] = period.Day(first.AddDate(0, 0, i))
	}
	return out
}

func dayLabel(key, layout string) string {
	t, err := period.ParseDay(key)
	if err != nil {
		return key
	}
	return t.Format(layout)
}

func monthLabel(key string) string {
	t, err := time.Parse("01", key)
	if err != nil {
		return key
	}
	return t.Format("Jan")
}

func (r statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		r.totals = msg.totals
		r.label = msg.label
		r.bars = msg.bars
		r.pomos = msg.pomos
		r.streak = msg.streak
		r.current = msg.current
		r.insights = msg.insights
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		case key.Matches(msg, keys.Mode):
			r.mode = (r.mode + 1) % statsMode(len(statsModeNames))
			r.offset = 0
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *statsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if r.height > 30 {
		chartHeight = 14
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	var data []barchart.BarData
	for _, b := range r.bars {
		var values []barchart.BarValue
		for _, cat := range stats.Categories(b.minutes) {
			color := colorPrimary
			if cat != "" {
				color = categoryColor(cat)
			}
			values = append(values, barchart.BarValue{
				Name:  cat,
				Value: b.minutes[cat] / 60,
				Style: lipgloss.NewStyle().Foreground(color),
			})
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}
		data = append(data, barchart.BarData{Label: b.label, Values: values})
	}

	r.chart.PushAll(data)
	r.chart.Draw()
}

func (r statsModel) view() string {
	w := r.width - 4

	var tabs []string
	for i, name := range statsModeNames {
		if statsMode(i) == r.mode {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Stats"), "  ", lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...), "  ", mutedStyle.Render(r.label),
	)

	nav := mutedStyle.Render("  ←/→: navigate  m: switch period")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "",
			r.chart.View(), "",
			r.renderTotals(w), "",
			r.renderBreakdown(), "",
			r.renderStreak(), "",
			r.renderInsights(), "",
			nav,
		),
	)
}

func (r statsModel) renderTotals(w int) string {
	barWidth := min(30, max(10, w-50))
	goal := mutedStyle.Render("no goal")
	if r.totals.GoalMinutes > 0 {
		goal = fmt.Sprintf("%s %.0f%% of %s", progressBar(r.totals.Progress(), barWidth), r.totals.Progress(), formatHours(r.totals.GoalMinutes))
	}
	line := fmt.Sprintf("  Focus %s   %s", highlightStyle.Render(formatMinutes(r.totals.TotalFocusMinutes)), goal)
	tasks := mutedStyle.Render(fmt.Sprintf("  Tasks %d done, %d remaining", r.totals.TasksDone, r.totals.TasksRemaining))
	if r.mode == statsDay {
		tasks += mutedStyle.Render(fmt.Sprintf("   Pomodoros %d", r.pomos))
	}
	return line + "\n" + tasks
}

func (r statsModel) renderBreakdown() string {
	var items []string
	for _, cat := range stats.Categories(r.totals.CategoryBreakdown) {
		m := r.totals.CategoryBreakdown[cat]
		if m <= 0 {
			continue
		}
		items = append(items, fmt.Sprintf("%s %s %s", categoryDot(cat), cat, mutedStyle.Render(formatMinutes(m))))
	}
	if len(items) == 0 {
		return mutedStyle.Render("  No focus time in this period")
	}
	return "  " + strings.Join(items, "  ")
}

func (r statsModel) renderStreak() string {
	return fmt.Sprintf("  Streak %s   %s",
		accentStyle.Bold(true).Render(fmt.Sprintf("%d days", r.current)),
		mutedStyle.Render(fmt.Sprintf("longest %d", r.streak.LongestStreak)),
	)
}

func (r statsModel) renderInsights() string {
	in := r.insights
	var parts []string
	if in.TopCategory != "" && in.TopCategoryMinutes > 0 {
		parts = append(parts, fmt.Sprintf("Top category this week: %s (%s)", in.TopCategory, formatMinutes(in.TopCategoryMinutes)))
	}
	if in.HasBestHour {
		parts = append(parts, fmt.Sprintf("Most focused %02d:00-%02d:00", in.BestHour, in.BestHourEnd()))
	}
	if in.HasBestWeekday {
		parts = append(parts, fmt.Sprintf("Best day %s (avg %s)", in.BestWeekday, formatMinutes(in.BestWeekdayAverage)))
	}
	if len(parts) == 0 {
		return mutedStyle.Render("  Finish a few focus sessions to see insights")
	}
	return mutedStyle.Render("  " + strings.Join(parts, "  ·  "))
}
