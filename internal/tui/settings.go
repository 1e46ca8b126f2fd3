package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tomato/internal/store"
	"github.com/sadopc/tomato/internal/timer"
	"github.com/sadopc/tomato/internal/tracker"
)

// settingsStore is the part of the store the settings view edits directly.
// Timer settings go through the tracker.
type settingsStore interface {
	GetAllSettings() ([]store.Setting, error)
	SetSetting(key, value string) error
}

type settingsModel struct {
	tracker *tracker.Tracker
	store   settingsStore
	width   int
	height  int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	pomodoroWork      *string
	pomodoroBreak     *string
	pomodoroLongBreak *string
	pomodoroCount     *string
	autoStartBreaks   *bool
	autoStartFocus    *bool
	dailyGoal         *string
	weekStart         *string
}

func newSettingsModel(tr *tracker.Tracker, s settingsStore) settingsModel {
	pw, pb, plb, pc := "", "", "", ""
	asb, asf := false, false
	dg, ws := "", ""
	return settingsModel{
		tracker:           tr,
		store:             s,
		pomodoroWork:      &pw,
		pomodoroBreak:     &pb,
		pomodoroLongBreak: &plb,
		pomodoroCount:     &pc,
		autoStartBreaks:   &asb,
		autoStartFocus:    &asf,
		dailyGoal:         &dg,
		weekStart:         &ws,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	// Load current values; a pending change is what the user last asked for.
	ts, pending := s.tracker.TimerSettings()
	if pending != nil {
		ts = *pending
	}
	*s.pomodoroWork = secsToMin(strconv.Itoa(ts.FocusSeconds))
	*s.pomodoroBreak = secsToMin(strconv.Itoa(ts.ShortBreakSeconds))
	*s.pomodoroLongBreak = secsToMin(strconv.Itoa(ts.LongBreakSeconds))
	*s.pomodoroCount = strconv.Itoa(ts.LongBreakInterval)
	*s.autoStartBreaks = ts.AutoStartBreaks
	*s.autoStartFocus = ts.AutoStartFocus
	*s.dailyGoal = fmt.Sprintf("%.1f", s.tracker.Goals().DailyMinutes/60)
	*s.weekStart = strings.ToLower(s.getVal(store.KeyWeekStart, "monday"))

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Focus (min)").Value(s.pomodoroWork).Validate(positiveInt),
			huh.NewInput().Title("Short break (min)").Value(s.pomodoroBreak).Validate(positiveInt),
			huh.NewInput().Title("Long break (min)").Value(s.pomodoroLongBreak).Validate(positiveInt),
			huh.NewInput().Title("Pomodoros before long break").Value(s.pomodoroCount).Validate(positiveInt),
			huh.NewConfirm().Title("Auto-start breaks").Value(s.autoStartBreaks),
			huh.NewConfirm().Title("Auto-start focus").Value(s.autoStartFocus),
		).Title("Pomodoro"),
		huh.NewGroup(
			huh.NewInput().Title("Daily goal (hours)").Value(s.dailyGoal).Validate(nonNegativeFloat),
			huh.NewSelect[string]().Title("Week starts on").
				Description("Takes effect on next launch").
				Options(
					huh.NewOption("Monday", "monday"),
					huh.NewOption("Sunday", "sunday"),
				).Value(s.weekStart),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, tea.Batch(s.saveSettings(), s.refresh())
	}

	return s, cmd
}

// saveSettings applies the form. Timer settings are validated by the engine
// and deferred while a countdown is active.
func (s settingsModel) saveSettings() tea.Cmd {
	ts := timer.Settings{
		FocusSeconds:      atoi(minToSecs(*s.pomodoroWork)),
		ShortBreakSeconds: atoi(minToSecs(*s.pomodoroBreak)),
		LongBreakSeconds:  atoi(minToSecs(*s.pomodoroLongBreak)),
		LongBreakInterval: atoi(*s.pomodoroCount),
		AutoStartBreaks:   *s.autoStartBreaks,
		AutoStartFocus:    *s.autoStartFocus,
	}
	if err := s.tracker.UpdateSettings(ts); err != nil {
		return errorStatus(fmt.Sprintf("Settings not saved: %v", err))
	}

	goalSecs := hoursToSecs(*s.dailyGoal)
	if err := s.store.SetSetting(store.KeyDailyGoal, goalSecs); err != nil {
		return errorStatus(fmt.Sprintf("Daily goal not saved: %v", err))
	}
	goals := s.tracker.Goals()
	goals.DailyMinutes = float64(atoi(goalSecs)) / 60
	s.tracker.UpdateGoals(goals)

	if err := s.store.SetSetting(store.KeyWeekStart, *s.weekStart); err != nil {
		return errorStatus(fmt.Sprintf("Week start not saved: %v", err))
	}

	if _, pending := s.tracker.TimerSettings(); pending != nil {
		return status("Settings saved; timer changes apply after this countdown")
	}
	return status("Settings saved")
}

func (s settingsModel) getVal(k, fallback string) string {
	for _, setting := range s.settings {
		if setting.Key == k {
			return setting.Value
		}
	}
	return fallback
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	if _, pending := s.tracker.TimerSettings(); pending != nil {
		rows = append(rows, "", warningStyle.Render("  Timer changes apply after the current countdown"))
	}

	g := s.tracker.Goals()
	rows = append(rows, "", mutedStyle.Render(fmt.Sprintf("  Goals: %s/day  %s/week  %s/month  %s/year",
		formatHours(g.DailyMinutes), formatHours(g.WeeklyMinutes), formatHours(g.MonthlyMinutes), formatHours(g.YearlyMinutes))))

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case store.KeyWork, store.KeyBreak, store.KeyLongBreak:
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d min", secs/60)
		}
	case store.KeyDailyGoal:
		if _, err := strconv.Atoi(v); err == nil {
			return secsToHours(v) + " hours"
		}
	case store.KeyAutoStartBreaks, store.KeyAutoStartFocus:
		if b, err := strconv.ParseBool(v); err == nil {
			if b {
				return "on"
			}
			return "off"
		}
	}
	return v
}

func secsToMin(s string) string {
	if secs, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(secs / 60)
	}
	return s
}

func minToSecs(s string) string {
	if mins, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return strconv.Itoa(mins * 60)
	}
	return s
}

func secsToHours(s string) string {
	if secs, err := strconv.Atoi(s); err == nil {
		return fmt.Sprintf("%.1f", float64(secs)/3600)
	}
	return s
}

func hoursToSecs(s string) string {
	if hours, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return strconv.Itoa(int(hours * 3600))
	}
	return s
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func nonNegativeFloat(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return fmt.Errorf("enter a number of hours, 0 or more")
	}
	return nil
}
