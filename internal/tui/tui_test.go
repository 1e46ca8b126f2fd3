package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/tomato/internal/category"
	"github.com/sadopc/tomato/internal/stats"
	"github.com/sadopc/tomato/internal/store"
	"github.com/sadopc/tomato/internal/timer"
	"github.com/sadopc/tomato/internal/tracker"
)

type harness struct {
	store   *store.Store
	tracker *tracker.Tracker
	sched   *timer.Manual
}

func newHarness(t *testing.T) harness {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	sched := &timer.Manual{}
	tr, err := tracker.New(tracker.Options{
		KV:       s,
		Sessions: s,
		Settings: s,
		Catalog:  category.Closed(),
		TimerSettings: timer.Settings{
			FocusSeconds:      3,
			ShortBreakSeconds: 2,
			LongBreakSeconds:  4,
			LongBreakInterval: 4,
		},
		Goals:     stats.DefaultGoals(),
		Scheduler: sched,
	})
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	t.Cleanup(tr.Close)
	return harness{store: s, tracker: tr, sched: sched}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var space = tea.KeyMsg{Type: tea.KeySpace}

// ============================================================
// Timer view
// ============================================================

func TestTimerStartPauseResume(t *testing.T) {
	h := newHarness(t)
	tm := newTimerModel(h.tracker)

	if !tm.state.Idle() {
		t.Fatal("timer should start idle")
	}
	if tm.state.SecondsRemaining != 3 {
		t.Fatalf("remaining = %d, want 3", tm.state.SecondsRemaining)
	}

	tm, _ = tm.update(runes("s"))
	if !tm.state.IsRunning {
		t.Fatal("timer should be running after s")
	}
	if !h.sched.Armed() {
		t.Fatal("scheduler should be armed")
	}

	tm, _ = tm.update(space)
	if !tm.state.IsPaused {
		t.Fatal("space should pause a running timer")
	}

	tm, _ = tm.update(space)
	if !tm.state.IsRunning {
		t.Fatal("space should resume a paused timer")
	}
}

func TestTimerTickRefreshes(t *testing.T) {
	h := newHarness(t)
	tm := newTimerModel(h.tracker)

	tm, _ = tm.update(runes("s"))
	h.sched.Fire()
	tm, _ = tm.update(tickMsg{})
	if tm.state.SecondsRemaining != 2 {
		t.Fatalf("remaining = %d, want 2", tm.state.SecondsRemaining)
	}
}

func TestTimerResetAndSkip(t *testing.T) {
	h := newHarness(t)
	tm := newTimerModel(h.tracker)

	tm, _ = tm.update(runes("s"))
	h.sched.Fire()
	tm, _ = tm.update(runes("r"))
	if !tm.state.Idle() || tm.state.SecondsRemaining != 3 {
		t.Fatalf("reset state = %+v", tm.state)
	}

	tm, cmd := tm.update(runes("x"))
	if tm.state.Mode != timer.ShortBreak {
		t.Fatalf("mode after skip = %v, want short_break", tm.state.Mode)
	}
	msg, ok := cmd().(statusMsg)
	if !ok || !strings.Contains(msg.text, "short break") {
		t.Fatalf("skip status = %+v", msg)
	}
}

func TestTimerModeCycle(t *testing.T) {
	h := newHarness(t)
	tm := newTimerModel(h.tracker)

	tm, _ = tm.update(runes("m"))
	if tm.state.Mode != timer.ShortBreak {
		t.Fatalf("mode = %v, want short_break", tm.state.Mode)
	}

	tm, _ = tm.update(runes("s"))
	tm, cmd := tm.update(runes("m"))
	if tm.state.Mode != timer.ShortBreak {
		t.Fatal("mode must not change while running")
	}
	if msg, ok := cmd().(statusMsg); !ok || !msg.isError {
		t.Fatalf("expected error status, got %+v", msg)
	}
}

func TestNextMode(t *testing.T) {
	if nextMode(timer.Focus) != timer.ShortBreak {
		t.Fatal("focus -> short break")
	}
	if nextMode(timer.ShortBreak) != timer.LongBreak {
		t.Fatal("short -> long break")
	}
	if nextMode(timer.LongBreak) != timer.Focus {
		t.Fatal("long break -> focus")
	}
}

func TestTimerViewShowsActiveTask(t *testing.T) {
	h := newHarness(t)
	tk, err := h.tracker.AddTask("Write report", category.Work, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := h.tracker.SelectActiveTask(tk.ID); err != nil {
		t.Fatal(err)
	}

	tm := newTimerModel(h.tracker)
	tm.setSize(100, 30)
	if !strings.Contains(tm.view(), "Write report") {
		t.Fatal("view should show the active task")
	}
}

// ============================================================
// Tasks view
// ============================================================

func TestTasksLifecycle(t *testing.T) {
	h := newHarness(t)
	if _, err := h.tracker.AddTask("first", category.Work, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := h.tracker.AddTask("second", category.Study, 2); err != nil {
		t.Fatal(err)
	}

	p := newTasksModel(h.tracker)
	if len(p.tasks) != 2 {
		t.Fatalf("tasks = %d, want 2", len(p.tasks))
	}
	if p.tasks[0].Title != "second" {
		t.Fatalf("newest task should be first, got %q", p.tasks[0].Title)
	}

	p, _ = p.update(runes("c"))
	p, _ = p.update(p.fetch())
	if !p.tasks[0].Completed {
		t.Fatal("c should complete the selected task")
	}
	if r := h.tracker.StatsNow().Daily; r.TasksDone != 1 || r.TasksRemaining != 1 {
		t.Fatalf("counters = %d done, %d remaining", r.TasksDone, r.TasksRemaining)
	}

	p, _ = p.update(runes("c"))
	p, _ = p.update(p.fetch())
	if p.tasks[0].Completed {
		t.Fatal("c on a completed task should reopen it")
	}

	p, _ = p.update(runes("j"))
	p, _ = p.update(runes("a"))
	if id := h.tracker.Timer().ActiveTaskID; id != p.tasks[1].ID {
		t.Fatalf("active task = %q, want %q", id, p.tasks[1].ID)
	}
	p, _ = p.update(p.fetch())
	p, _ = p.update(runes("a"))
	if id := h.tracker.Timer().ActiveTaskID; id != "" {
		t.Fatalf("selecting the active task again should clear it, got %q", id)
	}

	p, _ = p.update(runes("+"))
	p, _ = p.update(p.fetch())
	if p.tasks[1].CompletedPomodoros != 1 {
		t.Fatalf("pomodoros = %d, want 1", p.tasks[1].CompletedPomodoros)
	}

	p, _ = p.update(runes("d"))
	p, _ = p.update(p.fetch())
	if len(p.tasks) != 1 {
		t.Fatalf("tasks after delete = %d, want 1", len(p.tasks))
	}
	if p.cursor != 0 {
		t.Fatalf("cursor should clamp, got %d", p.cursor)
	}
}

func TestTasksFilter(t *testing.T) {
	h := newHarness(t)
	h.tracker.AddTask("a", category.Work, 1)
	h.tracker.AddTask("b", category.Study, 1)

	p := newTasksModel(h.tracker)
	if p.filters[0] != filterAll || p.filters[1] != filterToday || p.filters[2] != category.Work {
		t.Fatalf("filters = %v", p.filters)
	}

	// all -> today -> work
	p, _ = p.update(runes("f"))
	p, _ = p.update(p.fetch())
	if len(p.tasks) != 2 {
		t.Fatalf("today = %d, want 2", len(p.tasks))
	}
	p, _ = p.update(runes("f"))
	p, _ = p.update(p.fetch())
	if len(p.tasks) != 1 || p.tasks[0].Title != "a" {
		t.Fatalf("work filter = %+v", p.tasks)
	}
}

func TestTasksSubmitForm(t *testing.T) {
	h := newHarness(t)
	p := newTasksModel(h.tracker)

	*p.formTitle = "  Read paper "
	*p.formCategory = category.Study
	*p.formEstimate = "3"
	cmd := p.submitForm()
	if cmd == nil {
		t.Fatal("submit should return a command")
	}

	tasks := h.tracker.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(tasks))
	}
	if tasks[0].Title != "Read paper" || tasks[0].EstimatedPomodoros != 3 || tasks[0].Category != category.Study {
		t.Fatalf("task = %+v", tasks[0])
	}

	p.editingID = tasks[0].ID
	*p.formTitle = "Read two papers"
	*p.formEstimate = "4"
	p.submitForm()
	got, _ := h.tracker.Task(tasks[0].ID)
	if got.Title != "Read two papers" || got.EstimatedPomodoros != 4 {
		t.Fatalf("edited task = %+v", got)
	}
}

func TestTasksSubmitInvalidCategory(t *testing.T) {
	h := newHarness(t)
	p := newTasksModel(h.tracker)

	*p.formTitle = "Prune roses"
	*p.formCategory = "gardening"
	*p.formEstimate = "1"
	p.submitForm()

	if n := len(h.tracker.Tasks()); n != 0 {
		t.Fatalf("closed catalog should reject the task, got %d tasks", n)
	}
}

func TestFormValidators(t *testing.T) {
	if requireText("  ") == nil {
		t.Fatal("blank text should fail")
	}
	if requireText("x") != nil {
		t.Fatal("text should pass")
	}
	for _, bad := range []string{"0", "-1", "abc", ""} {
		if positiveInt(bad) == nil {
			t.Fatalf("positiveInt(%q) should fail", bad)
		}
	}
	if positiveInt(" 2 ") != nil {
		t.Fatal("positiveInt(2) should pass")
	}
	if nonNegativeFloat("-1") == nil || nonNegativeFloat("1.5") != nil || nonNegativeFloat("0") != nil {
		t.Fatal("nonNegativeFloat")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("a long title", 6); got != "a lon…" {
		t.Fatalf("truncate = %q", got)
	}
}

// ============================================================
// Stats view
// ============================================================

func TestStatsDayBars(t *testing.T) {
	h := newHarness(t)
	r := newStatsModel(h.tracker)

	msg := r.fetch()
	if len(msg.bars) != 7 {
		t.Fatalf("day bars = %d, want 7", len(msg.bars))
	}
	if msg.totals.GoalMinutes != 480 {
		t.Fatalf("daily goal = %v, want 480", msg.totals.GoalMinutes)
	}
}

func TestStatsPeriodsCycle(t *testing.T) {
	h := newHarness(t)
	r := newStatsModel(h.tracker)
	r.setSize(120, 40)

	r, _ = r.update(runes("m"))
	if r.mode != statsWeek {
		t.Fatalf("mode = %d, want week", r.mode)
	}
	if msg := r.fetch(); len(msg.bars) != 7 || msg.totals.GoalMinutes != 1200 {
		t.Fatalf("week = %d bars, goal %v", len(msg.bars), msg.totals.GoalMinutes)
	}

	r, _ = r.update(runes("m"))
	r, _ = r.update(runes("m"))
	if r.mode != statsYear {
		t.Fatalf("mode = %d, want year", r.mode)
	}
	msg := r.fetch()
	if len(msg.bars) != 12 || msg.bars[0].label != "Jan" {
		t.Fatalf("year bars = %+v", msg.bars)
	}

	r, _ = r.update(msg)
	if !strings.Contains(r.view(), "Stats") {
		t.Fatal("view should render")
	}

	r, _ = r.update(runes("m"))
	if r.mode != statsDay {
		t.Fatal("mode should wrap to day")
	}
}

func TestStatsOffset(t *testing.T) {
	h := newHarness(t)
	r := newStatsModel(h.tracker)

	r, _ = r.update(runes("h"))
	if r.offset != 1 {
		t.Fatalf("offset = %d, want 1", r.offset)
	}
	r, _ = r.update(runes("l"))
	r, _ = r.update(runes("l"))
	if r.offset != 0 {
		t.Fatalf("offset should not go below 0, got %d", r.offset)
	}
}

func TestWeekDays(t *testing.T) {
	days := weekDays("2026-03-09")
	if len(days) != 7 || days[0] != "2026-03-09" || days[6] != "2026-03-15" {
		t.Fatalf("weekDays = %v", days)
	}
	if weekDays("bad") != nil {
		t.Fatal("bad key should give no days")
	}
}

func TestMonthLabel(t *testing.T) {
	if got := monthLabel("03"); got != "Mar" {
		t.Fatalf("monthLabel = %q", got)
	}
	if got := dayLabel("2026-03-09", "Mon 02"); got != "Mon 09" {
		t.Fatalf("dayLabel = %q", got)
	}
}

// ============================================================
// Settings view
// ============================================================

func TestSettingsSave(t *testing.T) {
	h := newHarness(t)
	s := newSettingsModel(h.tracker, h.store)

	*s.pomodoroWork = "30"
	*s.pomodoroBreak = "10"
	*s.pomodoroLongBreak = "20"
	*s.pomodoroCount = "3"
	*s.autoStartBreaks = true
	*s.autoStartFocus = false
	*s.dailyGoal = "6"
	*s.weekStart = "sunday"

	msg, ok := s.saveSettings()().(statusMsg)
	if !ok || msg.isError {
		t.Fatalf("save status = %+v", msg)
	}

	ts, pending := h.tracker.TimerSettings()
	if pending != nil {
		t.Fatal("idle timer should apply settings at once")
	}
	if ts.FocusSeconds != 1800 || ts.ShortBreakSeconds != 600 || ts.LongBreakSeconds != 1200 || ts.LongBreakInterval != 3 || !ts.AutoStartBreaks {
		t.Fatalf("settings = %+v", ts)
	}

	stored, err := h.store.TimerSettings()
	if err != nil {
		t.Fatal(err)
	}
	if stored != ts {
		t.Fatalf("stored = %+v, want %+v", stored, ts)
	}

	if g := h.tracker.Goals().DailyMinutes; g != 360 {
		t.Fatalf("daily goal = %v, want 360", g)
	}
	if v, _ := h.store.GetSetting(store.KeyDailyGoal); v != "21600" {
		t.Fatalf("daily_goal = %q, want 21600", v)
	}
	if v, _ := h.store.GetSetting(store.KeyWeekStart); v != "sunday" {
		t.Fatalf("week_start = %q, want sunday", v)
	}
}

func TestSettingsDeferredWhileRunning(t *testing.T) {
	h := newHarness(t)
	h.tracker.Start()
	s := newSettingsModel(h.tracker, h.store)

	*s.pomodoroWork = "30"
	*s.pomodoroBreak = "5"
	*s.pomodoroLongBreak = "15"
	*s.pomodoroCount = "4"
	*s.dailyGoal = "8"
	*s.weekStart = "monday"

	msg := s.saveSettings()().(statusMsg)
	if !strings.Contains(msg.text, "after this countdown") {
		t.Fatalf("status = %q", msg.text)
	}
	if _, pending := h.tracker.TimerSettings(); pending == nil {
		t.Fatal("change should be pending while running")
	}
}

func TestSettingsInvalid(t *testing.T) {
	h := newHarness(t)
	s := newSettingsModel(h.tracker, h.store)

	*s.pomodoroWork = "0"
	*s.pomodoroBreak = "5"
	*s.pomodoroLongBreak = "15"
	*s.pomodoroCount = "4"
	*s.dailyGoal = "8"
	*s.weekStart = "monday"

	msg := s.saveSettings()().(statusMsg)
	if !msg.isError {
		t.Fatal("zero focus length should fail")
	}
	if ts, _ := h.tracker.TimerSettings(); ts.FocusSeconds != 3 {
		t.Fatalf("settings changed to %+v", ts)
	}
}

func TestSecsToMin(t *testing.T) {
	tests := []struct{ in, want string }{
		{"1500", "25"},
		{"60", "1"},
		{"abc", "abc"},
	}
	for _, tt := range tests {
		if got := secsToMin(tt.in); got != tt.want {
			t.Errorf("secsToMin(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMinToSecs(t *testing.T) {
	tests := []struct{ in, want string }{
		{"25", "1500"},
		{" 1 ", "60"},
		{"abc", "abc"},
	}
	for _, tt := range tests {
		if got := minToSecs(tt.in); got != tt.want {
			t.Errorf("minToSecs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSecsToHours(t *testing.T) {
	if got := secsToHours("28800"); got != "8.0" {
		t.Fatalf("secsToHours = %q", got)
	}
	if got := hoursToSecs("1.5"); got != "5400" {
		t.Fatalf("hoursToSecs = %q", got)
	}
}

func TestFormatSettingValue(t *testing.T) {
	tests := []struct{ k, v, want string }{
		{store.KeyWork, "1500", "25 min"},
		{store.KeyDailyGoal, "28800", "8.0 hours"},
		{store.KeyAutoStartFocus, "true", "on"},
		{store.KeyAutoStartBreaks, "false", "off"},
		{store.KeyWeekStart, "monday", "monday"},
	}
	for _, tt := range tests {
		if got := formatSettingValue(tt.k, tt.v); got != tt.want {
			t.Errorf("formatSettingValue(%q, %q) = %q, want %q", tt.k, tt.v, got, tt.want)
		}
	}
}

// ============================================================
// Helpers
// ============================================================

func TestFormatClock(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{0, "00:00"},
		{-5, "00:00"},
		{59, "00:59"},
		{1500, "25:00"},
		{3661, "1:01:01"},
	}
	for _, tt := range tests {
		if got := formatClock(tt.secs); got != tt.want {
			t.Errorf("formatClock(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		min  float64
		want string
	}{
		{0, "0m"},
		{25, "25m"},
		{24.6, "25m"},
		{65, "1h 05m"},
		{600, "10h 00m"},
	}
	for _, tt := range tests {
		if got := formatMinutes(tt.min); got != tt.want {
			t.Errorf("formatMinutes(%v) = %q, want %q", tt.min, got, tt.want)
		}
	}
	if got := formatHours(90); got != "1.5h" {
		t.Fatalf("formatHours = %q", got)
	}
}

func TestProgressBar(t *testing.T) {
	if progressBar(50, 0) != "" {
		t.Fatal("zero width should be empty")
	}
	if got := progressBar(150, 4); got == "" {
		t.Fatal("over 100 should still render")
	}
}

func TestViewNames(t *testing.T) {
	if len(viewNames) != 5 {
		t.Fatalf("expected 5 views, got %d", len(viewNames))
	}
	if viewNames[viewToday] != "Today" || viewNames[viewSettings] != "Settings" {
		t.Fatalf("view names = %v", viewNames)
	}
}

func TestCategoryColor(t *testing.T) {
	if categoryColor(category.Work) != categoryColors[category.Work] {
		t.Fatal("predefined category should use its color")
	}
	if categoryColor("gardening") != categoryColor("gardening") {
		t.Fatal("color must be stable")
	}
}

// ============================================================
// App
// ============================================================

func TestNewApp(t *testing.T) {
	h := newHarness(t)
	a := NewApp(h.tracker, h.store)

	if a.activeView != viewToday {
		t.Fatal("default view should be Today")
	}
	if a.View() != "Loading..." {
		t.Fatal("view before sizing should be the loading placeholder")
	}
}

func TestAppTabs(t *testing.T) {
	h := newHarness(t)
	var m tea.Model = NewApp(h.tracker, h.store)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	for i, k := range []string{"1", "2", "3", "4", "5"} {
		m, _ = m.Update(runes(k))
		if got := m.(App).activeView; got != viewState(i) {
			t.Fatalf("key %s: view = %d, want %d", k, got, i)
		}
		if !strings.Contains(m.View(), viewNames[i]) {
			t.Fatalf("header should show %s", viewNames[i])
		}
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.(App).activeView != viewToday {
		t.Fatal("tab should wrap to the first view")
	}
}

func TestAppStatusMessage(t *testing.T) {
	h := newHarness(t)
	var m tea.Model = NewApp(h.tracker, h.store)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	m, _ = m.Update(statusMsg{text: "hello there"})
	if !strings.Contains(m.View(), "hello there") {
		t.Fatal("footer should show the status")
	}
}

func TestAppCompletionTick(t *testing.T) {
	h := newHarness(t)
	var m tea.Model = NewApp(h.tracker, h.store)

	h.tracker.Start()
	if n := h.sched.FireN(10); n != 3 {
		t.Fatalf("callbacks = %d, want 3", n)
	}

	a := m.(App)
	msg, ok := a.finishedCmd()().(statusMsg)
	if !ok || !strings.Contains(msg.text, "short break") {
		t.Fatalf("finished status = %+v", msg)
	}

	m, _ = m.Update(tickMsg{})
	if h.tracker.ConsumeFinished() {
		t.Fatal("the tick should have consumed the finished flag")
	}
	if m.(App).timer.state.Mode != timer.ShortBreak {
		t.Fatal("timer view should refresh on tick")
	}
}

func TestAppExportPicker(t *testing.T) {
	h := newHarness(t)
	a := NewApp(h.tracker, h.store)
	a.exportDir = t.TempDir()
	var m tea.Model = a
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	m, _ = m.Update(runes("E"))
	if !m.(App).exportPicking {
		t.Fatal("E should open the export picker")
	}
	m, _ = m.Update(runes("j"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.(App).exportPicking {
		t.Fatal("enter should close the picker")
	}

	done, ok := cmd().(exportDoneMsg)
	if !ok {
		t.Fatalf("expected exportDoneMsg, got %#v", done)
	}
	if !strings.HasSuffix(done.path, ".json") {
		t.Fatalf("path = %q, want .json", done.path)
	}
}

func TestKeyMapHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should not be empty")
	}
	if len(keys.FullHelp()) != 4 {
		t.Fatalf("full help groups = %d, want 4", len(keys.FullHelp()))
	}
}
