package store

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/sadopc/tomato/internal/timer"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != currentVersion {
		t.Fatalf("expected user_version %d, got %d", currentVersion, version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/tomato.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(context.Background(), "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: data survives and migrations do not rerun.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	got, err := s2.Load(context.Background(), "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v" {
		t.Fatalf("expected v after reopen, got %q", got)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func TestMigrationFromV1(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.db.Exec(`DROP TABLE sessions; PRAGMA user_version = 1`); err != nil {
		t.Fatal(err)
	}
	if err := s.migrate(); err != nil {
		t.Fatalf("migrate v1 -> v2: %v", err)
	}
	if _, err := s.RecordSession(context.Background(), Session{Mode: "focus"}); err != nil {
		t.Fatalf("sessions table missing after upgrade: %v", err)
	}
}

// ============================================================
// Key/value
// ============================================================

func TestLoadMissingKey(t *testing.T) {
	s := newTestStore(t)
	got, err := s.Load(context.Background(), "tasks")
	if err != nil {
		t.Fatalf("missing key should not error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing key, got %q", got)
	}
}

func TestSaveAndLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "streak", []byte(`{"current_streak":1}`)); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "streak", []byte(`{"current_streak":2}`)); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load(ctx, "streak")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte(`{"current_streak":2}`)) {
		t.Fatalf("expected overwritten value, got %q", got)
	}
}

func TestLoadCancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Load(ctx, "tasks"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

// ============================================================
// Sessions
// ============================================================

func TestRecordAndListSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

	inputs := []Session{
		{Mode: "focus", TaskID: "t1", Category: "work", PlannedSeconds: 1500, Minutes: 25, EndedAt: base},
		{Mode: "short_break", PlannedSeconds: 300, EndedAt: base.Add(5 * time.Minute)},
		{Mode: "focus", Category: "work", PlannedSeconds: 1500, Skipped: true, EndedAt: base.Add(10 * time.Minute)},
		{Mode: "focus", TaskID: "t2", Category: "study", PlannedSeconds: 1500, Minutes: 25, EndedAt: base.Add(40 * time.Minute)},
	}
	for _, in := range inputs {
		got, err := s.RecordSession(ctx, in)
		if err != nil {
			t.Fatal(err)
		}
		if got.ID == 0 {
			t.Fatal("expected id to be assigned")
		}
	}

	all, err := s.ListSessions(ctx, SessionFilter{IncludeSkipped: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 sessions, got %d", len(all))
	}
	if all[0].TaskID != "t2" {
		t.Fatalf("expected most recent first, got %+v", all[0])
	}
	if !all[1].Skipped {
		t.Fatal("expected skipped flag to round-trip")
	}
	if !all[3].EndedAt.Equal(base) {
		t.Fatalf("ended_at mismatch: %v", all[3].EndedAt)
	}

	focus, _ := s.ListSessions(ctx, SessionFilter{Mode: "focus"})
	if len(focus) != 2 {
		t.Fatalf("expected 2 completed focus sessions, got %d", len(focus))
	}

	byTask, _ := s.ListSessions(ctx, SessionFilter{TaskID: "t1"})
	if len(byTask) != 1 || byTask[0].Minutes != 25 {
		t.Fatalf("task filter: %+v", byTask)
	}

	from := base.Add(time.Minute)
	to := base.Add(30 * time.Minute)
	ranged, _ := s.ListSessions(ctx, SessionFilter{From: &from, To: &to, IncludeSkipped: true})
	if len(ranged) != 2 {
		t.Fatalf("expected 2 sessions in range, got %d", len(ranged))
	}

	limited, _ := s.ListSessions(ctx, SessionFilter{Limit: 1, IncludeSkipped: true})
	if len(limited) != 1 {
		t.Fatalf("expected limit 1, got %d", len(limited))
	}
}

func TestListSessionsEmpty(t *testing.T) {
	s := newTestStore(t)
	got, err := s.ListSessions(context.Background(), SessionFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected none, got %d", len(got))
	}
}

func TestCountSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	s.RecordSession(ctx, Session{Mode: "focus", Minutes: 25, PlannedSeconds: 1500, EndedAt: now})
	s.RecordSession(ctx, Session{Mode: "focus", Minutes: 25, PlannedSeconds: 1500, EndedAt: now})
	s.RecordSession(ctx, Session{Mode: "focus", Skipped: true, EndedAt: now})
	s.RecordSession(ctx, Session{Mode: "short_break", EndedAt: now})

	completed, skipped, err := s.CountSessions(ctx, "focus", now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if completed != 2 || skipped != 1 {
		t.Fatalf("expected 2 completed and 1 skipped, got %d/%d", completed, skipped)
	}
}

func TestCountSessionsEmpty(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	completed, skipped, err := s.CountSessions(context.Background(), "focus", now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if completed != 0 || skipped != 0 {
		t.Fatal("expected zeros for empty history")
	}
}

func TestSessionStartedAt(t *testing.T) {
	end := time.Date(2026, 3, 9, 10, 25, 0, 0, time.UTC)
	s := Session{PlannedSeconds: 1500, EndedAt: end}
	if want := end.Add(-25 * time.Minute); !s.StartedAt().Equal(want) {
		t.Fatalf("StartedAt = %v, want %v", s.StartedAt(), want)
	}
	s.Skipped = true
	if !s.StartedAt().Equal(end) {
		t.Fatal("skipped sessions start at their end")
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)

	defaults := map[string]string{
		"pomodoro_work":       "1500",
		"pomodoro_break":      "300",
		"pomodoro_long_break": "900",
		"pomodoro_count":      "4",
		"auto_start_breaks":   "false",
		"auto_start_focus":    "false",
		"daily_goal":          "28800",
		"week_start":          "monday",
	}

	for k, expected := range defaults {
		val, err := s.GetSetting(k)
		if err != nil {
			t.Fatalf("GetSetting(%q): %v", k, err)
		}
		if val != expected {
			t.Fatalf("GetSetting(%q) = %q, want %q", k, val, expected)
		}
	}
}

func TestSetSettingOverwrite(t *testing.T) {
	s := newTestStore(t)

	s.SetSetting("key", "v1")
	s.SetSetting("key", "v2")
	val, _ := s.GetSetting("key")
	if val != "v2" {
		t.Fatalf("expected v2, got %s", val)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting("nonexistent")
	if err == nil {
		t.Fatal("expected error for missing setting")
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	all, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) < 8 {
		t.Fatalf("expected at least 8 default settings, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Key >= all[i].Key {
			t.Fatalf("settings not sorted: %s >= %s", all[i-1].Key, all[i].Key)
		}
	}
}

func TestTimerSettingsDefaults(t *testing.T) {
	s := newTestStore(t)
	got, err := s.TimerSettings()
	if err != nil {
		t.Fatal(err)
	}
	if got != timer.DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestSaveTimerSettings(t *testing.T) {
	s := newTestStore(t)
	want := timer.Settings{
		FocusSeconds:      3000,
		ShortBreakSeconds: 600,
		LongBreakSeconds:  1200,
		AutoStartBreaks:   true,
		AutoStartFocus:    false,
		LongBreakInterval: 3,
	}
	if err := s.SaveTimerSettings(want); err != nil {
		t.Fatal(err)
	}
	got, err := s.TimerSettings()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if v, _ := s.GetSetting(KeyWork); v != "3000" {
		t.Fatalf("pomodoro_work = %q", v)
	}
}

func TestTimerSettingsMissingRow(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, KeyLongBreak); err != nil {
		t.Fatal(err)
	}
	got, err := s.TimerSettings()
	if err != nil {
		t.Fatal(err)
	}
	if got.LongBreakSeconds != timer.DefaultLongBreakSeconds {
		t.Fatalf("expected default long break, got %d", got.LongBreakSeconds)
	}
}

func TestTimerSettingsBadValue(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting(KeyAutoStartFocus, "sometimes")
	if _, err := s.TimerSettings(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDailyGoalAndWeekStart(t *testing.T) {
	s := newTestStore(t)

	goal, err := s.DailyGoal()
	if err != nil {
		t.Fatal(err)
	}
	if goal != 8*time.Hour {
		t.Fatalf("expected 8h default goal, got %v", goal)
	}
	s.SetSetting(KeyDailyGoal, "3600")
	goal, _ = s.DailyGoal()
	if goal != time.Hour {
		t.Fatalf("expected 1h goal, got %v", goal)
	}

	ws, err := s.WeekStart()
	if err != nil {
		t.Fatal(err)
	}
	if ws != time.Monday {
		t.Fatalf("expected monday, got %v", ws)
	}
	s.SetSetting(KeyWeekStart, "Sunday")
	ws, _ = s.WeekStart()
	if ws != time.Sunday {
		t.Fatalf("expected sunday, got %v", ws)
	}
}

// ============================================================
// Close
// ============================================================

func TestCloseStore(t *testing.T) {
	s, _ := NewMemory()
	err := s.Close()
	if err != nil {
		t.Fatalf("first close: %v", err)
	}
}
