package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/tomato/internal/store"
	"github.com/sadopc/tomato/internal/task"
)

func sampleData() ([]store.Session, []task.Task) {
	ended := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	tasks := []task.Task{
		{ID: "t1", Title: "Write report", Category: "work", EstimatedPomodoros: 3, CreatedAt: ended.Add(-2 * time.Hour)},
	}
	sessions := []store.Session{
		{ID: 3, Mode: "short_break", PlannedSeconds: 300, Minutes: 5, EndedAt: ended.Add(10 * time.Minute)},
		{ID: 2, Mode: "focus", TaskID: "t1", Category: "work", PlannedSeconds: 1500, Minutes: 25, EndedAt: ended},
		{ID: 1, Mode: "focus", TaskID: "gone", Category: "study", PlannedSeconds: 1500, Skipped: true, EndedAt: ended.Add(-time.Hour)},
	}
	return sessions, tasks
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	return records
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	sessions, tasks := sampleData()
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := ToCSV(sessions, tasks, path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	records := readCSV(t, path)
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}

	expectedHeader := []string{"ID", "Mode", "Task", "Category", "Ended", "Planned (s)", "Planned", "Minutes", "Skipped"}
	for i, h := range expectedHeader {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	row := records[2]
	if row[0] != "2" {
		t.Fatalf("ID = %q, want 2", row[0])
	}
	if row[1] != "focus" {
		t.Fatalf("Mode = %q, want focus", row[1])
	}
	if row[2] != "Write report" {
		t.Fatalf("Task = %q, want Write report", row[2])
	}
	if row[5] != "1500" {
		t.Fatalf("Planned (s) = %q, want 1500", row[5])
	}
	if row[6] != "00:25:00" {
		t.Fatalf("Planned = %q, want 00:25:00", row[6])
	}
	if row[7] != "25.00" {
		t.Fatalf("Minutes = %q, want 25.00", row[7])
	}
	if row[8] != "false" {
		t.Fatalf("Skipped = %q, want false", row[8])
	}

	// Break sessions carry no task.
	if records[1][2] != "" {
		t.Fatalf("break session should have empty task, got %q", records[1][2])
	}
	if records[3][8] != "true" {
		t.Fatalf("skipped flag = %q, want true", records[3][8])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	if err := ToCSV(nil, nil, path); err != nil {
		t.Fatal(err)
	}

	if records := readCSV(t, path); len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVDeletedTask(t *testing.T) {
	sessions, tasks := sampleData()
	path := filepath.Join(t.TempDir(), "deleted.csv")

	if err := ToCSV(sessions, tasks, path); err != nil {
		t.Fatal(err)
	}

	records := readCSV(t, path)
	if records[3][2] != "Deleted task" {
		t.Fatalf("expected 'Deleted task' for missing task, got %q", records[3][2])
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV(nil, nil, "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToCSVSpecialCharacters(t *testing.T) {
	tasks := []task.Task{{ID: "t1", Title: `Task "Special", with commas`}}
	sessions := []store.Session{{ID: 1, Mode: "focus", TaskID: "t1", Category: "work", PlannedSeconds: 60, Minutes: 1, EndedAt: time.Now()}}
	path := filepath.Join(t.TempDir(), "special.csv")

	if err := ToCSV(sessions, tasks, path); err != nil {
		t.Fatal(err)
	}

	records := readCSV(t, path)
	if records[1][2] != `Task "Special", with commas` {
		t.Fatalf("task title mangled: %q", records[1][2])
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	sessions, tasks := sampleData()
	path := filepath.Join(t.TempDir(), "test.json")

	if err := ToJSON(sessions, tasks, path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result document
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Count != 3 || len(result.Sessions) != 3 {
		t.Fatalf("sessions = %d/%d, want 3", result.Count, len(result.Sessions))
	}
	if result.TaskCount != 1 || len(result.Tasks) != 1 {
		t.Fatalf("tasks = %d/%d, want 1", result.TaskCount, len(result.Tasks))
	}
	if result.ExportedAt == "" {
		t.Fatal("exported_at should not be empty")
	}

	s := result.Sessions[1]
	if s.ID != 2 {
		t.Fatalf("ID = %d, want 2", s.ID)
	}
	if s.Task != "Write report" {
		t.Fatalf("Task = %q, want Write report", s.Task)
	}
	if s.Planned != "00:25:00" {
		t.Fatalf("Planned = %q, want 00:25:00", s.Planned)
	}
	if s.Minutes != 25 {
		t.Fatalf("Minutes = %v, want 25", s.Minutes)
	}
	if result.Tasks[0].Title != "Write report" {
		t.Fatalf("task title = %q", result.Tasks[0].Title)
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	if err := ToJSON(nil, nil, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"sessions": []`) {
		t.Fatalf("empty export should carry an empty sessions array:\n%s", data)
	}
	if !strings.Contains(string(data), `"tasks": []`) {
		t.Fatalf("empty export should carry an empty tasks array:\n%s", data)
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(nil, nil, "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToJSONPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pretty.json")
	if err := ToJSON(nil, nil, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "\n") {
		t.Fatal("JSON should be pretty-printed with newlines")
	}
	if !strings.Contains(string(data), "  ") {
		t.Fatal("JSON should be indented with spaces")
	}
}

func TestToJSONValidTimestamps(t *testing.T) {
	sessions, tasks := sampleData()
	path := filepath.Join(t.TempDir(), "ts.json")
	if err := ToJSON(sessions, tasks, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var result document
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}

	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}
	for _, s := range result.Sessions {
		if _, err := time.Parse(time.RFC3339, s.EndedAt); err != nil {
			t.Fatalf("ended_at is not valid RFC3339: %q", s.EndedAt)
		}
	}
}

// ============================================================
// YAML
// ============================================================

func TestToYAML(t *testing.T) {
	sessions, tasks := sampleData()
	path := filepath.Join(t.TempDir(), "test.yaml")

	if err := ToYAML(sessions, tasks, path); err != nil {
		t.Fatalf("ToYAML: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result document
	if err := yaml.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if result.Count != 3 {
		t.Fatalf("session_count = %d, want 3", result.Count)
	}
	if result.Sessions[2].Task != "Deleted task" {
		t.Fatalf("Task = %q, want Deleted task", result.Sessions[2].Task)
	}
	if !result.Sessions[2].Skipped {
		t.Fatal("expected skipped session")
	}
}

func TestWriteFormats(t *testing.T) {
	sessions, tasks := sampleData()
	dir := t.TempDir()

	for _, format := range []string{"csv", "json", "yaml", "yml"} {
		path := filepath.Join(dir, "out."+format)
		if err := Write(format, sessions, tasks, path); err != nil {
			t.Fatalf("Write(%s): %v", format, err)
		}
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Fatalf("Write(%s) produced no file: %v", format, err)
		}
	}

	if err := Write("xml", sessions, tasks, filepath.Join(dir, "out.xml")); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

// ============================================================
// formatDuration (internal helper)
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "00:00:00"},
		{1, "00:00:01"},
		{60, "00:01:00"},
		{1500, "00:25:00"},
		{3661, "01:01:01"},
		{86400, "24:00:00"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.secs); got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
