// Package export writes the session history and task list to files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/tomato/internal/store"
	"github.com/sadopc/tomato/internal/task"
)

// ToCSV writes one row per session. Tasks are looked up by id for their title.
func ToCSV(sessions []store.Session, tasks []task.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Mode", "Task", "Category", "Ended", "Planned (s)", "Planned", "Minutes", "Skipped"}); err != nil {
		return err
	}

	titles := taskTitles(tasks)
	for _, s := range sessions {
		row := []string{
			strconv.FormatInt(s.ID, 10),
			s.Mode,
			titleOf(titles, s.TaskID),
			s.Category,
			s.EndedAt.Local().Format(time.RFC3339),
			strconv.Itoa(s.PlannedSeconds),
			formatDuration(int64(s.PlannedSeconds)),
			strconv.FormatFloat(s.Minutes, 'f', 2, 64),
			strconv.FormatBool(s.Skipped),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func taskTitles(tasks []task.Task) map[string]string {
	m := make(map[string]string, len(tasks))
	for _, t := range tasks {
		m[t.ID] = t.Title
	}
	return m
}

// titleOf is "" for sessions without a task and "Deleted task" when the task
// is gone.
func titleOf(titles map[string]string, id string) string {
	if id == "" {
		return ""
	}
	if t, ok := titles[id]; ok {
		return t
	}
	return "Deleted task"
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
