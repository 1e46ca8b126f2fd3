package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/tomato/internal/store"
	"github.com/sadopc/tomato/internal/task"
)

type document struct {
	ExportedAt string         `json:"exported_at" yaml:"exported_at"`
	TaskCount  int            `json:"task_count" yaml:"task_count"`
	Tasks      []task.Task    `json:"tasks" yaml:"tasks"`
	Count      int            `json:"session_count" yaml:"session_count"`
	Sessions   []sessionEntry `json:"sessions" yaml:"sessions"`
}

type sessionEntry struct {
	ID             int64   `json:"id" yaml:"id"`
	Mode           string  `json:"mode" yaml:"mode"`
	TaskID         string  `json:"task_id,omitempty" yaml:"task_id,omitempty"`
	Task           string  `json:"task,omitempty" yaml:"task,omitempty"`
	Category       string  `json:"category,omitempty" yaml:"category,omitempty"`
	EndedAt        string  `json:"ended_at" yaml:"ended_at"`
	PlannedSeconds int     `json:"planned_seconds" yaml:"planned_seconds"`
	Planned        string  `json:"planned" yaml:"planned"`
	Minutes        float64 `json:"minutes" yaml:"minutes"`
	Skipped        bool    `json:"skipped" yaml:"skipped"`
}

func newDocument(sessions []store.Session, tasks []task.Task) document {
	doc := document{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		TaskCount:  len(tasks),
		Tasks:      tasks,
		Count:      len(sessions),
		Sessions:   []sessionEntry{},
	}
	if doc.Tasks == nil {
		doc.Tasks = []task.Task{}
	}

	titles := taskTitles(tasks)
	for _, s := range sessions {
		doc.Sessions = append(doc.Sessions, sessionEntry{
			ID:             s.ID,
			Mode:           s.Mode,
			TaskID:         s.TaskID,
			Task:           titleOf(titles, s.TaskID),
			Category:       s.Category,
			EndedAt:        s.EndedAt.Local().Format(time.RFC3339),
			PlannedSeconds: s.PlannedSeconds,
			Planned:        formatDuration(int64(s.PlannedSeconds)),
			Minutes:        s.Minutes,
			Skipped:        s.Skipped,
		})
	}
	return doc
}

// ToJSON writes tasks and sessions as one indented JSON document.
func ToJSON(sessions []store.Session, tasks []task.Task, path string) error {
	data, err := json.MarshalIndent(newDocument(sessions, tasks), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
