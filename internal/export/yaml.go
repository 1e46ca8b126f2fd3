package export

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/tomato/internal/store"
	"github.com/sadopc/tomato/internal/task"
)

// ToYAML writes the same document as ToJSON, as YAML.
func ToYAML(sessions []store.Session, tasks []task.Task, path string) error {
	data, err := yaml.Marshal(newDocument(sessions, tasks))
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write yaml file: %w", err)
	}
	return nil
}

// Write dispatches on format: csv, json or yaml.
func Write(format string, sessions []store.Session, tasks []task.Task, path string) error {
	switch format {
	case "csv":
		return ToCSV(sessions, tasks, path)
	case "json":
		return ToJSON(sessions, tasks, path)
	case "yaml", "yml":
		return ToYAML(sessions, tasks, path)
	default:
		return fmt.Errorf("unknown export format %q (want csv, json or yaml)", format)
	}
}
