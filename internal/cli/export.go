package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/tomato/internal/app"
	"github.com/sadopc/tomato/internal/export"
	"github.com/sadopc/tomato/internal/store"
)

func newExportCmd(opts *options) *cobra.Command {
	var (
		format string
		out    string
		from   string
		to     string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export session history and tasks",
		Long: `Write every recorded countdown, skipped ones included, along with the task
list to a CSV, JSON or YAML file.`,
		Example: `  tomato export --format json
  tomato export -f csv -o sessions.csv --from 2026-01-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = fmt.Sprintf("tomato-export-%s.%s", time.Now().Format("2006-01-02"), format)
			}
			f := store.SessionFilter{IncludeSkipped: true}
			if from != "" {
				t, err := parseDate(from)
				if err != nil {
					return err
				}
				start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
				f.From = &start
			}
			if to != "" {
				t, err := parseDate(to)
				if err != nil {
					return err
				}
				end := time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
				f.To = &end
			}

			return withApp(cmd, opts, func(a *app.App) error {
				sessions, err := a.Tracker.Sessions(cmd.Context(), f)
				if err != nil {
					return err
				}
				if err := export.Write(format, sessions, a.Tracker.Tasks(), out); err != nil {
					return err
				}
				abs, err := filepath.Abs(out)
				if err != nil {
					abs = out
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d sessions to %s\n",
					styleSuccess.Render("Exported"), len(sessions), abs)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "export format: csv, json or yaml")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default tomato-export-DATE.FORMAT)")
	cmd.Flags().StringVar(&from, "from", "", "first day to include, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last day to include, YYYY-MM-DD")
	return cmd
}
