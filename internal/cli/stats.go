package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sadopc/tomato/internal/app"
	"github.com/sadopc/tomato/internal/period"
	"github.com/sadopc/tomato/internal/stats"
	"github.com/sadopc/tomato/internal/timer"
)

var periodNames = []string{"day", "week", "month", "year"}

func newStatsCmd(opts *options) *cobra.Command {
	var (
		date   string
		format string
	)
	cmd := &cobra.Command{
		Use:       "stats [day|week|month|year]",
		Short:     "Show focus statistics for a period",
		Long:      `Show focus time, goal progress, category breakdown and task counts for the day, week, month or year containing --date (default today).`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: periodNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := "day"
			if len(args) == 1 {
				kind = args[0]
			}
			at, err := parseDate(date)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app.App) error {
				rep := a.Tracker.Stats(at)
				var record any
				var totals stats.Totals
				var label string
				switch kind {
				case "week":
					record, totals, label = rep.Weekly, rep.Weekly.Totals, "Week of "+rep.Weekly.WeekStart
				case "month":
					record, totals, label = rep.Monthly, rep.Monthly.Totals, rep.Monthly.Month
				case "year":
					record, totals, label = rep.Yearly, rep.Yearly.Totals, rep.Yearly.Year
				default:
					record, totals, label = rep.Daily, rep.Daily.Totals, rep.Daily.Date
				}

				out := cmd.OutOrStdout()
				switch format {
				case "json":
					return writeJSON(out, record)
				case "yaml":
					return writeYAML(out, record)
				case "text":
				default:
					return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
				}

				weekStart, _ := a.Store.WeekStart()
				from, to := bounds(kind, at, weekStart)
				completed, skipped, err := a.Store.CountSessions(cmd.Context(), timer.Focus.String(), from, to)
				if err != nil {
					return err
				}
				printTotals(out, label, totals)
				if kind == "day" {
					fmt.Fprintf(out, "  %s %d\n", styleLabel.Render("Pomodoros:"), rep.Daily.PomodoroCount)
				}
				fmt.Fprintf(out, "  %s %d completed, %d skipped\n", styleLabel.Render("Focus sessions:"), completed, skipped)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "any day inside the period, YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or yaml")
	return cmd
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation(period.DayLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q, want YYYY-MM-DD", s)
	}
	// Noon keeps the day stable across DST shifts.
	return t.Add(12 * time.Hour), nil
}

// bounds returns the half-open range of the period of kind containing at.
func bounds(kind string, at time.Time, weekStart time.Weekday) (time.Time, time.Time) {
	switch kind {
	case "week":
		from := period.StartOfWeek(at, weekStart)
		return from, from.AddDate(0, 0, 7)
	case "month":
		from := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, at.Location())
		return from, from.AddDate(0, 1, 0)
	case "year":
		from := time.Date(at.Year(), 1, 1, 0, 0, 0, 0, at.Location())
		return from, from.AddDate(1, 0, 0)
	default:
		from := period.StartOfDay(at)
		return from, from.AddDate(0, 0, 1)
	}
}

func printTotals(w io.Writer, label string, t stats.Totals) {
	fmt.Fprintln(w, styleHeader.Render(label))
	fmt.Fprintf(w, "  %s %s", styleLabel.Render("Focus:"), styleValue.Render(formatMinutes(t.TotalFocusMinutes)))
	if t.GoalMinutes > 0 {
		fmt.Fprintf(w, " of %s (%.0f%%)", formatMinutes(t.GoalMinutes), t.Progress())
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %d done, %d remaining\n", styleLabel.Render("Tasks:"), t.TasksDone, t.TasksRemaining)

	var parts []string
	for _, cat := range stats.Categories(t.CategoryBreakdown) {
		if m := t.CategoryBreakdown[cat]; m > 0 {
			parts = append(parts, fmt.Sprintf("%s %s", cat, formatMinutes(m)))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(w, "  %s %s\n", styleLabel.Render("Categories:"), strings.Join(parts, ", "))
	}
}

func formatMinutes(minutes float64) string {
	total := int(minutes + 0.5)
	if total < 60 {
		return fmt.Sprintf("%dm", total)
	}
	return fmt.Sprintf("%dh %02dm", total/60, total%60)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func newStreakCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "streak",
		Short: "Show the consecutive-day focus streak",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app.App) error {
				d := a.Tracker.Streak()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s %s\n", styleLabel.Render("Current streak:"), styleValue.Render(fmt.Sprintf("%d days", a.Tracker.CurrentStreak())))
				fmt.Fprintf(out, "%s %d days\n", styleLabel.Render("Longest streak:"), d.LongestStreak)
				if d.LastActiveDate != "" {
					fmt.Fprintf(out, "%s %s\n", styleLabel.Render("Last active:"), d.LastActiveDate)
				}
				return nil
			})
		},
	}
}

func newInsightsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Show when and on what you focus best",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app.App) error {
				in, err := a.Tracker.Insights(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				empty := true
				if in.TopCategory != "" && in.TopCategoryMinutes > 0 {
					fmt.Fprintf(out, "%s %s (%s this week)\n", styleLabel.Render("Top category:"), in.TopCategory, formatMinutes(in.TopCategoryMinutes))
					empty = false
				}
				if in.HasBestHour {
					fmt.Fprintf(out, "%s %02d:00-%02d:00\n", styleLabel.Render("Most productive hour:"), in.BestHour, in.BestHourEnd())
					empty = false
				}
				if in.HasBestWeekday {
					fmt.Fprintf(out, "%s %s (avg %s)\n", styleLabel.Render("Best day:"), in.BestWeekday, formatMinutes(in.BestWeekdayAverage))
					empty = false
				}
				if empty {
					fmt.Fprintln(out, styleHint.Render("Not enough focus history yet."))
				}
				return nil
			})
		},
	}
}
