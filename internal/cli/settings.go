package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/tomato/internal/app"
	"github.com/sadopc/tomato/internal/domain"
	"github.com/sadopc/tomato/internal/store"
	"github.com/sadopc/tomato/internal/timer"
)

// settingKeys lists every key `settings set` accepts, in display order.
var settingKeys = []string{
	store.KeyWork,
	store.KeyBreak,
	store.KeyLongBreak,
	store.KeyCount,
	store.KeyAutoStartBreaks,
	store.KeyAutoStartFocus,
	store.KeyDailyGoal,
	store.KeyWeekStart,
}

func newSettingsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change settings",
		Long: `Show the countdown lengths, auto-start switches, daily goal and week start.

Durations are stored in seconds and the long break interval counts focus
sessions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app.App) error {
				return printSettings(cmd, a)
			})
		},
	}
	cmd.AddCommand(newSettingsSetCmd(opts))
	return cmd
}

func printSettings(cmd *cobra.Command, a *app.App) error {
	ts, err := a.Store.TimerSettings()
	if err != nil {
		return err
	}
	goal, err := a.Store.DailyGoal()
	if err != nil {
		return err
	}
	weekStart, err := a.Store.WeekStart()
	if err != nil {
		return err
	}

	values := map[string]string{
		store.KeyWork:            fmt.Sprintf("%d (%s)", ts.FocusSeconds, formatMinutes(float64(ts.FocusSeconds)/60)),
		store.KeyBreak:           fmt.Sprintf("%d (%s)", ts.ShortBreakSeconds, formatMinutes(float64(ts.ShortBreakSeconds)/60)),
		store.KeyLongBreak:       fmt.Sprintf("%d (%s)", ts.LongBreakSeconds, formatMinutes(float64(ts.LongBreakSeconds)/60)),
		store.KeyCount:           strconv.Itoa(ts.LongBreakInterval),
		store.KeyAutoStartBreaks: onOff(ts.AutoStartBreaks),
		store.KeyAutoStartFocus:  onOff(ts.AutoStartFocus),
		store.KeyDailyGoal:       fmt.Sprintf("%d (%s)", int(goal.Seconds()), formatMinutes(goal.Minutes())),
		store.KeyWeekStart:       strings.ToLower(weekStart.String()),
	}
	out := cmd.OutOrStdout()
	for _, k := range settingKeys {
		fmt.Fprintf(out, "  %-20s %s\n", styleLabel.Render(k), styleValue.Render(values[k]))
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func newSettingsSetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Change one setting",
		Example:   "  tomato settings set pomodoro_work 1500\n  tomato settings set week_start sunday",
		Args:      cobra.ExactArgs(2),
		ValidArgs: settingKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], strings.TrimSpace(args[1])
			if !slices.Contains(settingKeys, key) {
				return domain.NewValidationError(key, fmt.Sprintf("unknown setting (want one of %s)", strings.Join(settingKeys, ", ")))
			}
			return withApp(cmd, opts, func(a *app.App) error {
				if err := applySetting(a, key, value); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", styleSuccess.Render("Set"), key, value)
				return nil
			})
		},
	}
}

func applySetting(a *app.App, key, value string) error {
	switch key {
	case store.KeyDailyGoal:
		secs, err := strconv.Atoi(value)
		if err != nil || secs < 0 {
			return domain.NewValidationError(key, "must be a whole number of seconds >= 0")
		}
		if err := a.Store.SetSetting(key, value); err != nil {
			return err
		}
		goals := a.Tracker.Goals()
		goals.DailyMinutes = float64(secs) / 60
		a.Tracker.UpdateGoals(goals)
		return nil
	case store.KeyWeekStart:
		v := strings.ToLower(value)
		if v != "monday" && v != "sunday" {
			return domain.NewValidationError(key, "must be monday or sunday")
		}
		return a.Store.SetSetting(key, v)
	}

	ts, err := a.Store.TimerSettings()
	if err != nil {
		return err
	}
	if err := setTimerField(&ts, key, value); err != nil {
		return err
	}
	return a.Tracker.UpdateSettings(ts)
}

func setTimerField(ts *timer.Settings, key, value string) error {
	switch key {
	case store.KeyAutoStartBreaks, store.KeyAutoStartFocus:
		b, err := parseSwitch(value)
		if err != nil {
			return domain.NewValidationError(key, "must be on or off")
		}
		if key == store.KeyAutoStartBreaks {
			ts.AutoStartBreaks = b
		} else {
			ts.AutoStartFocus = b
		}
		return nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return domain.NewValidationError(key, "must be a whole number")
	}
	switch key {
	case store.KeyWork:
		ts.FocusSeconds = n
	case store.KeyBreak:
		ts.ShortBreakSeconds = n
	case store.KeyLongBreak:
		ts.LongBreakSeconds = n
	case store.KeyCount:
		ts.LongBreakInterval = n
	}
	return nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	return strconv.ParseBool(s)
}
