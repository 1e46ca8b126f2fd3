// Package cli implements the tomato commands.
package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/tomato/internal/app"
	"github.com/sadopc/tomato/internal/timer"
	"github.com/sadopc/tomato/internal/tui"
)

type options struct {
	configPath string
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "tomato",
		Short: "Pomodoro timer with task tracking and focus statistics",
		Long: `Tomato runs a pomodoro countdown in the terminal, credits finished focus
sessions to tasks and categories, and keeps daily, weekly, monthly and
yearly statistics along with a day streak.

Run without a subcommand to open the interactive timer.`,
		Version:      app.BuildVersion(),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/tomato/config.yaml)")

	// Add subcommands (alphabetical)
	root.AddCommand(newExportCmd(opts))
	root.AddCommand(newInsightsCmd(opts))
	root.AddCommand(newSettingsCmd(opts))
	root.AddCommand(newStatsCmd(opts))
	root.AddCommand(newStreakCmd(opts))
	root.AddCommand(newTaskCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

func runTUI(cmd *cobra.Command, opts *options) error {
	a, err := app.Open(cmd.Context(), app.Options{ConfigPath: opts.configPath})
	if err != nil {
		return err
	}
	defer a.Close()

	p := tea.NewProgram(tui.NewApp(a.Tracker, a.Store), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// withApp opens the app for a one-shot command. The countdown never ticks
// here, so no background ticker is started. Unreadable saved state is logged
// by Open and never fails the command; a failed save made by fn does.
func withApp(cmd *cobra.Command, opts *options, fn func(a *app.App) error) error {
	a, err := app.Open(cmd.Context(), app.Options{
		ConfigPath: opts.configPath,
		Scheduler:  &timer.Manual{},
	})
	if err != nil {
		return err
	}
	defer a.Close()
	if err := fn(a); err != nil {
		return err
	}
	if err := a.Tracker.LastPersistError(); err != nil {
		return err
	}
	return nil
}
