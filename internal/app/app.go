// Package app assembles configuration, logging, storage and the tracker.
package app

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/sadopc/tomato/internal/config"
	"github.com/sadopc/tomato/internal/store"
	"github.com/sadopc/tomato/internal/timer"
	"github.com/sadopc/tomato/internal/tracker"
)

// App is an opened tomato instance.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   *store.Store
	Tracker *tracker.Tracker

	logFile io.Closer
}

// Options control Open.
type Options struct {
	// ConfigPath overrides the config file location.
	ConfigPath string
	// LogWriter, when set, replaces the log file from the config.
	LogWriter io.Writer
	// Scheduler overrides the one-second ticker.
	Scheduler timer.Scheduler
	// OnPersistError is passed to the tracker.
	OnPersistError func(error)
}

// Open loads configuration, opens the database and restores the tracker.
// Errors restoring saved state are logged; the app still opens with
// defaults for whatever could not be read.
func Open(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg}
	w := opts.LogWriter
	if w == nil {
		f, err := OpenLogFile(cfg.Log.File)
		if err != nil {
			return nil, err
		}
		a.logFile = f
		w = f
	}
	a.Logger = NewLogger(cfg.Log, w)
	a.Logger.Info("starting tomato",
		slog.String("version", BuildVersion()),
		slog.String("db", cfg.Storage.Path),
	)

	st, err := store.New(cfg.Storage.Path)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = st

	settings, err := st.TimerSettings()
	if err == nil {
		err = settings.Validate()
	}
	if err != nil {
		a.Logger.Warn("invalid timer settings, using defaults", "error", err)
		settings = timer.DefaultSettings()
	}
	dailyGoal, err := st.DailyGoal()
	if err != nil {
		a.Logger.Warn("invalid daily goal, using default", "error", err)
	}
	weekStart, err := st.WeekStart()
	if err != nil {
		a.Logger.Warn("invalid week start, using monday", "error", err)
	}

	tr, err := tracker.New(tracker.Options{
		KV:             st,
		Sessions:       st,
		Settings:       st,
		Catalog:        cfg.Categories.Catalog(),
		TimerSettings:  settings,
		Goals:          cfg.Goals.StatsGoals(dailyGoal.Minutes()),
		WeekStart:      weekStart,
		Scheduler:      opts.Scheduler,
		Logger:         a.Logger,
		OnPersistError: opts.OnPersistError,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Tracker = tr

	if err := tr.Load(ctx); err != nil {
		a.Logger.Warn("restored with defaults", "error", err)
	}
	return a, nil
}

// Close stops the tracker and releases the database and log file.
func (a *App) Close() error {
	var errs []error
	if a.Tracker != nil {
		a.Tracker.Close()
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
	}
	return errors.Join(errs...)
}
