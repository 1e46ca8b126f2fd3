// Package tracker wires the timer engine, task registry, statistics and
// streak together and is the command surface the CLI and TUI drive.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sadopc/tomato/internal/category"
	"github.com/sadopc/tomato/internal/stats"
	"github.com/sadopc/tomato/internal/store"
	"github.com/sadopc/tomato/internal/streak"
	"github.com/sadopc/tomato/internal/task"
	"github.com/sadopc/tomato/internal/timer"
)

// Storage keys.
const (
	KeyTasks   = "tasks"
	KeyDaily   = "stats:daily"
	KeyWeekly  = "stats:weekly"
	KeyMonthly = "stats:monthly"
	KeyYearly  = "stats:yearly"
	KeyStreak  = "streak"
)

const saveTimeout = 5 * time.Second

// KV is the persistence collaborator. Load returns nil, nil for a key that
// was never saved.
type KV interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

// SessionLog keeps the history of finished and skipped countdowns.
type SessionLog interface {
	RecordSession(ctx context.Context, s store.Session) (store.Session, error)
	ListSessions(ctx context.Context, f store.SessionFilter) ([]store.Session, error)
}

// SettingsStore persists countdown settings.
type SettingsStore interface {
	SaveTimerSettings(s timer.Settings) error
}

// Options configure a Tracker. KV is required.
type Options struct {
	KV       KV
	Sessions SessionLog
	Settings SettingsStore

	Catalog       category.Catalog
	TimerSettings timer.Settings
	Goals         stats.Goals
	WeekStart     time.Weekday

	// Scheduler defaults to a one-second ticker.
	Scheduler timer.Scheduler
	// Clock defaults to time.Now.
	Clock  func() time.Time
	Logger *slog.Logger

	// OnPersistError is called with every *domain.PersistenceError, with the
	// tracker lock held. It must not call back into the tracker.
	OnPersistError func(error)
}

// Tracker serialises every command behind one mutex, so a tick from the
// scheduler never interleaves with a user command.
type Tracker struct {
	mu sync.Mutex

	engine *timer.Engine
	tasks  *task.Registry
	stats  *stats.Aggregator
	streak *streak.Tracker

	catalog  category.Catalog
	kv       KV
	sessions SessionLog
	settings SettingsStore
	sched    timer.Scheduler
	now      func() time.Time
	log      *slog.Logger
	onError  func(error)
	lastErr  error

	// armGen identifies the current arming. A callback from an older arming
	// that was already waiting on mu is dropped.
	armGen uint64
}

// New builds a tracker with empty state. Call Load to restore saved state.
func New(opts Options) (*Tracker, error) {
	if opts.KV == nil {
		return nil, errors.New("tracker: no KV store")
	}
	engine, err := timer.New(opts.TimerSettings)
	if err != nil {
		return nil, err
	}
	if opts.Scheduler == nil {
		opts.Scheduler = timer.NewTicker(time.Second)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	// The default category must always resolve, so a focus completion is
	// never left without a category to credit.
	opts.Catalog = category.NewCatalog(opts.Catalog.Known(), opts.Catalog.IsOpen())

	t := &Tracker{
		engine:   engine,
		tasks:    task.NewRegistry(opts.Catalog, opts.Clock),
		stats:    stats.NewAggregator(opts.Catalog, opts.Goals, opts.WeekStart),
		streak:   streak.New(),
		catalog:  opts.Catalog,
		kv:       opts.KV,
		sessions: opts.Sessions,
		settings: opts.Settings,
		sched:    opts.Scheduler,
		now:      opts.Clock,
		log:      opts.Logger.With("component", "tracker"),
		onError:  opts.OnPersistError,
	}
	engine.OnComplete(t.completed)
	return t, nil
}

// Close stops the scheduler.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disarm()
}

// Catalog returns the category catalog tasks are validated against.
func (t *Tracker) Catalog() category.Catalog { return t.catalog }
