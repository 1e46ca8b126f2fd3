// Package timer implements the pomodoro countdown state machine. The engine
// never schedules itself: an external Scheduler calls Tick once per second
// while the countdown runs.
package timer

import (
	"slices"
	"sync"
)

// State is a snapshot of the engine.
type State struct {
	Mode             Mode
	SecondsRemaining int
	IsRunning        bool
	IsPaused         bool
	// JustFinished is set by a natural completion and cleared by ConsumeFinished
	// or the next command.
	JustFinished      bool
	CompletedSessions int
	ActiveTaskID      string
}

// Idle reports whether the countdown is neither running nor paused.
func (s State) Idle() bool { return !s.IsRunning && !s.IsPaused }

// Completion describes a countdown that reached zero on its own.
type Completion struct {
	Mode    Mode // the mode that finished
	Next    Mode
	Seconds int // configured length of the finished countdown
	// Session is CompletedSessions after the transition.
	Session     int
	TaskID      string
	AutoStarted bool
}

// Transition is the result of a manual skip.
type Transition struct {
	From Mode
	To   Mode
}

// Engine owns the countdown. All methods are safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	settings Settings
	pending  *Settings
	state    State
	handlers []func(Completion)
}

// New returns an engine in Focus, idle, with a full focus countdown.
func New(settings Settings) (*Engine, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		settings: settings,
		state: State{
			Mode:             Focus,
			SecondsRemaining: settings.FocusSeconds,
		},
	}, nil
}

// OnComplete registers fn to run after every natural completion. Handlers run
// outside the engine lock, in registration order.
func (e *Engine) OnComplete(fn func(Completion)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, fn)
}

// State returns a copy of the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Settings returns the settings currently in effect.
func (e *Engine) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// PendingSettings returns settings waiting for the next transition, if any.
func (e *Engine) PendingSettings() (Settings, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == nil {
		return Settings{}, false
	}
	return *e.pending, true
}

// UpdateSettings replaces the settings. While a countdown is running or paused
// the change is deferred to the next transition or reset.
func (e *Engine) UpdateSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.Idle() {
		e.pending = &s
		return nil
	}
	e.settings = s
	e.pending = nil
	e.state.SecondsRemaining = s.Duration(e.state.Mode)
	return nil
}

// Start runs the countdown from idle or paused. It returns false if the
// countdown was already running.
func (e *Engine) Start() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.IsRunning {
		return false
	}
	e.state.IsRunning = true
	e.state.IsPaused = false
	e.state.JustFinished = false
	return true
}

// Pause stops a running countdown, keeping the remaining time.
func (e *Engine) Pause() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.IsRunning {
		return false
	}
	e.state.IsRunning = false
	e.state.IsPaused = true
	return true
}

// Reset restores the full duration of the current mode and stops.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applyPending()
	e.state.SecondsRemaining = e.settings.Duration(e.state.Mode)
	e.clearFlags()
}

// SetMode switches mode. It is refused while the countdown runs and for
// modes outside Modes.
func (e *Engine) SetMode(m Mode) bool {
	if !m.Valid() {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.IsRunning {
		return false
	}
	e.applyPending()
	e.state.Mode = m
	e.state.SecondsRemaining = e.settings.Duration(m)
	e.clearFlags()
	return true
}

// SelectTask attaches a task to the countdown; "" detaches.
func (e *Engine) SelectTask(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.ActiveTaskID = id
}

// ClearTask detaches id if it is the active task.
func (e *Engine) ClearTask(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if id == "" || e.state.ActiveTaskID != id {
		return false
	}
	e.state.ActiveTaskID = ""
	return true
}

// ConsumeFinished reports whether a completion happened since the last call,
// and clears the flag.
func (e *Engine) ConsumeFinished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	f := e.state.JustFinished
	e.state.JustFinished = false
	return f
}

// Tick advances a running countdown by one second. When the countdown
// reaches zero it moves to the next mode and returns the completion.
func (e *Engine) Tick() *Completion {
	e.mu.Lock()
	if !e.state.IsRunning || e.state.SecondsRemaining <= 0 {
		e.mu.Unlock()
		return nil
	}
	if e.state.SecondsRemaining > 1 {
		e.state.SecondsRemaining--
		e.mu.Unlock()
		return nil
	}

	finished := e.state.Mode
	seconds := e.settings.Duration(finished)
	next := e.advance()
	running := e.settings.autoStart(next)
	e.state.IsRunning = running
	e.state.IsPaused = false
	e.state.JustFinished = true

	c := Completion{
		Mode:        finished,
		Next:        next,
		Seconds:     seconds,
		Session:     e.state.CompletedSessions,
		TaskID:      e.state.ActiveTaskID,
		AutoStarted: running,
	}
	handlers := slices.Clone(e.handlers)
	e.mu.Unlock()

	for _, h := range handlers {
		h(c)
	}
	return &c
}

// Skip moves to the next mode immediately. It follows the same transition
// rule as a completion but is not one: nothing is reported to OnComplete
// handlers and the engine stops idle.
func (e *Engine) Skip() Transition {
	e.mu.Lock()
	defer e.mu.Unlock()
	from := e.state.Mode
	to := e.advance()
	e.clearFlags()
	return Transition{From: from, To: to}
}

// advance applies the transition rule and loads the next countdown.
// Callers hold mu.
func (e *Engine) advance() Mode {
	next := Focus
	if e.state.Mode == Focus {
		e.state.CompletedSessions++
		if e.state.CompletedSessions%e.settings.LongBreakInterval == 0 {
			next = LongBreak
		} else {
			next = ShortBreak
		}
	}
	e.applyPending()
	e.state.Mode = next
	e.state.SecondsRemaining = e.settings.Duration(next)
	return next
}

func (e *Engine) applyPending() {
	if e.pending != nil {
		e.settings = *e.pending
		e.pending = nil
	}
}

func (e *Engine) clearFlags() {
	e.state.IsRunning = false
	e.state.IsPaused = false
	e.state.JustFinished = false
}
