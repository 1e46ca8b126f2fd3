package timer

import (
	"sync"
	"time"
)

// Scheduler invokes a callback at a fixed cadence while armed.
type Scheduler interface {
	// Arm starts calling fn. Arming again replaces the previous callback.
	Arm(fn func())
	// Disarm stops the cadence. No call starts after Disarm returns.
	Disarm()
	Armed() bool
}

// Ticker is a Scheduler backed by time.Ticker. Calls come from a single
// goroutine, so at most one callback is in flight per arming.
type Ticker struct {
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

// NewTicker returns a scheduler firing every interval.
func NewTicker(interval time.Duration) *Ticker {
	return &Ticker{interval: interval}
}

func (t *Ticker) Arm(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		close(t.stop)
	}
	stop := make(chan struct{})
	t.stop = stop

	go func() {
		tk := time.NewTicker(t.interval)
		defer tk.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tk.C:
				// Both channels may be ready; stop wins.
				select {
				case <-stop:
					return
				default:
				}
				fn()
			}
		}
	}()
}

// Disarm does not wait for an in-flight callback, so it is safe to call from
// inside the callback itself.
func (t *Ticker) Disarm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

func (t *Ticker) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}

// Manual is a Scheduler driven by explicit Fire calls.
type Manual struct {
	mu sync.Mutex
	fn func()
}

func (m *Manual) Arm(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = fn
}

func (m *Manual) Disarm() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = nil
}

func (m *Manual) Armed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fn != nil
}

// Fire invokes the armed callback once. It reports false when disarmed.
func (m *Manual) Fire() bool {
	m.mu.Lock()
	fn := m.fn
	m.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

// FireN calls Fire up to n times, stopping early once disarmed. It returns
// the number of callbacks delivered.
func (m *Manual) FireN(n int) int {
	for i := 0; i < n; i++ {
		if !m.Fire() {
			return i
		}
	}
	return n
}
