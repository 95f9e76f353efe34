// Package schedule runs cancellable repeating tasks with an explicit
// start/stop lifecycle. A Repeater owns at most one running loop.
package schedule

import (
	"context"
	"sync"
	"time"
)

// Ticker is the subset of *time.Ticker a Repeater needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates tickers; tests substitute a manual implementation.
type TickerFactory func(d time.Duration) Ticker

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewRealTicker wraps time.NewTicker.
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// Task is invoked on every tick. The context is cancelled when the loop stops.
type Task func(ctx context.Context)

// Repeater runs a Task immediately and then on every tick until stopped.
type Repeater struct {
	interval  time.Duration
	newTicker TickerFactory

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// Option configures a Repeater.
type Option func(*Repeater)

// WithTickerFactory overrides how tickers are created.
func WithTickerFactory(f TickerFactory) Option {
	return func(r *Repeater) {
		if f != nil {
			r.newTicker = f
		}
	}
}

// New creates a stopped Repeater. Non-positive intervals default to one minute.
func New(interval time.Duration, opts ...Option) *Repeater {
	if interval <= 0 {
		interval = time.Minute
	}
	r := &Repeater{interval: interval, newTicker: NewRealTicker}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Interval reports the configured tick interval.
func (r *Repeater) Interval() time.Duration { return r.interval }

// Running reports whether a loop is active.
func (r *Repeater) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Start launches the loop. It returns false without side effects when a
// loop is already running, so repeated activation never stacks timers.
func (r *Repeater) Start(parent context.Context, task Task) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return false
	}

	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	ticker := r.newTicker(r.interval)
	r.cancel = cancel
	r.done = done
	r.running = true

	go func() {
		defer close(done)
		defer ticker.Stop()

		task(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				if ctx.Err() != nil {
					return
				}
				task(ctx)
			}
		}
	}()
	return true
}

// Stop cancels the loop and waits for the current task invocation to return.
// It is safe to call on a stopped Repeater.
func (r *Repeater) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel, done := r.cancel, r.done
	r.running = false
	r.cancel = nil
	r.done = nil
	r.mu.Unlock()

	cancel()
	<-done
}
