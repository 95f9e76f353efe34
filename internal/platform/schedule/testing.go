package schedule

import (
	"sync"
	"time"
)

// ManualClock hands out tickers that only fire when Tick is called. It lets
// tests drive repeating tasks deterministically.
type ManualClock struct {
	mu      sync.Mutex
	tickers []*manualTicker
	created int
}

// NewManualClock returns a clock with no tickers.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// Factory returns a TickerFactory bound to this clock.
func (m *ManualClock) Factory() TickerFactory {
	return func(time.Duration) Ticker {
		m.mu.Lock()
		defer m.mu.Unlock()
		t := &manualTicker{c: make(chan time.Time)}
		m.tickers = append(m.tickers, t)
		m.created++
		return t
	}
}

// Created reports how many tickers have been created so far.
func (m *ManualClock) Created() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.created
}

// Active reports how many tickers have not been stopped.
func (m *ManualClock) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tickers {
		if !t.isStopped() {
			n++
		}
	}
	return n
}

// Tick delivers one tick to every active ticker and blocks until each loop
// has received it. Tick must not be called while a loop is being stopped.
func (m *ManualClock) Tick() {
	m.mu.Lock()
	tickers := append([]*manualTicker(nil), m.tickers...)
	m.mu.Unlock()
	now := time.Now()
	for _, t := range tickers {
		if t.isStopped() {
			continue
		}
		select {
		case t.c <- now:
		case <-time.After(time.Second):
		}
	}
}

type manualTicker struct {
	c       chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (t *manualTicker) C() <-chan time.Time { return t.c }

func (t *manualTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *manualTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
