// Package poller keeps a partner's visible consent list fresh by fetching it
// on activation and then on a fixed interval.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"digipin/internal/domain"
	"digipin/internal/platform/metrics"
	"digipin/internal/platform/schedule"
	dErrors "digipin/pkg/domain-errors"
)

const DefaultInterval = 30 * time.Second

// ErrInactive is returned by Refresh when no partner is active.
var ErrInactive = dErrors.New(dErrors.CodeValidation, "No active partner session")

// FetchFunc loads the grants visible to partner.
type FetchFunc func(ctx context.Context, partner string) ([]domain.ConsentGrant, error)

// Update is delivered to subscribers after every accepted fetch.
type Update struct {
	Partner   string
	Grants    []domain.ConsentGrant
	FetchedAt time.Time
}

// Poller owns at most one polling loop. Results from a previous activation
// are discarded.
type Poller struct {
	// lifecycle serializes Activate and Deactivate; poll callbacks never take it.
	lifecycle sync.Mutex

	mu         sync.RWMutex
	partner    string
	active     bool
	generation uint64
	grants     []domain.ConsentGrant
	fetchedAt  time.Time
	lastErr    error

	deliver     sync.Mutex
	subscribers []func(Update)

	fetch    FetchFunc
	repeater *schedule.Repeater
	now      func() time.Time
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*config)

type config struct {
	interval time.Duration
	tickers  schedule.TickerFactory
	now      func() time.Time
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func WithInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.interval = d
		}
	}
}

func WithTickerFactory(f schedule.TickerFactory) Option {
	return func(c *config) { c.tickers = f }
}

func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

func New(fetch FetchFunc, opts ...Option) *Poller {
	cfg := config{interval: DefaultInterval, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Poller{
		fetch:    fetch,
		repeater: schedule.New(cfg.interval, schedule.WithTickerFactory(cfg.tickers)),
		now:      cfg.now,
		logger:   cfg.logger,
		metrics:  cfg.metrics,
	}
}

// OnUpdate registers fn to receive every accepted list.
func (p *Poller) OnUpdate(fn func(Update)) {
	p.deliver.Lock()
	defer p.deliver.Unlock()
	p.subscribers = append(p.subscribers, fn)
}

// Activate starts polling for partner. Activating the active partner again is
// a no-op; activating another partner replaces the running loop.
func (p *Poller) Activate(ctx context.Context, partner string) bool {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()

	p.mu.RLock()
	same := p.active && p.partner == partner
	p.mu.RUnlock()
	if same {
		return false
	}
	p.stopLocked()

	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.partner = partner
	p.active = true
	p.grants = nil
	p.fetchedAt = time.Time{}
	p.lastErr = nil
	p.mu.Unlock()

	p.logger.InfoContext(ctx, "consent polling started", "partner", partner, "interval", p.repeater.Interval())
	return p.repeater.Start(ctx, func(ctx context.Context) {
		_ = p.poll(ctx, gen)
	})
}

// Deactivate stops polling and discards the list.
func (p *Poller) Deactivate() {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()
	p.stopLocked()
}

// stopLocked must be called with lifecycle held.
func (p *Poller) stopLocked() {
	p.mu.Lock()
	wasActive := p.active
	p.generation++
	p.active = false
	p.partner = ""
	p.grants = nil
	p.fetchedAt = time.Time{}
	p.mu.Unlock()

	p.repeater.Stop()
	if wasActive {
		p.metrics.SetVisibleGrants(0)
		p.logger.Info("consent polling stopped")
	}
}

// Refresh fetches once outside the timer. Failures are returned as well as
// logged; the list is kept.
func (p *Poller) Refresh(ctx context.Context) error {
	p.mu.RLock()
	active, gen := p.active, p.generation
	p.mu.RUnlock()
	if !active {
		return ErrInactive
	}
	return p.poll(ctx, gen)
}

func (p *Poller) poll(ctx context.Context, gen uint64) error {
	p.mu.RLock()
	partner := p.partner
	current := p.active && p.generation == gen
	p.mu.RUnlock()
	if !current {
		return nil
	}

	grants, err := p.fetch(ctx, partner)

	p.mu.Lock()
	if !p.active || p.generation != gen {
		p.mu.Unlock()
		p.metrics.IncPoll(metrics.OutcomeStale)
		p.logger.DebugContext(ctx, "discarding consent list from previous activation", "partner", partner)
		return nil
	}
	if err != nil {
		p.lastErr = err
		p.mu.Unlock()
		p.metrics.IncPoll(metrics.OutcomeFailure)
		p.logger.WarnContext(ctx, "consent poll failed; keeping last list", "partner", partner, "error", err)
		return err
	}
	p.grants = append([]domain.ConsentGrant(nil), grants...)
	p.fetchedAt = p.now()
	p.lastErr = nil
	p.mu.Unlock()

	p.metrics.IncPoll(metrics.OutcomeSuccess)
	p.publish()
	return nil
}

// publish hands the current list to subscribers. Deliveries are serialized
// and always carry the latest accepted list.
func (p *Poller) publish() {
	p.deliver.Lock()
	defer p.deliver.Unlock()

	p.mu.RLock()
	if !p.active {
		p.mu.RUnlock()
		return
	}
	u := Update{
		Partner:   p.partner,
		Grants:    append([]domain.ConsentGrant(nil), p.grants...),
		FetchedAt: p.fetchedAt,
	}
	p.mu.RUnlock()

	p.metrics.SetVisibleGrants(len(u.Grants))
	for _, fn := range p.subscribers {
		fn(u)
	}
}

// Grants returns the last accepted list.
func (p *Poller) Grants() []domain.ConsentGrant {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]domain.ConsentGrant(nil), p.grants...)
}

func (p *Poller) Partner() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.partner
}

func (p *Poller) Active() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.active
}

// FetchedAt is when the current list was accepted; zero before the first
// successful fetch.
func (p *Poller) FetchedAt() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.fetchedAt
}

// LastError is the error of the most recent failed fetch, cleared by the next
// success.
func (p *Poller) LastError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}
