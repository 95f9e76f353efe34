// Package expiry derives the remaining-time label of each consent grant from
// its expiry instant. Labels depend only on the grant and the clock and are
// recomputed on a fixed cadence.
package expiry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"digipin/internal/domain"
	"digipin/internal/platform/schedule"
)

// LabelExpired is shown once now reaches the expiry instant.
const LabelExpired = "Expired"

const (
	DefaultInterval = time.Minute
	// MaxInterval bounds how stale a label may get after the boundary.
	MaxInterval = time.Minute
)

// LabelFor returns "<m>m left" while the grant is active and "Expired" after.
// m is the whole minutes remaining within the current hour window.
func LabelFor(grant domain.ConsentGrant, now time.Time) string {
	if !grant.IsActive(now) {
		return LabelExpired
	}
	ms := grant.Remaining(now).Milliseconds()
	minutes := (ms % time.Hour.Milliseconds()) / time.Minute.Milliseconds()
	return fmt.Sprintf("%dm left", minutes)
}

// GrantStatus is a grant with its label as of the last recompute.
type GrantStatus struct {
	Grant   domain.ConsentGrant `json:"grant"`
	Label   string              `json:"label"`
	Expired bool                `json:"expired"`
}

// Tracker is safe for concurrent use. It never mutates the grants it holds.
type Tracker struct {
	mu         sync.RWMutex
	grants     []domain.ConsentGrant
	statuses   []GrantStatus
	computedAt time.Time

	now      func() time.Time
	repeater *schedule.Repeater
	logger   *slog.Logger
}

type Option func(*config)

type config struct {
	interval time.Duration
	now      func() time.Time
	tickers  schedule.TickerFactory
	logger   *slog.Logger
}

// WithInterval sets the recompute cadence. Values above MaxInterval are
// clamped.
func WithInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.interval = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

func WithTickerFactory(f schedule.TickerFactory) Option {
	return func(c *config) {
		c.tickers = f
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(opts ...Option) *Tracker {
	cfg := config{interval: DefaultInterval, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.interval > MaxInterval {
		cfg.logger.Warn("expiry interval clamped", "requested", cfg.interval, "max", MaxInterval)
		cfg.interval = MaxInterval
	}
	return &Tracker{
		now:      cfg.now,
		repeater: schedule.New(cfg.interval, schedule.WithTickerFactory(cfg.tickers)),
		logger:   cfg.logger,
	}
}

func (t *Tracker) Interval() time.Duration { return t.repeater.Interval() }

// Start begins periodic recomputation. A second Start is a no-op.
func (t *Tracker) Start(ctx context.Context) bool {
	return t.repeater.Start(ctx, func(context.Context) { t.Recompute() })
}

// Stop cancels the timer.
func (t *Tracker) Stop() {
	t.repeater.Stop()
}

func (t *Tracker) Running() bool { return t.repeater.Running() }

// SetGrants replaces the tracked list and recomputes immediately.
func (t *Tracker) SetGrants(grants []domain.ConsentGrant) {
	t.mu.Lock()
	t.grants = append([]domain.ConsentGrant(nil), grants...)
	t.mu.Unlock()
	t.Recompute()
}

// Recompute relabels every grant against the current clock.
func (t *Tracker) Recompute() {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()

	previous := make(map[domain.Alias]bool, len(t.statuses))
	for _, st := range t.statuses {
		previous[st.Grant.Alias] = st.Expired
	}
	statuses := make([]GrantStatus, len(t.grants))
	for i, g := range t.grants {
		label := LabelFor(g, now)
		expired := label == LabelExpired
		statuses[i] = GrantStatus{Grant: g, Label: label, Expired: expired}
		if wasExpired, seen := previous[g.Alias]; seen && expired && !wasExpired {
			t.logger.Info("consent grant expired", "alias", g.Alias, "expires_at", g.ExpiresAt)
		}
	}
	t.statuses = statuses
	t.computedAt = now
}

// Statuses returns the labels as of the last recompute, aligned with the
// grant list.
func (t *Tracker) Statuses() []GrantStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]GrantStatus(nil), t.statuses...)
}

// ComputedAt is the clock reading of the last recompute.
func (t *Tracker) ComputedAt() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.computedAt
}

// Reset drops all grants and labels.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.grants = nil
	t.statuses = nil
	t.computedAt = time.Time{}
}
