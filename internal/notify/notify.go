// Package notify holds the single transient notification shown to the user.
// A new notification replaces the current one and each dismisses itself after
// a fixed TTL.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"digipin/internal/platform/metrics"
)

// Kind selects how a notification is presented.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 3 * time.Second

// Notification is one toast.
type Notification struct {
	ID        uint64    `json:"id"`
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier is what components depend on to raise a toast.
type Notifier interface {
	Notify(ctx context.Context, kind Kind, message string) Notification
}

// Sink receives every notification as it is raised.
type Sink interface {
	Deliver(ctx context.Context, n Notification)
}

// LogSink writes notifications to a structured logger.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Deliver(ctx context.Context, n Notification) {
	if s == nil || s.logger == nil {
		return
	}
	level := slog.LevelInfo
	if n.Kind == KindError {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "notification", "kind", n.Kind, "message", n.Message, "id", n.ID)
}

// Timer is the part of *time.Timer the center needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc by default.
type AfterFunc func(d time.Duration, f func()) Timer

// Center is safe for concurrent use.
type Center struct {
	mu      sync.Mutex
	current *Notification
	timer   Timer
	seq     uint64

	ttl       time.Duration
	now       func() time.Time
	afterFunc AfterFunc
	sinks     []Sink
	metrics   *metrics.Metrics
}

type Option func(*Center)

func WithTTL(d time.Duration) Option {
	return func(c *Center) {
		if d > 0 {
			c.ttl = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Center) {
		if now != nil {
			c.now = now
		}
	}
}

func WithAfterFunc(f AfterFunc) Option {
	return func(c *Center) {
		if f != nil {
			c.afterFunc = f
		}
	}
}

func WithSink(s Sink) Option {
	return func(c *Center) {
		if s != nil {
			c.sinks = append(c.sinks, s)
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Center) {
		c.metrics = m
	}
}

func NewCenter(opts ...Option) *Center {
	c := &Center{
		ttl: DefaultTTL,
		now: time.Now,
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notify replaces the current notification and arms its dismissal.
func (c *Center) Notify(ctx context.Context, kind Kind, message string) Notification {
	c.mu.Lock()
	c.seq++
	n := Notification{ID: c.seq, Kind: kind, Message: message, CreatedAt: c.now()}
	c.current = &n
	if c.timer != nil {
		c.timer.Stop()
	}
	id := n.ID
	c.timer = c.afterFunc(c.ttl, func() { c.expire(id) })
	c.mu.Unlock()

	c.metrics.IncNotification(string(kind))
	for _, s := range c.sinks {
		s.Deliver(ctx, n)
	}
	return n
}

func (c *Center) Success(ctx context.Context, message string) Notification {
	return c.Notify(ctx, KindSuccess, message)
}

func (c *Center) Error(ctx context.Context, message string) Notification {
	return c.Notify(ctx, KindError, message)
}

// Current returns the visible notification, if any.
func (c *Center) Current() (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Notification{}, false
	}
	return *c.current, true
}

// Dismiss clears the visible notification and cancels its timer.
func (c *Center) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// expire only clears the notification it was armed for; a newer one has its
// own timer.
func (c *Center) expire(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil && c.current.ID == id {
		c.current = nil
		c.timer = nil
	}
}
