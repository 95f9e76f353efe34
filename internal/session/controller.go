// Package session holds who is logged in and which view is active, and owns
// every piece of per-session state: the resident's identity store, the
// partner's consent poller and expiry tracker, the focused map item and the
// visible notification. Logout discards all of it.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"digipin/internal/address"
	"digipin/internal/backend"
	"digipin/internal/consent/expiry"
	"digipin/internal/consent/poller"
	"digipin/internal/domain"
	"digipin/internal/mapsync"
	"digipin/internal/notify"
	"digipin/internal/platform/metrics"
	dErrors "digipin/pkg/domain-errors"
)

// View is a screen of the client.
type View string

const (
	ViewDashboard     View = "dashboard"
	ViewRegistry      View = "registry"
	ViewConsent       View = "consent"
	ViewPartnerPortal View = "partner"
)

var residentViews = map[View]bool{ViewDashboard: true, ViewRegistry: true, ViewConsent: true}

// Allowed reports whether role may open v.
func (v View) Allowed(role domain.Role) bool {
	if role == domain.RolePartner {
		return v == ViewPartnerPortal
	}
	return residentViews[v]
}

// HomeView is where a role lands after login.
func HomeView(role domain.Role) View {
	if role == domain.RolePartner {
		return ViewPartnerPortal
	}
	return ViewDashboard
}

func mapHome(v View) mapsync.View {
	zoom := mapsync.ZoomOverview
	if v == ViewConsent || v == ViewPartnerPortal {
		zoom = mapsync.ZoomPartnerOverview
	}
	return mapsync.View{Center: domain.DefaultCenter, Zoom: zoom}
}

var (
	ErrNoSession   = dErrors.New(dErrors.CodeUnauthorized, "Not logged in")
	ErrNotResident = dErrors.New(dErrors.CodeForbidden, "Resident session required")
	ErrNotPartner  = dErrors.New(dErrors.CodeForbidden, "Partner session required")
	// ErrSessionChanged is returned when a call completes after the session
	// it was made for has ended; its result is discarded.
	ErrSessionChanged = dErrors.New(dErrors.CodeStaleSelection, "Session changed")
)

// Backend is the subset of the platform API the controller uses.
type Backend interface {
	Register(ctx context.Context, req backend.RegisterRequest) error
	Login(ctx context.Context, creds backend.Credentials) (domain.User, error)
	MyAddresses(ctx context.Context, email string) ([]domain.IdentityRecord, error)
	RegisterAddress(ctx context.Context, req backend.MintRequest) (backend.MintResult, error)
	GrantConsent(ctx context.Context, req backend.GrantRequest) error
	PartnerConsents(ctx context.Context, partnerName string) ([]domain.ConsentGrant, error)
	Partners(ctx context.Context) ([]domain.Partner, error)
	ResolveAddress(ctx context.Context, alias domain.Alias, requesterID string) (backend.ResolvedAddress, error)
}

// Snapshot describes the active session.
type Snapshot struct {
	ID        string      `json:"id"`
	User      domain.User `json:"user"`
	View      View        `json:"view"`
	StartedAt time.Time   `json:"started_at"`
}

type state struct {
	id        string
	user      domain.User
	view      View
	startedAt time.Time
	ctx       context.Context
	cancel    context.CancelFunc

	// resident only
	store    *address.Store
	partners []domain.Partner
}

// Controller is safe for concurrent use.
type Controller struct {
	// lifecycle serializes Login and Logout.
	lifecycle sync.Mutex

	mu    sync.RWMutex
	state *state

	root         context.Context
	backend      Backend
	notifier     *notify.Center
	maps         *mapsync.Sync
	loader       mapsync.Loader
	tracker      *expiry.Tracker
	poller       *poller.Poller
	locks        address.LockStore
	grantMinutes int
	now          func() time.Time
	logger       *slog.Logger
	metrics      *metrics.Metrics

	trackerOpts []expiry.Option
	pollerOpts  []poller.Option
}

type Option func(*Controller)

// WithContext sets the parent of every session context. Timers stop when it
// is cancelled.
func WithContext(ctx context.Context) Option {
	return func(c *Controller) {
		if ctx != nil {
			c.root = ctx
		}
	}
}

func WithNotifier(n *notify.Center) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithTrackerOptions configures the expiry tracker the controller creates.
func WithTrackerOptions(opts ...expiry.Option) Option {
	return func(c *Controller) {
		c.trackerOpts = append(c.trackerOpts, opts...)
	}
}

// WithPollerOptions configures the consent poller the controller creates.
func WithPollerOptions(opts ...poller.Option) Option {
	return func(c *Controller) {
		c.pollerOpts = append(c.pollerOpts, opts...)
	}
}

func WithLockStore(ls address.LockStore) Option {
	return func(c *Controller) {
		if ls != nil {
			c.locks = ls
		}
	}
}

// WithMapLoader sets how the map engine is created on every mount.
func WithMapLoader(l mapsync.Loader) Option {
	return func(c *Controller) {
		c.loader = l
	}
}

func WithGrantMinutes(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.grantMinutes = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

func New(b Backend, opts ...Option) *Controller {
	c := &Controller{
		root:         context.Background(),
		backend:      b,
		locks:        address.NewMemoryLockStore(),
		grantMinutes: 60,
		now:          time.Now,
		logger:       slog.Default(),
		loader: func(context.Context) (mapsync.Engine, error) {
			return mapsync.NewLinkEngine(), nil
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.notifier == nil {
		c.notifier = notify.NewCenter(notify.WithSink(notify.NewLogSink(c.logger)), notify.WithMetrics(c.metrics))
	}
	c.tracker = expiry.New(append([]expiry.Option{expiry.WithLogger(c.logger)}, c.trackerOpts...)...)
	c.poller = poller.New(b.PartnerConsents,
		append([]poller.Option{poller.WithLogger(c.logger), poller.WithMetrics(c.metrics)}, c.pollerOpts...)...)
	c.maps = mapsync.NewSync(c.logger)
	c.poller.OnUpdate(c.onConsents)
	return c
}

// Register creates an account. It does not log in.
func (c *Controller) Register(ctx context.Context, req backend.RegisterRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return c.fail(ctx, dErrors.New(dErrors.CodeValidation, "Email and password required"))
	}
	role, err := domain.ParseRole(string(req.Role))
	if err != nil {
		return c.fail(ctx, dErrors.Wrap(err, dErrors.CodeValidation, "Unknown role"))
	}
	req.Role = role
	if err := c.backend.Register(ctx, req); err != nil {
		return c.fail(ctx, err)
	}
	c.notifier.Success(ctx, "Registration successful! Please login.")
	return nil
}

// Login authenticates, ends any current session and starts a new one routed
// by role.
func (c *Controller) Login(ctx context.Context, creds backend.Credentials) (Snapshot, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return Snapshot{}, c.fail(ctx, dErrors.New(dErrors.CodeValidation, "Email and password required"))
	}
	user, err := c.backend.Login(ctx, creds)
	if err != nil {
		return Snapshot{}, c.fail(ctx, err)
	}

	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.teardown(c.swap(nil))

	sessCtx, cancel := context.WithCancel(c.root)
	st := &state{
		id:        uuid.NewString(),
		user:      user,
		view:      HomeView(user.Role),
		startedAt: c.now(),
		ctx:       sessCtx,
		cancel:    cancel,
	}
	if user.Role == domain.RoleResident {
		st.store = address.New(user.Email,
			address.WithLockStore(c.locks),
			address.WithNotifier(c.notifier),
			address.WithLogger(c.logger.With("owner", user.Email)),
			address.WithMetrics(c.metrics),
		)
		st.partners = domain.DefaultPartners
	}
	snap := st.snapshot()
	c.swap(st)
	c.maps.Mount(sessCtx, mapHome(st.view), c.loader)
	c.logger.InfoContext(ctx, "session started", "session_id", st.id, "role", user.Role, "email", user.Email)

	switch user.Role {
	case domain.RoleResident:
		c.bootstrapResident(ctx, st)
	case domain.RolePartner:
		c.tracker.Reset()
		c.tracker.Start(sessCtx)
		c.poller.Activate(sessCtx, partnerName(user))
	}

	c.notifier.Success(ctx, "Welcome, "+user.Name)
	return snap, nil
}

// Logout ends the session and discards everything it owned. Logging out
// without a session is a no-op.
func (c *Controller) Logout(ctx context.Context) {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	old := c.swap(nil)
	if old == nil {
		return
	}
	c.teardown(old)
	c.logger.InfoContext(ctx, "session ended", "session_id", old.id)
}

// swap installs next and returns the previous state.
func (c *Controller) swap(next *state) *state {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.state
	c.state = next
	return prev
}

// teardown stops timers and clears shared components. It must not be called
// with mu held: stopping the poller waits for an in-flight poll.
func (c *Controller) teardown(old *state) {
	if old == nil {
		return
	}
	old.cancel()
	c.poller.Deactivate()
	c.tracker.Stop()
	c.tracker.Reset()
	c.maps.Unmount()
	c.notifier.Dismiss()
}

// Current returns the active session.
func (c *Controller) Current() (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state == nil {
		return Snapshot{}, false
	}
	return c.state.snapshot(), true
}

// SetView switches screens. The map is remounted for the new view.
func (c *Controller) SetView(ctx context.Context, v View) error {
	c.mu.Lock()
	st := c.state
	if st == nil {
		c.mu.Unlock()
		return ErrNoSession
	}
	if !v.Allowed(st.user.Role) {
		c.mu.Unlock()
		return dErrors.New(dErrors.CodeValidation, "View "+string(v)+" is not available")
	}
	changed := st.view != v
	st.view = v
	c.mu.Unlock()

	if changed {
		c.maps.Mount(st.ctx, mapHome(v), c.loader)
		c.logger.DebugContext(ctx, "view changed", "session_id", st.id, "view", v)
	}
	return nil
}

// Focus describes the focused item and the map.
func (c *Controller) Focus() mapsync.Focus {
	return c.maps.Snapshot()
}

// ClearFocus defocuses the map.
func (c *Controller) ClearFocus() error {
	return c.maps.Clear()
}

// Notification returns the visible toast.
func (c *Controller) Notification() (notify.Notification, bool) {
	return c.notifier.Current()
}

func (c *Controller) session() (*state, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state == nil {
		return nil, ErrNoSession
	}
	return c.state, nil
}

// isCurrent reports whether st is still the active session.
func (c *Controller) isCurrent(st *state) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state == st
}

// fail raises a toast for err and returns it.
func (c *Controller) fail(ctx context.Context, err error) error {
	c.notifier.Error(ctx, dErrors.Message(err))
	return err
}

// partnerName is the requester name grants are issued to.
func partnerName(u domain.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

func (st *state) snapshot() Snapshot {
	return Snapshot{ID: st.id, User: st.user, View: st.view, StartedAt: st.startedAt}
}
