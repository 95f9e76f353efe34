package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"digipin/internal/address"
	"digipin/internal/backend"
	"digipin/internal/consent/expiry"
	"digipin/internal/consent/poller"
	"digipin/internal/domain"
	"digipin/internal/notify"
	"digipin/internal/platform/logger"
	"digipin/internal/platform/schedule"
	dErrors "digipin/pkg/domain-errors"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type ControllerSuite struct {
	suite.Suite
	ctx      context.Context
	clock    *testClock
	platform *fakePlatform
	polls    *schedule.ManualClock
	labels   *schedule.ManualClock
	ctrl     *Controller
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = &testClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	s.platform = newFakePlatform(s.clock.Now)
	s.platform.users["alice@example.com"] = fakeUser{Email: "alice@example.com", Password: "secret", Name: "Alice Sharma", Role: "resident"}
	s.platform.users["bob@example.com"] = fakeUser{Email: "bob@example.com", Password: "secret", Name: "Bob Rao", Role: "resident"}
	s.platform.users["ops@amazon.test"] = fakeUser{Email: "ops@amazon.test", Password: "secret", Name: "Amazon Logistics", Role: "partner"}

	s.polls = schedule.NewManualClock()
	s.labels = schedule.NewManualClock()
	client := backend.New(s.platform.srv.URL,
		backend.WithLogger(logger.Discard()),
		backend.WithServerLocation(time.UTC),
		backend.WithRetries(0),
	)
	s.ctrl = New(client,
		WithLogger(logger.Discard()),
		WithClock(s.clock.Now),
		WithNotifier(notify.NewCenter(notify.WithTTL(time.Hour))),
		WithTrackerOptions(expiry.WithClock(s.clock.Now), expiry.WithTickerFactory(s.labels.Factory())),
		WithPollerOptions(poller.WithTickerFactory(s.polls.Factory())),
	)
}

func (s *ControllerSuite) TearDownTest() {
	s.ctrl.Logout(s.ctx)
	s.platform.Close()
}

func (s *ControllerSuite) login(email string) Snapshot {
	snap, err := s.ctrl.Login(s.ctx, backend.Credentials{Email: email, Password: "secret"})
	s.Require().NoError(err)
	return snap
}

func (s *ControllerSuite) mint(suffix string) domain.Identity {
	id, err := s.ctrl.MintIdentity(s.ctx, MintInput{Suffix: suffix, AddressText: "12 MG Road, Bengaluru"})
	s.Require().NoError(err)
	return id
}

func (s *ControllerSuite) lastMessage() string {
	n, ok := s.ctrl.Notification()
	if !ok {
		return ""
	}
	return n.Message
}

func (s *ControllerSuite) consents() []expiry.GrantStatus {
	st, err := s.ctrl.Consents()
	s.Require().NoError(err)
	return st
}

func (s *ControllerSuite) TestGrantLifecycleEndToEnd() {
	s.Require().NoError(s.ctrl.Register(s.ctx, backend.RegisterRequest{
		Email: "carol@example.com", Password: "pw", FullName: "Carol Dsouza", Role: domain.RoleResident,
	}))
	s.Equal("Registration successful! Please login.", s.lastMessage())

	snap, err := s.ctrl.Login(s.ctx, backend.Credentials{Email: "carol@example.com", Password: "pw"})
	s.Require().NoError(err)
	s.Equal(ViewDashboard, snap.View)
	s.Equal("Welcome, Carol Dsouza", s.lastMessage())

	id := s.mint("home")
	s.Equal(domain.Alias("carol@home"), id.Alias)
	s.Equal("Identity Minted!", s.lastMessage())
	s.Require().NotNil(id.Location)

	grantedAt := s.clock.Now()
	s.Require().NoError(s.ctrl.GrantConsent(s.ctx, GrantInput{Alias: id.Alias, PartnerID: "Amazon Logistics", DurationMinutes: 60}))
	s.Equal("Access granted to Amazon Logistics", s.lastMessage())
	s.ctrl.Logout(s.ctx)

	s.clock.Advance(time.Minute)
	snap = s.login("ops@amazon.test")
	s.Equal(ViewPartnerPortal, snap.View)

	s.Require().Eventually(func() bool { return len(s.consents()) == 1 }, time.Second, time.Millisecond)
	status := s.consents()[0]
	s.Equal(domain.Alias("carol@home"), status.Grant.Alias)
	s.WithinDuration(grantedAt.Add(60*time.Minute), status.Grant.ExpiresAt, time.Second)
	s.Equal("59m left", status.Label)

	s.clock.Advance(61 * time.Minute)
	s.labels.Tick()
	s.Require().Eventually(func() bool { return s.consents()[0].Label == expiry.LabelExpired }, time.Second, time.Millisecond)
	s.True(s.consents()[0].Expired)
}

func (s *ControllerSuite) TestLoginFailures() {
	_, err := s.ctrl.Login(s.ctx, backend.Credentials{Email: " ", Password: "x"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.ctrl.Login(s.ctx, backend.Credentials{Email: "alice@example.com", Password: "wrong"})
	s.True(dErrors.HasCode(err, dErrors.CodeRemote))
	s.Equal("Invalid credentials", s.lastMessage())
	_, ok := s.ctrl.Current()
	s.False(ok)
}

func (s *ControllerSuite) TestLogoutDiscardsEverything() {
	s.login("alice@example.com")
	s.mint("home")
	_, err := s.ctrl.PreviewIdentity(s.ctx, 0)
	s.Require().NoError(err)
	s.Equal("identity:alice@home", s.ctrl.Focus().Key)

	s.ctrl.Logout(s.ctx)

	_, ok := s.ctrl.Current()
	s.False(ok)
	s.Empty(s.ctrl.Focus().Key)
	_, ok = s.ctrl.Notification()
	s.False(ok)
	_, err = s.ctrl.Identities()
	s.ErrorIs(err, ErrNoSession)

	s.login("bob@example.com")
	ids, err := s.ctrl.Identities()
	s.Require().NoError(err)
	s.Empty(ids)
	s.Empty(s.ctrl.Focus().Key)
}

func (s *ControllerSuite) TestEachLoginGetsANewSession() {
	first := s.login("alice@example.com")
	second := s.login("alice@example.com")
	s.NotEqual(first.ID, second.ID)
}

func (s *ControllerSuite) TestLockBlocksGrantAndSurvivesRefresh() {
	s.login("alice@example.com")
	s.mint("home")

	id, err := s.ctrl.ToggleLock(s.ctx, 0)
	s.Require().NoError(err)
	s.True(id.Locked)
	s.Equal(address.MsgLocked, s.lastMessage())

	err = s.ctrl.GrantConsent(s.ctx, GrantInput{Alias: "alice@home", PartnerID: "DHL"})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	s.Equal(MsgLockedIdentity, s.lastMessage())

	s.Require().NoError(s.ctrl.RefreshAddresses(s.ctx))
	ids, _ := s.ctrl.Identities()
	s.True(ids[0].Locked)

	_, err = s.ctrl.ToggleLock(s.ctx, 0)
	s.Require().NoError(err)
	s.NoError(s.ctrl.GrantConsent(s.ctx, GrantInput{Alias: "alice@home", PartnerID: "DHL"}))
	s.Equal("Access granted to DHL Express", s.lastMessage())
}

func (s *ControllerSuite) TestRefreshFailureKeepsList() {
	s.login("alice@example.com")
	s.mint("home")
	s.platform.setFailLists(true)

	err := s.ctrl.RefreshAddresses(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeRemote))
	ids, _ := s.ctrl.Identities()
	s.Len(ids, 1)
}

func (s *ControllerSuite) TestRemoveDefocusesRemovedIdentity() {
	s.login("alice@example.com")
	s.mint("home")
	s.mint("work")

	_, err := s.ctrl.PreviewIdentity(s.ctx, 0)
	s.Require().NoError(err)

	decline := address.ConfirmFunc(func(context.Context, domain.Identity) bool { return false })
	_, err = s.ctrl.RemoveIdentity(s.ctx, 0, decline)
	s.ErrorIs(err, address.ErrNotConfirmed)
	s.Equal("identity:alice@home", s.ctrl.Focus().Key)

	removed, err := s.ctrl.RemoveIdentity(s.ctx, 0, address.Confirmed)
	s.Require().NoError(err)
	s.Equal(domain.Alias("alice@home"), removed.Alias)
	s.Empty(s.ctrl.Focus().Key)

	ids, _ := s.ctrl.Identities()
	s.Require().Len(ids, 1)
	s.Equal(domain.Alias("alice@work"), ids[0].Alias)
}

func (s *ControllerSuite) TestMintValidation() {
	s.login("alice@example.com")

	_, err := s.ctrl.MintIdentity(s.ctx, MintInput{Suffix: "home"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Equal("Address required", s.lastMessage())

	_, err = s.ctrl.MintIdentity(s.ctx, MintInput{Suffix: domain.SuffixCustom, AddressText: "Gym Road"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Equal("Handle name required", s.lastMessage())

	id, err := s.ctrl.MintIdentity(s.ctx, MintInput{Suffix: domain.SuffixCustom, CustomSuffix: "gym", AddressText: "Gym Road"})
	s.Require().NoError(err)
	s.Equal(domain.Alias("alice@gym"), id.Alias)

	_, err = s.ctrl.MintIdentity(s.ctx, MintInput{Suffix: domain.SuffixCustom, CustomSuffix: "gym", AddressText: "Gym Road"})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ControllerSuite) TestRoleGuardsAndViews() {
	s.login("alice@example.com")
	_, err := s.ctrl.Consents()
	s.ErrorIs(err, ErrNotPartner)
	s.True(dErrors.HasCode(s.ctrl.SetView(s.ctx, ViewPartnerPortal), dErrors.CodeValidation))

	s.mint("home")
	s.Require().NoError(s.ctrl.SetView(s.ctx, ViewConsent))
	s.Empty(s.ctrl.Focus().Key, "view change remounts the map")

	_, err = s.ctrl.PreviewIdentity(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Eventually(func() bool { return s.ctrl.Focus().Marker != nil }, time.Second, time.Millisecond)
	s.Equal(15, s.ctrl.Focus().View.Zoom)

	partners, err := s.ctrl.Partners()
	s.Require().NoError(err)
	s.Len(partners, 2)

	s.login("ops@amazon.test")
	_, err = s.ctrl.MintIdentity(s.ctx, MintInput{Suffix: "home", AddressText: "x"})
	s.ErrorIs(err, ErrNotResident)
	s.NoError(s.ctrl.SetView(s.ctx, ViewPartnerPortal))
}

func (s *ControllerSuite) TestPartnerResolveAndStaleFocus() {
	s.login("alice@example.com")
	s.mint("home")
	s.mint("work")
	s.Require().NoError(s.ctrl.GrantConsent(s.ctx, GrantInput{Alias: "alice@home", PartnerID: "Amazon Logistics", DurationMinutes: 30}))

	s.login("ops@amazon.test")
	s.Require().Eventually(func() bool { return len(s.consents()) == 1 }, time.Second, time.Millisecond)

	res, err := s.ctrl.ResolveAddress(s.ctx, "alice@home")
	s.Require().NoError(err)
	s.Equal("12 MG Road, Bengaluru", res.Address)
	s.Equal("grant:alice@home", s.ctrl.Focus().Key)

	_, err = s.ctrl.ResolveAddress(s.ctx, "alice@work")
	s.True(dErrors.HasCode(err, dErrors.CodeRemote))
	s.Equal("Access Denied", s.lastMessage())

	_, err = s.ctrl.PreviewGrant(s.ctx, 0)
	s.Require().NoError(err)

	// the backend stops reporting the grant once it expires
	s.clock.Advance(31 * time.Minute)
	s.polls.Tick()
	s.Require().Eventually(func() bool { return len(s.consents()) == 0 }, time.Second, time.Millisecond)
	s.Empty(s.ctrl.Focus().Key)

	_, err = s.ctrl.PreviewGrant(s.ctx, 0)
	s.True(dErrors.HasCode(err, dErrors.CodeStaleSelection))
}

func (s *ControllerSuite) TestConsentPollFailureKeepsList() {
	s.login("alice@example.com")
	s.mint("home")
	s.Require().NoError(s.ctrl.GrantConsent(s.ctx, GrantInput{Alias: "alice@home", PartnerID: "Amazon Logistics"}))

	s.login("ops@amazon.test")
	s.Require().Eventually(func() bool { return len(s.consents()) == 1 }, time.Second, time.Millisecond)

	s.platform.setFailLists(true)
	err := s.ctrl.RefreshConsents(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeRemote))
	s.Len(s.consents(), 1)
}
