package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"digipin/internal/address"
	"digipin/internal/backend"
	"digipin/internal/consent/expiry"
	"digipin/internal/domain"
	"digipin/internal/notify"
	"digipin/internal/platform/logger"
	"digipin/internal/session"
	"digipin/internal/session/handler/mocks"
	dErrors "digipin/pkg/domain-errors"
	"digipin/pkg/platform/middleware/control"
	"digipin/pkg/platform/middleware/request"
	"digipin/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/service-mocks.go -package=mocks Service
type HandlerSuite struct {
	suite.Suite
	svc    *mocks.MockService
	router http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.svc = mocks.NewMockService(ctrl)
	s.router = NewRouter(RouterConfig{
		Handler: New(s.svc, logger.Discard()),
		Logger:  logger.Discard(),
		Token:   "secret",
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }),
	})
}

func (s *HandlerSuite) do(req *http.Request) *httptest.ResponseRecorder {
	req.Header.Set(control.Header, "secret")
	return testutil.DoRequest(s.router, req)
}

func (s *HandlerSuite) TestControlToken() {
	s.Run("missing token is rejected", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/session"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("health and metrics are open", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/healthz"))
		testutil.AssertStatusOK(s.T(), rr)
		rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/metrics"))
		testutil.AssertStatusOK(s.T(), rr)
	})

	s.Run("responses carry a request id", func() {
		s.svc.EXPECT().Current().Return(session.Snapshot{}, false)
		rr := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/session"))
		s.NotEmpty(rr.Header().Get(request.HeaderRequestID))
		testutil.AssertJSONContains(s.T(), rr, "active", false)
	})
}

func (s *HandlerSuite) TestLogin() {
	s.Run("returns the new session", func() {
		started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		s.svc.EXPECT().Login(gomock.Any(), backend.Credentials{Email: "ops@amazon.test", Password: "pw"}).Return(session.Snapshot{
			ID:        "s-1",
			User:      domain.User{Email: "ops@amazon.test", Name: "Amazon Logistics", Role: domain.RolePartner},
			View:      session.ViewPartnerPortal,
			StartedAt: started,
		}, nil)

		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/session/login", map[string]string{"email": "ops@amazon.test", "password": "pw"}))

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[sessionResponse](s.T(), rr)
		s.True(resp.Active)
		s.Equal(session.ViewPartnerPortal, resp.View)
		s.Equal("partner", resp.User.Role)
	})

	s.Run("malformed body is a validation error", func() {
		rr := s.do(testutil.NewRequestWithBody(s.T(), http.MethodPost, "/session/login", "{"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation")
	})

	s.Run("backend rejection maps to bad gateway", func() {
		s.svc.EXPECT().Login(gomock.Any(), gomock.Any()).Return(session.Snapshot{}, dErrors.New(dErrors.CodeRemote, "Invalid credentials"))
		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/session/login", map[string]string{"email": "a", "password": "b"}))
		testutil.AssertStatus(s.T(), rr, http.StatusBadGateway)
		body := testutil.UnmarshalErrorResponse(s.T(), rr)
		s.Equal("Invalid credentials", body["error_description"])
	})
}

func (s *HandlerSuite) TestIdentities() {
	s.Run("mint returns the identity", func() {
		in := session.MintInput{Suffix: "home", AddressText: "12 MG Road"}
		s.svc.EXPECT().MintIdentity(gomock.Any(), in).Return(domain.Identity{
			Alias:    "alice@home",
			Digipin:  "4P3-JK8-0000",
			Address:  "12 MG Road",
			Location: &domain.GeoPoint{Lat: 12.9716, Lon: 77.5946},
		}, nil)

		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/identities", in))

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[identityResponse](s.T(), rr)
		s.Equal("alice@home", resp.Alias)
		s.Equal("HO", resp.Badge)
		s.Require().NotNil(resp.Location)
		s.InDelta(12.9716, resp.Location.Lat, 1e-9)
	})

	s.Run("delete without confirmation needs precondition", func() {
		s.svc.EXPECT().RemoveIdentity(gomock.Any(), 1, gomock.Any()).DoAndReturn(
			func(ctx context.Context, _ int, confirm address.Confirmer) (domain.Identity, error) {
				if !confirm.Confirm(ctx, domain.Identity{Alias: "alice@work"}) {
					return domain.Identity{}, address.ErrNotConfirmed
				}
				return domain.Identity{Alias: "alice@work"}, nil
			})

		rr := s.do(testutil.NewRequest(s.T(), http.MethodDelete, "/identities/1"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusPreconditionRequired, "not_confirmed")
	})

	s.Run("delete with confirmation removes", func() {
		s.svc.EXPECT().RemoveIdentity(gomock.Any(), 0, gomock.Any()).DoAndReturn(
			func(ctx context.Context, _ int, confirm address.Confirmer) (domain.Identity, error) {
				require.True(s.T(), confirm.Confirm(ctx, domain.Identity{Alias: "alice@home"}))
				return domain.Identity{Alias: "alice@home"}, nil
			})

		req := testutil.NewRequest(s.T(), http.MethodDelete, "/identities/0")
		req.Header.Set(HeaderConfirm, "yes")
		rr := s.do(req)
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "alias", "alice@home")
	})

	s.Run("non-numeric index is rejected before the service", func() {
		rr := s.do(testutil.NewRequest(s.T(), http.MethodPost, "/identities/first/lock"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation")
	})

	s.Run("locked identity cannot be granted", func() {
		s.svc.EXPECT().GrantConsent(gomock.Any(), session.GrantInput{Alias: "alice@home", PartnerID: "DHL"}).
			Return(dErrors.New(dErrors.CodeForbidden, session.MsgLockedIdentity))
		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/consents", map[string]string{"alias": "alice@home", "partner_id": "DHL"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
	})

	s.Run("reorder reports whether anything moved", func() {
		s.svc.EXPECT().Reorder(0, 0).Return(false, nil)
		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/identities/reorder", reorderRequest{From: 0, To: 0}))
		testutil.AssertJSONContains(s.T(), rr, "moved", false)
	})

	s.Run("no session is unauthorized", func() {
		s.svc.EXPECT().Identities().Return(nil, session.ErrNoSession)
		rr := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/identities"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})
}

func (s *HandlerSuite) TestPartnerConsents() {
	expires := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	s.svc.EXPECT().Consents().Return([]expiry.GrantStatus{
		{Grant: domain.ConsentGrant{Alias: "alice@home", Digipin: "4P3-JK8-0000", Score: 20, ExpiresAt: expires}, Label: "45m left"},
		{Grant: domain.ConsentGrant{Alias: "bob@work", ExpiresAt: expires.Add(-2 * time.Hour)}, Label: expiry.LabelExpired, Expired: true},
	}, nil)

	rr := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/partner/consents"))

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[[]consentResponse](s.T(), rr)
	s.Require().Len(*resp, 2)
	s.Equal("alice@home", (*resp)[0].Alias)
	s.Equal("45m left", (*resp)[0].Label)
	s.True((*resp)[1].Expired)
	s.True(expires.Equal((*resp)[0].ExpiresAt))
}

func (s *HandlerSuite) TestResolve() {
	s.svc.EXPECT().ResolveAddress(gomock.Any(), domain.Alias("alice@home")).Return(backend.ResolvedAddress{
		Alias: "alice@home", Address: "12 MG Road", Score: 20,
	}, nil)

	rr := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/resolve/alice@home"))

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "address", "12 MG Road")
}

func (s *HandlerSuite) TestNotification() {
	s.Run("none visible", func() {
		s.svc.EXPECT().Notification().Return(notify.Notification{}, false)
		rr := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/notification"))
		assert.Equal(s.T(), http.StatusNoContent, rr.Code)
	})

	s.Run("visible toast", func() {
		s.svc.EXPECT().Notification().Return(notify.Notification{ID: 3, Kind: notify.KindSuccess, Message: "Identity Minted!"}, true)
		rr := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/notification"))
		testutil.AssertJSONContains(s.T(), rr, "message", "Identity Minted!")
	})
}

func (s *HandlerSuite) TestLogoutAndView() {
	s.svc.EXPECT().Logout(gomock.Any())
	rr := s.do(testutil.NewRequest(s.T(), http.MethodPost, "/session/logout"))
	s.Equal(http.StatusNoContent, rr.Code)

	s.svc.EXPECT().SetView(gomock.Any(), session.ViewConsent).Return(nil)
	rr = s.do(testutil.NewJSONRequest(s.T(), http.MethodPut, "/session/view", viewRequest{View: session.ViewConsent}))
	s.Equal(http.StatusNoContent, rr.Code)
}
