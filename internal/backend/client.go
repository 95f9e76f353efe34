// Package backend talks to the DIGIPIN platform API: authentication, address
// registration, consent issuance and the partner consent feed. Every failure is
// returned as a domain-errors CodeRemote error wrapping a sentinel so callers
// can keep their last-known-good state and surface a toast.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"digipin/internal/domain"
	"digipin/internal/platform/metrics"
	dErrors "digipin/pkg/domain-errors"
	"digipin/pkg/platform/circuit"
	"digipin/pkg/platform/sentinel"
)

const tracerName = "digipin/internal/backend"

// Client is safe for concurrent use.
type Client struct {
	http     *resty.Client
	breaker  *circuit.Breaker
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	location *time.Location
}

// Option configures a Client.
type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTimeout bounds each request attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithRetries sets how many times idempotent reads are retried on transport
// errors and 5xx responses. Writes are never retried.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.http.SetRetryCount(n)
		}
	}
}

// WithRetryWait overrides the retry backoff bounds.
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(c *Client) {
		c.http.SetRetryWaitTime(minWait).SetRetryMaxWaitTime(maxWait)
	}
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		if b != nil {
			c.breaker = b
		}
	}
}

// WithServerLocation sets the zone for timestamps the backend sends without
// an offset. Defaults to the local zone.
func WithServerLocation(loc *time.Location) Option {
	return func(c *Client) {
		if loc != nil {
			c.location = loc
		}
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(250*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		AddRetryCondition(retryIdempotentReads)

	c := &Client{
		http:     httpClient,
		breaker:  circuit.New("backend"),
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
		location: time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func retryIdempotentReads(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
		return false
	}
	return err != nil || resp.StatusCode() >= http.StatusInternalServerError
}

// Register creates an account. The backend does not log the user in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	_, err := c.do(ctx, "register", "Registration failed", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(req).Post("/auth/register")
	})
	return err
}

// Login authenticates and returns the user with its role.
func (c *Client) Login(ctx context.Context, creds Credentials) (domain.User, error) {
	var out loginResponse
	_, err := c.do(ctx, "login", "Auth Failed", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(creds).SetResult(&out).Post("/auth/login")
	})
	if err != nil {
		return domain.User{}, err
	}
	role, err := domain.ParseRole(out.User.Role)
	if err != nil {
		return domain.User{}, dErrors.Wrap(err, dErrors.CodeRemote, "Unexpected role in login response")
	}
	return domain.User{Email: out.User.Email, Name: out.User.Name, Role: role}, nil
}

// MyAddresses lists the identities owned by email, in backend order.
func (c *Client) MyAddresses(ctx context.Context, email string) ([]domain.IdentityRecord, error) {
	var out []addressRecord
	_, err := c.do(ctx, "my_addresses", "Could not load identities", func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("email", email).SetResult(&out).Get("/user/my-addresses/{email}")
	})
	if err != nil {
		return nil, err
	}
	records := make([]domain.IdentityRecord, 0, len(out))
	for _, rec := range out {
		records = append(records, rec.toIdentityRecord())
	}
	return records, nil
}

// RegisterAddress mints a new identity. Geocoding happens server-side.
func (c *Client) RegisterAddress(ctx context.Context, req MintRequest) (MintResult, error) {
	var out mintResponse
	_, err := c.do(ctx, "register_address", "Failed", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(req).SetResult(&out).Post("/register-address")
	})
	if err != nil {
		return MintResult{}, err
	}
	return MintResult{
		Alias:    domain.Alias(out.DigitalAddress),
		Digipin:  out.Digipin,
		Location: domain.NewGeoPoint(out.Lat, out.Lon),
	}, nil
}

// GrantConsent issues a grant. The backend fixes ExpiresAt at now+duration.
func (c *Client) GrantConsent(ctx context.Context, req GrantRequest) error {
	_, err := c.do(ctx, "grant_consent", "Failed", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(req).Post("/grant-consent")
	})
	return err
}

// PartnerConsents lists the grants visible to partnerName. Records with an
// unreadable expiry are skipped and logged.
func (c *Client) PartnerConsents(ctx context.Context, partnerName string) ([]domain.ConsentGrant, error) {
	var out []consentRecord
	_, err := c.do(ctx, "partner_consents", "Could not load consents", func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParam("partner_name", partnerName).SetResult(&out).Get("/partner/my-consents")
	})
	if err != nil {
		return nil, err
	}
	grants := make([]domain.ConsentGrant, 0, len(out))
	for _, rec := range out {
		g, err := rec.toGrant(c.location)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping consent with bad expiry", "alias", rec.Alias, "error", err)
			continue
		}
		grants = append(grants, g)
	}
	return grants, nil
}

// Partners lists registered partner organizations.
func (c *Client) Partners(ctx context.Context) ([]domain.Partner, error) {
	var out []partnerRecord
	_, err := c.do(ctx, "partners", "Could not load partners", func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&out).Get("/partners")
	})
	if err != nil {
		return nil, err
	}
	partners := make([]domain.Partner, 0, len(out))
	for _, p := range out {
		name := p.Name
		if name == "" {
			name = p.ID
		}
		partners = append(partners, domain.Partner{ID: p.ID, Name: name})
	}
	return partners, nil
}

// ResolveAddress fetches an alias on behalf of requesterID. The backend
// answers 403 when no active grant exists. The requester travels in the
// Requester-Id header.
func (c *Client) ResolveAddress(ctx context.Context, alias domain.Alias, requesterID string) (ResolvedAddress, error) {
	var out addressRecord
	_, err := c.do(ctx, "resolve_address", "Access Denied", func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("alias", string(alias)).
			SetHeader("Requester-Id", requesterID).
			SetResult(&out).
			Get("/resolve-address/{alias}")
	})
	if err != nil {
		return ResolvedAddress{}, err
	}
	return out.toResolved(), nil
}

// do runs one request through the breaker, a span and the error mapping.
// fallback is the user message when the backend gives no detail.
func (c *Client) do(ctx context.Context, op, fallback string, send func(*resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	ctx, span := c.tracer.Start(ctx, "backend."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("digipin.operation", op)),
	)
	defer span.End()

	if !c.breaker.Allow() {
		err := dErrors.Wrap(fmt.Errorf("%s: circuit open: %w", op, sentinel.ErrUnavailable), dErrors.CodeRemote, "Backend unavailable")
		span.SetStatus(codes.Error, "circuit open")
		c.metrics.ObserveBackend(op, metrics.OutcomeFailure, 0)
		return nil, err
	}

	start := time.Now()
	var body errorBody
	resp, err := send(c.http.R().SetContext(ctx).SetError(&body))
	elapsed := time.Since(start).Seconds()

	if err != nil {
		c.recordFailure(ctx, op)
		c.metrics.ObserveBackend(op, metrics.OutcomeFailure, elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		c.logger.WarnContext(ctx, "backend request failed", "operation", op, "error", err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = errors.Join(err, ctxErr)
		}
		return resp, dErrors.Wrap(fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err), dErrors.CodeRemote, "Network error")
	}

	status := resp.StatusCode()
	span.SetAttributes(attribute.Int("http.response.status_code", status))
	if status >= http.StatusInternalServerError {
		c.recordFailure(ctx, op)
	} else {
		c.breaker.RecordSuccess()
	}

	if !resp.IsError() {
		c.metrics.ObserveBackend(op, metrics.OutcomeSuccess, elapsed)
		return resp, nil
	}

	c.metrics.ObserveBackend(op, metrics.OutcomeFailure, elapsed)
	msg := body.message()
	if msg == "" {
		msg = fallback
	}
	span.SetStatus(codes.Error, msg)
	c.logger.WarnContext(ctx, "backend rejected request", "operation", op, "status", status, "detail", msg)
	return resp, dErrors.Wrap(fmt.Errorf("%s: status %d: %w", op, status, statusSentinel(status)), dErrors.CodeRemote, msg)
}

func (c *Client) recordFailure(ctx context.Context, op string) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.ErrorContext(ctx, "backend circuit opened", "operation", op)
	}
}

func statusSentinel(status int) error {
	switch {
	case status == http.StatusNotFound:
		return sentinel.ErrNotFound
	case status == http.StatusConflict:
		return sentinel.ErrConflict
	case status >= http.StatusInternalServerError:
		return sentinel.ErrUnavailable
	default:
		return sentinel.ErrRejected
	}
}
