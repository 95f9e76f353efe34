package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by the counters below.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeStale   = "stale"
)

// Metrics holds all Prometheus metrics for the client.
type Metrics struct {
	registry *prometheus.Registry

	ConsentPolls     *prometheus.CounterVec
	AddressRefreshes *prometheus.CounterVec
	IdentitiesMinted prometheus.Counter
	ConsentsGranted  prometheus.Counter
	Notifications    *prometheus.CounterVec
	VisibleGrants    prometheus.Gauge
	BackendRequests  *prometheus.HistogramVec
}

// New creates and registers all metrics on a private registry so that
// several clients (and tests) can coexist in one process.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		ConsentPolls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "digipin_consent_polls_total",
			Help: "Partner consent list fetches by outcome",
		}, []string{"outcome"}),
		AddressRefreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "digipin_address_refreshes_total",
			Help: "Resident identity list refreshes by outcome",
		}, []string{"outcome"}),
		IdentitiesMinted: factory.NewCounter(prometheus.CounterOpts{
			Name: "digipin_identities_minted_total",
			Help: "Identities registered through this client",
		}),
		ConsentsGranted: factory.NewCounter(prometheus.CounterOpts{
			Name: "digipin_consents_granted_total",
			Help: "Consent grants issued through this client",
		}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "digipin_notifications_total",
			Help: "Notifications dispatched by kind",
		}, []string{"kind"}),
		VisibleGrants: factory.NewGauge(prometheus.GaugeOpts{
			Name: "digipin_visible_grants",
			Help: "Consent grants currently visible to the partner session",
		}),
		BackendRequests: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "digipin_backend_request_duration_seconds",
			Help:    "Backend request latency by operation and outcome",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "outcome"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) IncPoll(outcome string) {
	if m == nil {
		return
	}
	m.ConsentPolls.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncRefresh(outcome string) {
	if m == nil {
		return
	}
	m.AddressRefreshes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncMinted() {
	if m == nil {
		return
	}
	m.IdentitiesMinted.Inc()
}

func (m *Metrics) IncGranted() {
	if m == nil {
		return
	}
	m.ConsentsGranted.Inc()
}

func (m *Metrics) IncNotification(kind string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(kind).Inc()
}

func (m *Metrics) SetVisibleGrants(n int) {
	if m == nil {
		return
	}
	m.VisibleGrants.Set(float64(n))
}

func (m *Metrics) ObserveBackend(operation, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.BackendRequests.WithLabelValues(operation, outcome).Observe(seconds)
}
