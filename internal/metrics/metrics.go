package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the certificate registry.
type Metrics struct {
	// Issued certificates by template
	Issued *prometheus.CounterVec
	// Revoked certificates
	Revoked prometheus.Counter
	// Verification verdicts by status and kind ("id" or "document")
	Verifications *prometheus.CounterVec
	// Ledger transactions aborted because of concurrent changes
	LedgerAborts prometheus.Counter
	// Failed requests by error kind
	RequestErrors *prometheus.CounterVec
	// Request latency by route
	RequestLatency *prometheus.HistogramVec
}

// New creates a Metrics instance with all metrics registered at reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Issued: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "certichain_certificates_issued_total",
				Help: "Total issued certificates by template",
			}, []string{"template"},
		),
		Revoked: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "certichain_certificates_revoked_total",
				Help: "Total revoked certificates",
			},
		),
		Verifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "certichain_verifications_total",
				Help: "Total verification verdicts by status",
			}, []string{"status", "kind"},
		),
		LedgerAborts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "certichain_ledger_aborts_total",
				Help: "Total ledger transactions aborted because of conflicting concurrent commits",
			},
		),
		RequestErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "certichain_request_errors_total",
				Help: "Total failed requests by error kind",
			}, []string{"kind"},
		),
		RequestLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "certichain_request_duration_seconds",
				Help:    "Duration of API requests by route",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			}, []string{"route"},
		),
	}
}

// IncrementIssued records an issued certificate
func (m *Metrics) IncrementIssued(template string) {
	if m != nil {
		m.Issued.WithLabelValues(template).Inc()
	}
}

// IncrementRevoked records a revocation
func (m *Metrics) IncrementRevoked() {
	if m != nil {
		m.Revoked.Inc()
	}
}

// IncrementVerification records a verification verdict
func (m *Metrics) IncrementVerification(status, kind string) {
	if m != nil {
		m.Verifications.WithLabelValues(status, kind).Inc()
	}
}

// IncrementError records a failed request. Aborted ledger transactions are
// additionally counted in LedgerAborts.
func (m *Metrics) IncrementError(kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "Internal"
	}
	m.RequestErrors.WithLabelValues(kind).Inc()
	if kind == "Aborted" {
		m.LedgerAborts.Inc()
	}
}

// ObserveRequest records the duration of a request
func (m *Metrics) ObserveRequest(route string, d time.Duration) {
	if m != nil {
		m.RequestLatency.WithLabelValues(route).Observe(d.Seconds())
	}
}
