package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.IncrementIssued("degree")
	m.IncrementIssued("degree")
	m.IncrementRevoked()
	m.IncrementVerification("valid", "id")
	m.IncrementError("Aborted")
	m.IncrementError("")
	m.ObserveRequest("/api/v1/verify", 10*time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(m.Issued.WithLabelValues("degree")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Revoked), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Verifications.WithLabelValues("valid", "id")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.LedgerAborts), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RequestErrors.WithLabelValues("Internal")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestLatency))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(
		t, func() {
			m.IncrementIssued("degree")
			m.IncrementRevoked()
			m.IncrementVerification("valid", "document")
			m.IncrementError("Aborted")
			m.ObserveRequest("/", time.Second)
		},
	)
}
