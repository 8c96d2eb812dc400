package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-signer/internal/config"
	"github/chapool/go-signer/internal/metrics"
)

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *metrics.Metrics

	m.Submitted("local")
	m.Settled("local", "completed", time.Second)
	m.TrackPending(func() int { return 3 })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordAndServe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry("signer", reg)
	assert.NotNil(t, metrics.New(config.Server{Metrics: config.Metrics{Namespace: "other"}}))

	m.Submitted("local")
	m.Submitted("local")
	m.Submitted("")
	m.Settled("local", "completed", 20*time.Millisecond)
	m.TrackPending(func() int { return 2 })

	count, err := testutil.GatherAndCount(reg, "signer_signing_requests_submitted_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `signer_signing_requests_submitted_total{backend="local"} 2`)
	assert.Contains(t, string(body), `signer_signing_requests_submitted_total{backend="unknown"} 1`)
	assert.Contains(t, string(body), `signer_signing_requests_settled_total{backend="local",status="completed"} 1`)
	assert.Contains(t, string(body), "signer_signing_pending_responses 2")
}
