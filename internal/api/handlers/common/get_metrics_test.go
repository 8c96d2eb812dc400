package common_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-signer/internal/api"
	"github/chapool/go-signer/internal/config"
	"github/chapool/go-signer/internal/test"
)

func TestGetMetrics(t *testing.T) {
	cfg := config.DefaultServiceConfigFromEnv()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Namespace = "signer"

	test.WithTestServerConfigurable(t, cfg, func(s *api.Server) {
		s.Metrics.Submitted("local")

		res := test.PerformRequest(t, s, "GET", "/metrics", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)
		assert.Contains(t, res.Body.String(), `signer_signing_requests_submitted_total{backend="local"} 1`)
		assert.Contains(t, res.Body.String(), "signer_signing_pending_responses 0")
	})
}

func TestGetMetricsDisabled(t *testing.T) {
	cfg := config.DefaultServiceConfigFromEnv()
	cfg.Metrics.Enabled = false

	test.WithTestServerConfigurable(t, cfg, func(s *api.Server) {
		res := test.PerformRequest(t, s, "GET", "/metrics", nil, nil)
		require.Equal(t, http.StatusNotFound, res.Result().StatusCode)
	})
}
