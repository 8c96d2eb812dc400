package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github/chapool/go-signer/internal/api"
	"github/chapool/go-signer/internal/api/router"
	"github/chapool/go-signer/internal/config"
	"github/chapool/go-signer/internal/wallet/keystore"
)

// WithTestServer returns a fully configured server backed by a temporary
// keystore directory and a mock clock
func WithTestServer(t *testing.T, closure func(s *api.Server)) {
	t.Helper()

	WithTestServerConfigurable(t, config.DefaultServiceConfigFromEnv(), closure)
}

// WithTestServerConfigurable is WithTestServer with a custom configuration.
// Hardware devices and broadcasting are always disabled.
func WithTestServerConfigurable(t *testing.T, cfg config.Server, closure func(s *api.Server)) {
	t.Helper()

	cfg.Keystore.Directory = t.TempDir()
	cfg.Keystore.ScryptN = keystore.LightScryptParams().N
	cfg.Signing.HardwareDevicePath = ""
	cfg.Signing.EnableBroadcast = false

	s, err := api.InitNewServerWithClock(cfg, t)
	require.NoError(t, err, "failed to init server")

	require.NoError(t, router.Init(s), "failed to init router")

	closure(s)

	//nolint:mnd // generous shutdown window for pending flows
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if errs := s.Shutdown(ctx); len(errs) > 0 {
		t.Logf("failed to shutdown test server: %v", errs)
	}
}
