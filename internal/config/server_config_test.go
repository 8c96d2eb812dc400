package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-signer/internal/config"
)

func TestPrintServiceEnv(t *testing.T) {
	config := config.DefaultServiceConfigFromEnv()
	_, err := json.MarshalIndent(config, "", "  ")

	if err != nil {
		t.Fatal(err)
	}
}

func TestServiceConfigFromEnv(t *testing.T) {
	t.Setenv("SIGNER_SERVER_ECHO_LISTEN_ADDRESS", ":9999")
	t.Setenv("SIGNER_LOGGER_LEVEL", "warn")
	t.Setenv("SIGNER_KEYSTORE_SCRYPT_N", "4096")
	t.Setenv("SIGNER_SIGNING_ENABLE_BROADCAST", "true")
	t.Setenv("SIGNER_SIGNING_SHUTDOWN_TIMEOUT", "3s")

	cfg := config.DefaultServiceConfigFromEnv()
	assert.Equal(t, ":9999", cfg.Echo.ListenAddress)
	assert.Equal(t, zerolog.WarnLevel, cfg.Logger.Level)
	assert.Equal(t, 4096, cfg.Keystore.ScryptN)
	assert.Equal(t, 1, cfg.Keystore.ScryptP)
	assert.Equal(t, uint16(42), cfg.Keystore.SS58Prefix)
	assert.True(t, cfg.Signing.EnableBroadcast)
	assert.Equal(t, 3*time.Second, cfg.Signing.ShutdownTimeout)
	assert.Empty(t, cfg.Chains)
	assert.Equal(t, "en", cfg.I18n.DefaultLanguage.String())
	assert.Empty(t, cfg.I18n.BundleDirAbs)
}

func TestServiceConfigI18nFromEnv(t *testing.T) {
	t.Setenv("SIGNER_I18N_DEFAULT_LANGUAGE", "de")
	t.Setenv("SIGNER_I18N_BUNDLE_DIR_ABS", "/etc/signer/i18n")

	cfg := config.DefaultServiceConfigFromEnv()
	assert.Equal(t, "de", cfg.I18n.DefaultLanguage.String())
	assert.Equal(t, "/etc/signer/i18n", cfg.I18n.BundleDirAbs)

	t.Setenv("SIGNER_I18N_DEFAULT_LANGUAGE", "???")
	assert.Equal(t, "en", config.DefaultServiceConfigFromEnv().I18n.DefaultLanguage.String())
}

func TestServiceConfigChainsFromFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "signer.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`chains:
  - name: westend
    type: substrate
    rpc_url: wss://westend-rpc.polkadot.io
    ss58_prefix: 42
    signed_extensions: [CheckSpecVersion, CheckTxVersion, CheckGenesis, CheckMortality, CheckNonce, CheckWeight, ChargeTransactionPayment]
  - name: sepolia
    type: ethereum
    rpc_url: https://rpc.sepolia.org
`), 0o600))
	t.Setenv("SIGNER_CONFIG_FILE", file)

	cfg := config.DefaultServiceConfigFromEnv()
	require.Len(t, cfg.Chains, 2)
	assert.Equal(t, "westend", cfg.Chains[0].Name)
	assert.Equal(t, "substrate", cfg.Chains[0].Type)
	assert.Len(t, cfg.Chains[0].SignedExtensions, 7)
	assert.Equal(t, "https://rpc.sepolia.org", cfg.Chains[1].RPCURL)
}
