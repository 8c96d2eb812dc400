package api

import (
	"context"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-signer/internal/config"
	"github/chapool/go-signer/internal/device/ledger"
	"github/chapool/go-signer/internal/i18n"
	"github/chapool/go-signer/internal/metrics"
	"github/chapool/go-signer/internal/signing"
	"github/chapool/go-signer/internal/signing/broadcast"
	"github/chapool/go-signer/internal/signing/codec"
	"github/chapool/go-signer/internal/signing/request"
	"github/chapool/go-signer/internal/signing/signer"
	"github/chapool/go-signer/internal/wallet/keyring"
	"github/chapool/go-signer/internal/wallet/keystore"
)

// PROVIDERS - define here only providers that for various reasons (e.g. cyclic dependency) can't live in their corresponding packages
// or for wrapping providers that only accept sub-configs to prevent the requirement for defining providers for sub-configs.
// https://github.com/google/wire/blob/main/docs/guide.md#defining-providers

// NewClock returns a mock clock starting at a fixed date when a test is given
func NewClock(t ...*testing.T) time2.Clock {
	var clock time2.Clock

	useMock := len(t) > 0 && t[0] != nil

	if useMock {
		clock = time2.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	} else {
		clock = time2.DefaultClock
	}

	return clock
}

func NoTest() []*testing.T {
	return nil
}

func NewI18N(cfg config.Server) (*i18n.Service, error) {
	return i18n.New(cfg.I18n)
}

//nolint:ireturn // Returning interface is intentional for dependency injection
func NewKeystore(cfg config.Server) (keystore.Service, error) {
	params := keystore.DefaultScryptParams()
	if cfg.Keystore.ScryptN > 0 {
		params.N = cfg.Keystore.ScryptN
	}
	if cfg.Keystore.ScryptP > 0 {
		params.P = cfg.Keystore.ScryptP
	}

	return keystore.NewService(cfg.Keystore.Directory, params)
}

// NewKeyring loads every stored account, all of them locked
func NewKeyring(cfg config.Server, ks keystore.Service) (*keyring.Keyring, error) {
	kr := keyring.New(ks, cfg.Keystore.SS58Prefix)
	if err := kr.Load(context.Background()); err != nil {
		return nil, errors.Wrap(err, "failed to load keyring")
	}

	return kr, nil
}

// NewRegistries collects the metadata of every configured substrate chain
func NewRegistries(cfg config.Server) codec.Registries {
	registries := make(codec.Registries, len(cfg.Chains))

	for _, chain := range cfg.Chains {
		if request.ChainType(chain.Type) != request.ChainTypeSubstrate {
			continue
		}

		prefix := chain.SS58Prefix
		if prefix == 0 {
			prefix = cfg.Keystore.SS58Prefix
		}

		registries[chain.Name] = &codec.ChainRegistry{
			Name:             chain.Name,
			SS58Prefix:       prefix,
			SignedExtensions: chain.SignedExtensions,
		}
	}

	return registries
}

func NewLedgerManager() *ledger.Manager {
	return ledger.NewManager(nil)
}

// NewBroadcaster returns an empty router when broadcasting is disabled, so
// signed transactions are only handed back to the caller
func NewBroadcaster(cfg config.Server) (*broadcast.Router, error) {
	if !cfg.Signing.EnableBroadcast {
		log.Info().Msg("Broadcasting is disabled")
		return broadcast.NewRouter(), nil
	}

	return broadcast.FromConfig(cfg.Chains)
}

//nolint:ireturn // Returning interface is intentional for dependency injection
func NewSigningService(
	cfg config.Server,
	clock time2.Clock,
	kr *keyring.Keyring,
	registries codec.Registries,
	inbox *signing.Inbox,
	ledgerManager *ledger.Manager,
	broadcaster *broadcast.Router,
	m *metrics.Metrics,
) signing.Service {
	opts := []signing.Option{
		signing.WithBroadcaster(broadcaster),
		signing.WithMetrics(m),
	}

	if path := cfg.Signing.HardwareDevicePath; path != "" {
		opts = append(opts, signing.WithHardware(signer.WithDevice(ledgerManager, path)))
	}

	return signing.NewService(clock, kr, registries, inbox, opts...)
}
