package server

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-signer/internal/api"
	"github/chapool/go-signer/internal/util/command"
)

// initializeSigner unlocks the requested keys and logs what the signer can reach
func initializeSigner(ctx context.Context, s *api.Server, flags Flags) error {
	log := log.With().Str("component", "signer_init").Logger()

	if flags.Probe {
		if !s.Ready() {
			return errors.New("server is not ready")
		}

		probeCtx, cancel := context.WithTimeout(ctx, s.Config.Management.ReadinessTimeout)
		defer cancel()

		if _, err := s.Keystore.List(probeCtx); err != nil {
			return errors.Wrap(err, "failed to list keystore")
		}
	}

	if len(flags.Unlock) > 0 {
		password, err := command.ReadPassword(fmt.Sprintf("Enter password to unlock %d key(s): ", len(flags.Unlock)))
		if err != nil {
			return errors.Wrap(err, "failed to read password")
		}

		for _, address := range flags.Unlock {
			if err := s.Keyring.Unlock(ctx, address, password); err != nil {
				return errors.Wrapf(err, "failed to unlock %s", address)
			}

			log.Info().Str("address", address).Msg("Unlocked key")
		}
	}

	log.Info().Int("keys", len(s.Keyring.Addresses())).Msg("Keyring loaded")

	for _, chain := range s.Config.Chains {
		log.Info().
			Str("chain", chain.Name).
			Str("chain_type", chain.Type).
			Bool("broadcast", s.Config.Signing.EnableBroadcast && chain.RPCURL != "").
			Msg("Chain configured")
	}

	if path := s.Config.Signing.HardwareDevicePath; path != "" {
		log.Info().Str("device", path).Msg("Hardware signer enabled")
	} else {
		log.Info().Msg("Hardware signer disabled, no device path configured")
	}

	return nil
}
