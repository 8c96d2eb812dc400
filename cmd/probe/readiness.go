package probe

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-signer/internal/api"
	"github/chapool/go-signer/internal/api/router"
	"github/chapool/go-signer/internal/config"
	"github/chapool/go-signer/internal/device/ledger"
	"github/chapool/go-signer/internal/util/command"
)

func newReadiness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Runs readiness probes",
		Long: `Initializes the server components and checks that the keystore
can be listed and that a configured hardware device is present.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			verbose, err := cmd.Flags().GetBool(verboseFlag)
			if err != nil {
				return errors.Wrapf(err, "failed to get %s flag", verboseFlag)
			}

			return command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(), func(ctx context.Context, s *api.Server) error {
				return runReadiness(ctx, s, verbose)
			})
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Show verbose output.")

	return cmd
}

func runReadiness(ctx context.Context, s *api.Server, verbose bool) error {
	if err := router.Init(s); err != nil {
		return errors.Wrap(err, "failed to initialize router")
	}

	if !s.Ready() {
		return errors.New("server is not ready")
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.Config.Management.ReadinessTimeout)
	defer cancel()

	keystores, err := s.Keystore.List(probeCtx)
	if err != nil {
		log.Error().Err(err).Msg("Readiness probe failed to list keystore")
		return errors.Wrap(err, "failed to list keystore")
	}

	if path := s.Config.Signing.HardwareDevicePath; path != "" {
		infos, err := ledger.Enumerate()
		if err != nil {
			log.Error().Err(err).Msg("Failed to enumerate hardware devices")
			return errors.Wrap(err, "failed to enumerate hardware devices")
		}

		if _, err := ledger.SelectDevice(infos, path); err != nil {
			log.Error().Err(err).Str("device", path).Int("found", len(infos)).Msg("Readiness probe failed to find hardware device")
			return errors.Wrap(err, "hardware device is not present")
		}
	}

	if verbose {
		log.Info().
			Int("keys", len(keystores)).
			Int("chains", len(s.Config.Chains)).
			Msg("Readiness probe succeeded")
	}

	return nil
}
