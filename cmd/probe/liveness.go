package probe

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-signer/internal/config"
	"github/chapool/go-signer/internal/util/command"
)

func newLiveness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liveness",
		Short: "Runs liveness probes",
		Long: `Checks that the keystore directory is writable.
Exits non-zero if the signer cannot persist keys.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			verbose, err := cmd.Flags().GetBool(verboseFlag)
			if err != nil {
				return errors.Wrapf(err, "failed to get %s flag", verboseFlag)
			}

			return runLiveness(cmd.Context(), verbose)
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Show verbose output.")

	return cmd
}

func runLiveness(_ context.Context, verbose bool) error {
	cfg := config.DefaultServiceConfigFromEnv()
	command.ConfigureLogger(cfg.Logger)

	if err := probeWritable(cfg.Keystore.Directory); err != nil {
		log.Error().Err(err).Str("dir", cfg.Keystore.Directory).Msg("Liveness probe failed")
		return err
	}

	if verbose {
		log.Info().Str("dir", cfg.Keystore.Directory).Msg("Liveness probe succeeded")
	}

	return nil
}

func probeWritable(dir string) error {
	f, err := os.CreateTemp(filepath.Clean(dir), ".probe-*")
	if err != nil {
		return errors.Wrap(err, "keystore directory is not writable")
	}

	name := f.Name()
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "failed to close probe file")
	}

	return errors.Wrap(os.Remove(name), "failed to remove probe file")
}
