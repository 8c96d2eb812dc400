package env

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-signer/internal/config"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Prints the env",
		Long: `Prints the currently applied env

The effective config is the result of the SIGNER_ environment,
an optional .env.local file and the chains config file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEnv(cmd)
		},
	}
}

func runEnv(cmd *cobra.Command) error {
	cfg := config.DefaultServiceConfigFromEnv()

	c, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	//nolint:forbidigo // env prints to stdout on purpose
	fmt.Fprintln(cmd.OutOrStdout(), string(c))

	return nil
}
