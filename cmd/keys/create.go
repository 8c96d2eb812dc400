package keys

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-signer/internal/util/command"
	"github/chapool/go-signer/internal/wallet/keystore"
)

func newCreate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Creates a new random key",
		Long: `Generates a random key and stores it encrypted in the keystore directory.
secp256k1 keys sign for ethereum chains, ed25519 keys for substrate chains.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keyType, err := keyTypeFlag(cmd)
			if err != nil {
				return err
			}

			_, kr, err := openKeyring()
			if err != nil {
				return err
			}

			password, err := command.ReadNewPassword("Enter password for the new key (min 8 characters): ")
			if err != nil {
				return errors.Wrap(err, "failed to read password")
			}

			pair, err := kr.Generate(cmd.Context(), keyType, password)
			if err != nil {
				return errors.Wrap(err, "failed to generate key")
			}

			log.Info().Str("address", pair.Address()).Str("key_type", string(keyType)).Msg("Created key")

			//nolint:forbidigo // the address is the command's output
			fmt.Fprintln(cmd.OutOrStdout(), pair.Address())

			return nil
		},
	}

	cmd.Flags().StringP(typeFlag, "t", string(keystore.KeyTypeSecp256k1), "Key type: secp256k1 or ed25519.")

	return cmd
}
