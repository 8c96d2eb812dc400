package keys

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-signer/internal/util/command"
	"github/chapool/go-signer/internal/wallet/keyring"
	"github/chapool/go-signer/internal/wallet/keystore"
)

func newImport() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [hex-secret]",
		Short: "Imports an existing key",
		Long: `Imports a 0x-prefixed 32 byte secret of the given type, or with --mnemonic
derives a secp256k1 key from a BIP39 mnemonic on --path. The mnemonic is read
from the terminal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().StringP(typeFlag, "t", string(keystore.KeyTypeSecp256k1), "Key type: secp256k1 or ed25519.")
	cmd.Flags().BoolP(mnemonicFlag, "m", false, "Derive the key from a mnemonic instead of a hex secret.")
	cmd.Flags().String(pathFlag, keyring.DefaultEthereumPath, "BIP44 derivation path used with --mnemonic.")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	useMnemonic, err := cmd.Flags().GetBool(mnemonicFlag)
	if err != nil {
		return errors.Wrapf(err, "failed to get %s flag", mnemonicFlag)
	}

	if useMnemonic == (len(args) == 1) {
		return errors.New("pass either a hex secret or --mnemonic")
	}

	_, kr, err := openKeyring()
	if err != nil {
		return err
	}

	var pair *keyring.Pair
	if useMnemonic {
		path, err := cmd.Flags().GetString(pathFlag)
		if err != nil {
			return errors.Wrapf(err, "failed to get %s flag", pathFlag)
		}

		mnemonic, err := command.PromptPassword("Enter mnemonic: ")
		if err != nil {
			return errors.Wrap(err, "failed to read mnemonic")
		}
		if len(strings.Fields(mnemonic)) == 0 {
			return errors.New("mnemonic is empty")
		}

		password, err := command.ReadNewPassword("Enter password for the imported key (min 8 characters): ")
		if err != nil {
			return errors.Wrap(err, "failed to read password")
		}

		pair, err = kr.DeriveFromSeed(ctx, keyring.SeedFromMnemonic(mnemonic, ""), path, password)
		if err != nil {
			return errors.Wrap(err, "failed to derive key")
		}
	} else {
		keyType, err := keyTypeFlag(cmd)
		if err != nil {
			return err
		}

		secret, err := hexutil.Decode(args[0])
		if err != nil {
			return errors.Wrap(err, "secret must be 0x-prefixed hex")
		}

		password, err := command.ReadNewPassword("Enter password for the imported key (min 8 characters): ")
		if err != nil {
			return errors.Wrap(err, "failed to read password")
		}

		pair, err = kr.Add(ctx, keyType, secret, password)
		if err != nil {
			return errors.Wrap(err, "failed to import key")
		}
	}

	log.Info().Str("address", pair.Address()).Str("key_type", string(pair.KeyType())).Msg("Imported key")

	//nolint:forbidigo // the address is the command's output
	fmt.Fprintln(cmd.OutOrStdout(), pair.Address())

	return nil
}
