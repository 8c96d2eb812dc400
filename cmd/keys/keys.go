package keys

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-signer/internal/api"
	"github/chapool/go-signer/internal/config"
	"github/chapool/go-signer/internal/util/command"
	"github/chapool/go-signer/internal/wallet/keyring"
	"github/chapool/go-signer/internal/wallet/keystore"
)

const (
	typeFlag     string = "type"
	mnemonicFlag string = "mnemonic"
	pathFlag     string = "path"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("keys",
		newCreate(),
		newList(),
		newImport(),
	)
}

// openKeyring loads the configured keystore without starting the rest of the server
func openKeyring() (keystore.Service, *keyring.Keyring, error) {
	cfg := config.DefaultServiceConfigFromEnv()
	command.ConfigureLogger(cfg.Logger)

	ks, err := api.NewKeystore(cfg)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open keystore")
	}

	kr, err := api.NewKeyring(cfg, ks)
	if err != nil {
		return nil, nil, err
	}

	return ks, kr, nil
}

func keyTypeFlag(cmd *cobra.Command) (keystore.KeyType, error) {
	raw, err := cmd.Flags().GetString(typeFlag)
	if err != nil {
		return "", errors.Wrapf(err, "failed to get %s flag", typeFlag)
	}

	switch keyType := keystore.KeyType(raw); keyType {
	case keystore.KeyTypeSecp256k1, keystore.KeyTypeEd25519:
		return keyType, nil
	default:
		return "", errors.Errorf("unsupported key type %q, want %s or %s", raw, keystore.KeyTypeSecp256k1, keystore.KeyTypeEd25519)
	}
}
