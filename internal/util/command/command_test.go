package command_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-signer/internal/api"
	"github/chapool/go-signer/internal/test"
	"github/chapool/go-signer/internal/util/command"
	"github/chapool/go-signer/internal/wallet/keystore"
)

func TestWithServer(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		ctx := t.Context()

		var testError = errors.New("test error")

		s.Config.Logger.PrettyPrintConsole = false
		resultErr := command.WithServer(ctx, s.Config, func(ctx context.Context, s *api.Server) error {
			pair, err := s.Keyring.Generate(ctx, keystore.KeyTypeEd25519, "pw")
			require.NoError(t, err)

			exists, err := s.Keystore.Exists(ctx, pair.Address())
			require.NoError(t, err)
			assert.True(t, exists)

			return testError
		})

		assert.Equal(t, testError, resultErr)
	})
}

func TestNewSubcommandGroup(t *testing.T) {
	cmd := command.NewSubcommandGroup("keys")

	assert.Equal(t, "keys", cmd.Use)
	assert.Equal(t, "keys related subcommands", cmd.Short)
}
