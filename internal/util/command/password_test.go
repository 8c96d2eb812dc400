package command_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-signer/internal/util/command"
)

func TestReadPasswordFromEnv(t *testing.T) {
	t.Setenv(command.PasswordEnv, "from-env")

	password, err := command.ReadPassword("unused: ")
	require.NoError(t, err)
	assert.Equal(t, "from-env", password)
}

func TestReadNewPasswordLength(t *testing.T) {
	t.Setenv(command.PasswordEnv, "short")

	_, err := command.ReadNewPassword("unused: ")
	require.Error(t, err)

	t.Setenv(command.PasswordEnv, "long enough")

	password, err := command.ReadNewPassword("unused: ")
	require.NoError(t, err)
	assert.Equal(t, "long enough", password)
}
