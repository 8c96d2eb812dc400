package keyring_test

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-signer/internal/wallet/keyring"
	"github/chapool/go-signer/internal/wallet/keystore"
)

const password = "correct horse"

func newKeyring(t *testing.T, dir string) *keyring.Keyring {
	t.Helper()

	ks, err := keystore.NewService(dir, keystore.LightScryptParams())
	require.NoError(t, err)

	return keyring.New(ks, 42)
}

func TestEd25519PairLifecycle(t *testing.T) {
	ctx := context.Background()
	kr := newKeyring(t, t.TempDir())

	pair, err := kr.Generate(ctx, keystore.KeyTypeEd25519, password)
	require.NoError(t, err)
	assert.True(t, pair.IsLocked())
	assert.Len(t, pair.PublicKey(), ed25519.PublicKeySize)

	_, err = pair.Sign([]byte("payload"))
	assert.ErrorIs(t, err, keyring.ErrLocked)

	require.Error(t, kr.Unlock(ctx, pair.Address(), "wrong"))
	assert.True(t, pair.IsLocked())

	require.NoError(t, kr.Unlock(ctx, pair.Address(), password))
	assert.False(t, pair.IsLocked())

	sig, err := pair.Sign([]byte("payload"))
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(pair.PublicKey(), []byte("payload"), sig))

	require.NoError(t, kr.Lock(pair.Address()))
	assert.True(t, pair.IsLocked())
}

func TestSecp256k1PairSignsDigest(t *testing.T) {
	ctx := context.Background()
	kr := newKeyring(t, t.TempDir())

	pair, err := kr.Generate(ctx, keystore.KeyTypeSecp256k1, password)
	require.NoError(t, err)
	require.True(t, common.IsHexAddress(pair.Address()))
	require.NoError(t, kr.Unlock(ctx, pair.Address(), password))

	digest := crypto.Keccak256([]byte("hello"))
	sig, err := pair.Sign(digest)
	require.NoError(t, err)
	require.Len(t, sig, 65)

	pub, err := crypto.SigToPub(digest, sig)
	require.NoError(t, err)
	assert.Equal(t, pair.Address(), crypto.PubkeyToAddress(*pub).Hex())

	// lookups are case-insensitive for hex addresses
	_, err = kr.Pair(common.HexToAddress(pair.Address()).Hex())
	require.NoError(t, err)

	kr.LockAll()
	assert.True(t, pair.IsLocked())
}

func TestDeriveFromSeed(t *testing.T) {
	ctx := context.Background()
	kr := newKeyring(t, t.TempDir())

	seed := keyring.SeedFromMnemonic("abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about", "")
	pair, err := kr.DeriveFromSeed(ctx, seed, keyring.DefaultEthereumPath, password)
	require.NoError(t, err)
	assert.Equal(t, "0x9858EfFD232B4033E47d90003D41EC34EcaEda94", pair.Address())
}

func TestParsePath(t *testing.T) {
	indices, err := keyring.ParsePath("m/44'/60'/0'/0/7")
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x8000002c, 0x8000003c, 0x80000000, 0, 7}, indices)

	for _, bad := range []string{"", "m", "44'/60'", "m/x", "m/-1"} {
		_, err := keyring.ParsePath(bad)
		assert.Error(t, err, bad)
	}
}

func TestLoadRestoresLockedPairs(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	pair, err := newKeyring(t, dir).Generate(ctx, keystore.KeyTypeEd25519, password)
	require.NoError(t, err)

	reloaded := newKeyring(t, dir)
	_, err = reloaded.Pair(pair.Address())
	assert.ErrorIs(t, err, keyring.ErrUnknownAccount)

	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, []string{pair.Address()}, reloaded.Addresses())

	restored, err := reloaded.Pair(pair.Address())
	require.NoError(t, err)
	assert.True(t, restored.IsLocked())
	require.NoError(t, reloaded.Unlock(ctx, pair.Address(), password))
	assert.Equal(t, pair.PublicKey(), restored.PublicKey())
}
