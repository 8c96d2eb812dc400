package codec_test

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-signer/internal/signing/codec"
	"github/chapool/go-signer/internal/signing/signerrors"
)

const (
	legacyPayload = `{
		"nonce": "0x5",
		"gasPrice": "0x3b9aca00",
		"gasLimit": "21000",
		"to": "0xabcabcabcabcabcabcabcabcabcabcabcabcabca",
		"value": "1000000000000000000",
		"data": "0x",
		"chainId": "1"
	}`
	feeMarketPayload = `{
		"nonce": "0x5",
		"maxFeePerGas": "0x77359400",
		"maxPriorityFeePerGas": "0x3b9aca00",
		"gas": "0x5208",
		"to": "0xabcabcabcabcabcabcabcabcabcabcabcabcabca",
		"value": "0xde0b6b3a7640000",
		"data": "0xdeadbeef",
		"chainId": "0x1"
	}`
)

func TestParseEvmTransaction(t *testing.T) {
	tx, err := codec.ParseEvmTransaction(json.RawMessage(legacyPayload))
	require.NoError(t, err)

	assert.False(t, tx.IsEip1559())
	assert.Equal(t, uint64(5), uint64(tx.Nonce))
	assert.Equal(t, uint64(21000), tx.GasLimitValue())
	assert.Equal(t, int64(1), tx.ChainIDBig().Int64())

	unsigned := tx.Unsigned()
	assert.Equal(t, uint8(0), unsigned.Type())
	assert.Equal(t, "1000000000", unsigned.GasPrice().String())
	assert.Equal(t, "1000000000000000000", unsigned.Value().String())

	tx, err = codec.ParseEvmTransaction(json.RawMessage(feeMarketPayload))
	require.NoError(t, err)
	assert.True(t, tx.IsEip1559())
	assert.Equal(t, uint64(21000), tx.GasLimitValue())
	assert.Equal(t, uint8(2), tx.Unsigned().Type())
	assert.Equal(t, hexutil.Bytes{0xde, 0xad, 0xbe, 0xef}, tx.Data)
}

func TestParseEvmTransactionErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{`},
		{"missing chain id", `{"nonce":"1","gasPrice":"1","gas":"21000"}`},
		{"missing gas", `{"nonce":"1","gasPrice":"1","chainId":"1"}`},
		{"missing fees", `{"nonce":"1","gas":"21000","chainId":"1"}`},
		{"bad recipient", `{"nonce":"1","gas":"21000","gasPrice":"1","chainId":"1","to":"0x12"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.ParseEvmTransaction(json.RawMessage(tt.payload))
			require.Error(t, err)
			assert.Equal(t, signerrors.KindSerialization, signerrors.KindOf(err))
		})
	}
}

func TestEvmSigningPayloadMatchesSignerHash(t *testing.T) {
	for _, payload := range []string{legacyPayload, feeMarketPayload} {
		tx, err := codec.ParseEvmTransaction(json.RawMessage(payload))
		require.NoError(t, err)

		unsigned, err := codec.EvmSigningPayload(tx)
		require.NoError(t, err)

		assert.Equal(t, tx.SigningHash(), crypto.Keccak256Hash(unsigned))
	}
}

func TestEvmSigningPayloadLegacyLayout(t *testing.T) {
	tx, err := codec.ParseEvmTransaction(json.RawMessage(legacyPayload))
	require.NoError(t, err)

	unsigned, err := codec.EvmSigningPayload(tx)
	require.NoError(t, err)

	// chainId 1 followed by the two empty placeholders
	assert.Equal(t, []byte{0x01, 0x80, 0x80}, unsigned[len(unsigned)-3:])
	// list header: nothing typed in front
	assert.GreaterOrEqual(t, unsigned[0], byte(0xc0))

	tx, err = codec.ParseEvmTransaction(json.RawMessage(feeMarketPayload))
	require.NoError(t, err)

	typed, err := codec.EvmSigningPayload(tx)
	require.NoError(t, err)
	assert.Equal(t, byte(0x02), typed[0])
}

func TestSplitSignature(t *testing.T) {
	sig := make([]byte, 65)
	for i := range sig {
		sig[i] = byte(i)
	}

	r, s, v, err := codec.SplitSignature(sig)
	require.NoError(t, err)
	assert.Equal(t, sig[0:32], r)
	assert.Equal(t, sig[32:64], s)
	assert.Equal(t, 64, v)

	_, _, _, err = codec.SplitSignature(sig[:64])
	require.Error(t, err)
	assert.Equal(t, signerrors.KindSerialization, signerrors.KindOf(err))
}

func TestNormalizeV(t *testing.T) {
	tests := []struct {
		v       int
		chainID int64
		want    byte
		wantErr bool
	}{
		{0, 1, 0, false},
		{1, 1, 1, false},
		{27, 1, 0, false},
		{28, 1, 1, false},
		{37, 1, 0, false},
		{38, 1, 1, false},
		{45, 5, 0, false},
		{46, 5, 1, false},
		{37, 5, 0, true},
		{2, 1, 0, true},
		{29, 1, 0, true},
	}

	for _, tt := range tests {
		got, err := codec.NormalizeV(tt.v, big.NewInt(tt.chainID))
		if tt.wantErr {
			assert.Error(t, err, "v=%d chain=%d", tt.v, tt.chainID)
			continue
		}
		require.NoError(t, err, "v=%d chain=%d", tt.v, tt.chainID)
		assert.Equal(t, tt.want, got, "v=%d chain=%d", tt.v, tt.chainID)
	}
}

func TestSameEvmAddress(t *testing.T) {
	assert.True(t, codec.SameEvmAddress("0xABCabcabcabcabcabcabcabcabcabcabcabcabca", "0xabcabcabcabcabcabcabcabcabcabcabcabcabca"))
	assert.False(t, codec.SameEvmAddress("0xabcabcabcabcabcabcabcabcabcabcabcabcabca", "0x0000000000000000000000000000000000000001"))
	assert.False(t, codec.SameEvmAddress("0xabc", "0xabc"))
}
