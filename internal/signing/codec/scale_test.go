package codec_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-signer/internal/signing/codec"
)

func TestCompactVectors(t *testing.T) {
	tests := []struct {
		value uint64
		want  string
	}{
		{0, "0x00"},
		{1, "0x04"},
		{63, "0xfc"},
		{64, "0x0101"},
		{16383, "0xfdff"},
		{16384, "0x02000100"},
		{1073741823, "0xfeffffff"},
		{1073741824, "0x0300000040"},
		{1 << 32, "0x070000000001"},
	}

	for _, tt := range tests {
		enc, err := codec.EncodeCompact(new(big.Int).SetUint64(tt.value))
		require.NoError(t, err)
		assert.Equal(t, tt.want, hexutil.Encode(enc), "value %d", tt.value)

		dec, n, err := codec.DecodeCompact(enc)
		require.NoError(t, err)
		assert.Equal(t, len(enc), n)
		assert.Equal(t, new(big.Int).SetUint64(tt.value), dec)
	}
}

func TestDecodeCompactShortInput(t *testing.T) {
	for _, in := range [][]byte{{}, {0x01}, {0x02, 0x00}, {0x03, 0x00}} {
		_, _, err := codec.DecodeCompact(in)
		assert.Error(t, err)
	}
}

func TestEncodeCompactNegativeIsZero(t *testing.T) {
	enc, err := codec.EncodeCompact(big.NewInt(-5))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, enc)

	enc, err = codec.EncodeCompact(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, enc)
}
