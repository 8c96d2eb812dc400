package assembler_test

import (
	"crypto/ed25519"
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-signer/internal/signing/assembler"
	"github/chapool/go-signer/internal/signing/codec"
	"github/chapool/go-signer/internal/signing/request"
	"github/chapool/go-signer/internal/signing/signerrors"
)

const (
	testKeyHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	recipient  = "0xabcabcabcabcabcabcabcabcabcabcabcabcabca"

	legacyPayload = `{
		"nonce": "0x5",
		"gasPrice": "0x3b9aca00",
		"gasLimit": "0x5208",
		"to": "0xabcabcabcabcabcabcabcabcabcabcabcabcabca",
		"value": "0xde0b6b3a7640000",
		"data": "0x",
		"chainId": "0x1"
	}`
	feeMarketPayload = `{
		"nonce": "0x5",
		"maxFeePerGas": "0x77359400",
		"maxPriorityFeePerGas": "0x3b9aca00",
		"gasLimit": "0x5208",
		"to": "0xabcabcabcabcabcabcabcabcabcabcabcabcabca",
		"value": "0xde0b6b3a7640000",
		"data": "0x",
		"chainId": "0x1"
	}`
)

func signEvm(t *testing.T, payload string) (*codec.EvmTransaction, []byte, common.Address) {
	t.Helper()

	key, err := crypto.HexToECDSA(testKeyHex)
	require.NoError(t, err)

	tx, err := codec.ParseEvmTransaction(json.RawMessage(payload))
	require.NoError(t, err)

	sig, err := crypto.Sign(tx.SigningHash().Bytes(), key)
	require.NoError(t, err)

	return tx, sig, crypto.PubkeyToAddress(key.PublicKey)
}

func decode(t *testing.T, raw []byte) *types.Transaction {
	t.Helper()

	var tx types.Transaction
	require.NoError(t, tx.UnmarshalBinary(raw))
	return &tx
}

func TestAssembleEvmLegacyScenario(t *testing.T) {
	tx, sig, from := signEvm(t, legacyPayload)

	res, err := assembler.AssembleEvm(tx, from.Hex(), sig)
	require.NoError(t, err)

	shape, ok := res.Transaction.(*assembler.LegacyTransaction)
	require.True(t, ok, "expected legacy shape, got %T", res.Transaction)
	assert.Equal(t, hexutil.Uint64(5), shape.Nonce)
	assert.Equal(t, "0x3b9aca00", shape.GasPrice.String())
	assert.Equal(t, hexutil.Uint64(21000), shape.GasLimit)
	assert.Equal(t, "0xde0b6b3a7640000", shape.Value.String())
	assert.Equal(t, "0x1", shape.ChainID.String())

	decoded := decode(t, res.Signed)
	assert.Equal(t, uint8(types.LegacyTxType), decoded.Type())
	assert.Equal(t, uint64(5), decoded.Nonce())
	assert.Equal(t, uint64(21000), decoded.Gas())
	assert.Equal(t, common.HexToAddress(recipient), *decoded.To())
	assert.Equal(t, "1000000000000000000", decoded.Value().String())
	assert.Empty(t, decoded.Data())
	assert.Equal(t, int64(1), decoded.ChainId().Int64())
	assert.Equal(t, decoded.Hash().Hex(), res.Hash)

	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(1)), decoded)
	require.NoError(t, err)
	assert.Equal(t, from, sender)

	v, r, s := decoded.RawSignatureValues()
	assert.Zero(t, new(big.Int).SetBytes(sig[0:32]).Cmp(r))
	assert.Zero(t, new(big.Int).SetBytes(sig[32:64]).Cmp(s))
	assert.Equal(t, int64(37+int(sig[64])), v.Int64())
	assert.Equal(t, hexutil.Uint64(v.Uint64()), shape.Signature.V)

	// the shape serializes with hex-prefixed numbers
	js, err := json.Marshal(shape)
	require.NoError(t, err)
	assert.Contains(t, string(js), `"nonce":"0x5"`)
	assert.NotContains(t, string(js), "maxFeePerGas")
}

func TestAssembleEvmFeeMarketScenario(t *testing.T) {
	tx, sig, from := signEvm(t, feeMarketPayload)

	res, err := assembler.AssembleEvm(tx, from.Hex(), sig)
	require.NoError(t, err)

	shape, ok := res.Transaction.(*assembler.Eip1559Transaction)
	require.True(t, ok, "expected fee market shape, got %T", res.Transaction)
	assert.Equal(t, "0x77359400", shape.MaxFeePerGas.String())
	assert.Equal(t, "0x3b9aca00", shape.MaxPriorityFeePerGas.String())

	decoded := decode(t, res.Signed)
	assert.Equal(t, uint8(types.DynamicFeeTxType), decoded.Type())
	assert.Equal(t, "2000000000", decoded.GasFeeCap().String())
	assert.Equal(t, "1000000000", decoded.GasTipCap().String())
	assert.Equal(t, byte(0x02), []byte(res.Signed)[0])

	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(1)), decoded)
	require.NoError(t, err)
	assert.Equal(t, from, sender)

	v, r, s := decoded.RawSignatureValues()
	assert.Zero(t, new(big.Int).SetBytes(sig[0:32]).Cmp(r))
	assert.Zero(t, new(big.Int).SetBytes(sig[32:64]).Cmp(s))
	assert.Equal(t, int64(sig[64]), v.Int64())
}

func TestAssembleEvmAcceptsEncodedV(t *testing.T) {
	tx, sig, from := signEvm(t, legacyPayload)

	want, err := assembler.AssembleEvm(tx, from.Hex(), sig)
	require.NoError(t, err)

	for _, offset := range []byte{27, 37} {
		shifted := append([]byte(nil), sig...)
		shifted[64] += offset

		got, err := assembler.AssembleEvm(tx, from.Hex(), shifted)
		require.NoError(t, err, "offset %d", offset)
		assert.Equal(t, want.Signed, got.Signed)
	}
}

func TestAssembleEvmAddressMismatch(t *testing.T) {
	tx, sig, _ := signEvm(t, legacyPayload)

	_, err := assembler.AssembleEvm(tx, recipient, sig)
	require.Error(t, err)
	assert.Equal(t, signerrors.KindAddressMismatch, signerrors.KindOf(err))
}

func TestAssembleEvmBadSignature(t *testing.T) {
	tx, sig, from := signEvm(t, legacyPayload)

	_, err := assembler.AssembleEvm(tx, from.Hex(), sig[:64])
	assert.Equal(t, signerrors.KindSerialization, signerrors.KindOf(err))

	bad := append([]byte(nil), sig...)
	bad[64] = 9
	_, err = assembler.AssembleEvm(tx, from.Hex(), bad)
	assert.Equal(t, signerrors.KindSerialization, signerrors.KindOf(err))
}

func substrateRequest(t *testing.T, address string) *request.TransactionRequest {
	t.Helper()

	payload := map[string]interface{}{
		"address":            address,
		"blockHash":          "0x" + strings.Repeat("22", 32),
		"blockNumber":        "0x10",
		"era":                "0x00",
		"genesisHash":        "0x" + strings.Repeat("11", 32),
		"method":             "0x0500",
		"nonce":              "0x2",
		"signedExtensions":   []string{"CheckSpecVersion", "CheckTxVersion", "CheckGenesis", "CheckMortality", "CheckNonce", "CheckWeight", "ChargeTransactionPayment"},
		"specVersion":        "0x1",
		"tip":                "0x0",
		"transactionVersion": "0x2",
		"version":            4,
	}

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	return &request.TransactionRequest{
		ID:        "req-1",
		Chain:     "westend",
		ChainType: request.ChainTypeSubstrate,
		Address:   address,
		Payload:   raw,
		Status:    request.StatusPending,
	}
}

func TestAssembleSubstrate(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	address, err := codec.EncodeSS58(pub, 42)
	require.NoError(t, err)

	req := substrateRequest(t, address)
	payload, err := codec.ParseSignerPayload(req.Payload, nil)
	require.NoError(t, err)

	signable, err := payload.Signable()
	require.NoError(t, err)

	sig, err := codec.Ed25519MultiSignature(ed25519.Sign(priv, signable))
	require.NoError(t, err)

	res, err := assembler.New(nil).Assemble(req, sig)
	require.NoError(t, err)
	assert.Nil(t, res.Transaction)
	assert.Equal(t, codec.ExtrinsicHash(res.Signed), res.Hash)

	_, n, err := codec.DecodeCompact(res.Signed)
	require.NoError(t, err)
	assert.Equal(t, byte(0x84), res.Signed[n])
	assert.Equal(t, []byte(pub), []byte(res.Signed[n+2:n+34]))
}

func TestAssembleSubstrateRejectsForeignSignature(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	_, otherPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	address, err := codec.EncodeSS58(pub, 42)
	require.NoError(t, err)

	req := substrateRequest(t, address)
	payload, err := codec.ParseSignerPayload(req.Payload, nil)
	require.NoError(t, err)

	signable, err := payload.Signable()
	require.NoError(t, err)

	_, err = assembler.New(nil).Assemble(req, ed25519.Sign(otherPriv, signable))
	require.Error(t, err)
	assert.Equal(t, signerrors.KindAddressMismatch, signerrors.KindOf(err))
}

func TestAssembleSubstrateAddressMismatch(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	other, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	payloadAddress, err := codec.EncodeSS58(pub, 42)
	require.NoError(t, err)
	requestAddress, err := codec.EncodeSS58(other, 42)
	require.NoError(t, err)

	req := substrateRequest(t, payloadAddress)
	req.Address = requestAddress

	_, err = assembler.New(nil).Assemble(req, make([]byte, 64))
	require.Error(t, err)
	assert.Equal(t, signerrors.KindAddressMismatch, signerrors.KindOf(err))
}

func TestAssembleUnsupportedChainType(t *testing.T) {
	_, err := assembler.New(nil).Assemble(&request.TransactionRequest{ChainType: "bitcoin"}, nil)
	assert.Equal(t, signerrors.KindUnsupportedFeature, signerrors.KindOf(err))
}
