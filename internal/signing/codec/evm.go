package codec

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github/chapool/go-signer/internal/signing/signerrors"
)

const (
	signatureLength = 65
	eip155Offset    = 35
	legacyVOffset   = 27
)

// EvmTransaction holds the unsigned fields of an ethereum payload.
// Numeric fields accept hex-prefixed or decimal strings.
type EvmTransaction struct {
	From                 string                `json:"from,omitempty"`
	To                   string                `json:"to,omitempty"`
	Nonce                math.HexOrDecimal64   `json:"nonce"`
	Gas                  *math.HexOrDecimal64  `json:"gas,omitempty"`
	GasLimit             *math.HexOrDecimal64  `json:"gasLimit,omitempty"`
	GasPrice             *math.HexOrDecimal256 `json:"gasPrice,omitempty"`
	MaxFeePerGas         *math.HexOrDecimal256 `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas *math.HexOrDecimal256 `json:"maxPriorityFeePerGas,omitempty"`
	Value                *math.HexOrDecimal256 `json:"value,omitempty"`
	Data                 hexutil.Bytes         `json:"data,omitempty"`
	ChainID              *math.HexOrDecimal256 `json:"chainId"`
}

// ParseEvmTransaction decodes and validates an unsigned ethereum payload
func ParseEvmTransaction(raw json.RawMessage) (*EvmTransaction, error) {
	var tx EvmTransaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, signerrors.NewSerialization(err, "failed to decode ethereum payload")
	}

	if tx.ChainID == nil || tx.ChainIDBig().Sign() <= 0 {
		return nil, signerrors.NewSerialization(nil, "ethereum payload is missing chainId")
	}

	if tx.GasLimit == nil && tx.Gas == nil {
		return nil, signerrors.NewSerialization(nil, "ethereum payload is missing gasLimit")
	}

	if !tx.IsEip1559() && tx.GasPrice == nil {
		return nil, signerrors.NewSerialization(nil, "ethereum payload needs gasPrice or maxFeePerGas")
	}

	if tx.To != "" && !common.IsHexAddress(tx.To) {
		return nil, signerrors.NewSerialization(nil, "invalid recipient address %q", tx.To)
	}

	return &tx, nil
}

// IsEip1559 reports whether the payload carries fee market fields
func (t *EvmTransaction) IsEip1559() bool {
	return t.MaxFeePerGas != nil
}

func (t *EvmTransaction) ChainIDBig() *big.Int {
	return bigOrZero(t.ChainID)
}

func (t *EvmTransaction) GasLimitValue() uint64 {
	if t.GasLimit != nil {
		return uint64(*t.GasLimit)
	}
	if t.Gas != nil {
		return uint64(*t.Gas)
	}

	return 0
}

// Recipient returns nil for contract creation
func (t *EvmTransaction) Recipient() *common.Address {
	if t.To == "" {
		return nil
	}

	to := common.HexToAddress(t.To)
	return &to
}

// Unsigned builds the go-ethereum transaction for the payload
func (t *EvmTransaction) Unsigned() *types.Transaction {
	if t.IsEip1559() {
		return types.NewTx(&types.DynamicFeeTx{
			ChainID:   t.ChainIDBig(),
			Nonce:     uint64(t.Nonce),
			GasTipCap: bigOrZero(t.MaxPriorityFeePerGas),
			GasFeeCap: bigOrZero(t.MaxFeePerGas),
			Gas:       t.GasLimitValue(),
			To:        t.Recipient(),
			Value:     bigOrZero(t.Value),
			Data:      t.Data,
		})
	}

	return types.NewTx(&types.LegacyTx{
		Nonce:    uint64(t.Nonce),
		GasPrice: bigOrZero(t.GasPrice),
		Gas:      t.GasLimitValue(),
		To:       t.Recipient(),
		Value:    bigOrZero(t.Value),
		Data:     t.Data,
	})
}

// Signer returns the replay-protected signer for the payload's chain
//
//nolint:ireturn
func (t *EvmTransaction) Signer() types.Signer {
	return types.LatestSignerForChainID(t.ChainIDBig())
}

// SigningHash is the digest a secp256k1 key signs for this payload
func (t *EvmTransaction) SigningHash() common.Hash {
	return t.Signer().Hash(t.Unsigned())
}

// EvmSigningPayload returns the canonical unsigned bytes an external device hashes.
// Legacy payloads are rlp([nonce, gasPrice, gasLimit, to, value, data, chainId, 0, 0]),
// fee market payloads are 0x02 || rlp([chainId, nonce, tip, feeCap, gasLimit, to, value, data, accessList]).
func EvmSigningPayload(t *EvmTransaction) ([]byte, error) {
	tx := t.Unsigned()

	if t.IsEip1559() {
		enc, err := rlp.EncodeToBytes([]interface{}{
			t.ChainIDBig(),
			tx.Nonce(),
			tx.GasTipCap(),
			tx.GasFeeCap(),
			tx.Gas(),
			tx.To(),
			tx.Value(),
			tx.Data(),
			tx.AccessList(),
		})
		if err != nil {
			return nil, signerrors.NewSerialization(err, "failed to encode fee market payload")
		}

		return append([]byte{types.DynamicFeeTxType}, enc...), nil
	}

	enc, err := rlp.EncodeToBytes([]interface{}{
		tx.Nonce(),
		tx.GasPrice(),
		tx.Gas(),
		tx.To(),
		tx.Value(),
		tx.Data(),
		t.ChainIDBig(),
		uint(0),
		uint(0),
	})
	if err != nil {
		return nil, signerrors.NewSerialization(err, "failed to encode legacy payload")
	}

	return enc, nil
}

// SplitSignature splits a 65 byte r || s || v signature
func SplitSignature(sig []byte) ([]byte, []byte, int, error) {
	if len(sig) != signatureLength {
		return nil, nil, 0, signerrors.NewSerialization(nil, "signature must be %d bytes, got %d", signatureLength, len(sig))
	}

	return sig[0:32], sig[32:64], int(sig[64]), nil
}

// NormalizeV maps a raw, legacy (27/28) or EIP-155 v to the 0/1 recovery id
func NormalizeV(v int, chainID *big.Int) (byte, error) {
	recovery := int64(v)

	switch {
	case v == 0 || v == 1:
	case v == legacyVOffset || v == legacyVOffset+1:
		recovery = int64(v - legacyVOffset)
	case v >= eip155Offset:
		recovery = int64(v-eip155Offset) - 2*chainID.Int64()
	default:
		return 0, signerrors.NewSerialization(nil, "invalid signature v %d", v)
	}

	if recovery != 0 && recovery != 1 {
		return 0, signerrors.NewSerialization(nil, "signature v %d does not match chain %s", v, chainID)
	}

	return byte(recovery), nil
}

// SameEvmAddress compares two hex addresses case-insensitively
func SameEvmAddress(a, b string) bool {
	if !common.IsHexAddress(a) || !common.IsHexAddress(b) {
		return false
	}

	return common.HexToAddress(a) == common.HexToAddress(b)
}

func bigOrZero(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return new(big.Int)
	}

	return new(big.Int).Set((*big.Int)(v))
}
