package codec

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github/chapool/go-signer/internal/signing/signerrors"
	"golang.org/x/crypto/blake2b"
)

// RawPayload is a message to sign instead of a transaction
type RawPayload struct {
	Address string        `json:"address"`
	Data    hexutil.Bytes `json:"data"`
	Type    string        `json:"type,omitempty"`
}

// ParseRawPayload decodes a raw message payload
func ParseRawPayload(raw json.RawMessage) (*RawPayload, error) {
	var p RawPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, signerrors.NewSerialization(err, "failed to decode raw message payload")
	}

	if len(p.Data) == 0 {
		return nil, signerrors.NewSerialization(nil, "raw message payload is missing data")
	}

	return &p, nil
}

// EvmMessageHash is the EIP-191 personal message hash of data
func EvmMessageHash(data []byte) []byte {
	return accounts.TextHash(data)
}

// MessageHash identifies a signed message: EIP-191 for ethereum, blake2b-256 otherwise
func MessageHash(data []byte, ethereum bool) string {
	if ethereum {
		return hexutil.Encode(EvmMessageHash(data))
	}

	h := blake2b.Sum256(data)
	return hexutil.Encode(h[:])
}
