package assembler

import (
	"crypto/ed25519"
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github/chapool/go-signer/internal/signing/codec"
	"github/chapool/go-signer/internal/signing/request"
	"github/chapool/go-signer/internal/signing/signerrors"
)

// Signature is the split r, s, v of an ethereum signature
type Signature struct {
	R hexutil.Bytes  `json:"r"`
	S hexutil.Bytes  `json:"s"`
	V hexutil.Uint64 `json:"v"`
}

// LegacyTransaction is the assembled shape of a gasPrice transaction
type LegacyTransaction struct {
	Nonce     hexutil.Uint64  `json:"nonce"`
	GasPrice  *hexutil.Big    `json:"gasPrice"`
	GasLimit  hexutil.Uint64  `json:"gasLimit"`
	To        *common.Address `json:"to"`
	Value     *hexutil.Big    `json:"value"`
	Data      hexutil.Bytes   `json:"data"`
	ChainID   *hexutil.Big    `json:"chainId"`
	Signature Signature       `json:"signature"`
}

// Eip1559Transaction is the assembled shape of a fee market transaction
type Eip1559Transaction struct {
	Nonce                hexutil.Uint64  `json:"nonce"`
	MaxFeePerGas         *hexutil.Big    `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *hexutil.Big    `json:"maxPriorityFeePerGas"`
	GasLimit             hexutil.Uint64  `json:"gasLimit"`
	To                   *common.Address `json:"to"`
	Value                *hexutil.Big    `json:"value"`
	Data                 hexutil.Bytes   `json:"data"`
	ChainID              *hexutil.Big    `json:"chainId"`
	Signature            Signature       `json:"signature"`
}

// Result is a submittable transaction, or the signature of a raw message
type Result struct {
	Signed hexutil.Bytes `json:"signed"`
	Hash   string        `json:"hash"`
	// Transaction is *LegacyTransaction or *Eip1559Transaction for ethereum, nil for substrate
	Transaction interface{} `json:"transaction,omitempty"`
}

// TransactionJSON encodes Transaction, nil when there is none
func (r *Result) TransactionJSON() (json.RawMessage, error) {
	if r.Transaction == nil {
		return nil, nil
	}

	raw, err := json.Marshal(r.Transaction)
	if err != nil {
		return nil, signerrors.NewSerialization(err, "failed to encode assembled transaction")
	}

	return raw, nil
}

// Assembler merges signatures back into their unsigned payloads
type Assembler struct {
	registries codec.Registries
}

func New(registries codec.Registries) *Assembler {
	return &Assembler{registries: registries}
}

// Assemble builds the signed transaction for req. The signer recovered from
// or declared with the signature must match req.Address.
func (a *Assembler) Assemble(req *request.TransactionRequest, signature []byte) (*Result, error) {
	if req.IsRawMessage() {
		payload, err := codec.ParseRawPayload(req.Payload)
		if err != nil {
			return nil, err
		}
		return AssembleRaw(req.ChainType, payload, req.Address, signature)
	}

	switch req.ChainType {
	case request.ChainTypeEthereum:
		tx, err := codec.ParseEvmTransaction(req.Payload)
		if err != nil {
			return nil, err
		}
		return AssembleEvm(tx, req.Address, signature)
	case request.ChainTypeSubstrate:
		payload, err := codec.ParseSignerPayload(req.Payload, a.registries.Lookup(req.Chain))
		if err != nil {
			return nil, err
		}
		return AssembleSubstrate(payload, req.Address, signature)
	default:
		return nil, signerrors.NewUnsupportedFeature("unsupported chain type %q", req.ChainType)
	}
}

// AssembleRaw checks a message signature against address. The signature
// itself is the result, there is nothing to submit.
func AssembleRaw(chainType request.ChainType, payload *codec.RawPayload, address string, signature []byte) (*Result, error) {
	switch chainType {
	case request.ChainTypeEthereum:
		r, s, v, err := codec.SplitSignature(signature)
		if err != nil {
			return nil, err
		}

		recovery, err := codec.NormalizeV(v, new(big.Int))
		if err != nil {
			return nil, err
		}

		sig := make([]byte, 0, len(signature))
		sig = append(sig, r...)
		sig = append(sig, s...)
		sig = append(sig, recovery)

		pub, err := crypto.SigToPub(codec.EvmMessageHash(payload.Data), sig)
		if err != nil {
			return nil, signerrors.NewSerialization(err, "failed to recover message signer")
		}

		if sender := crypto.PubkeyToAddress(*pub).Hex(); !codec.SameEvmAddress(address, sender) {
			return nil, signerrors.NewAddressMismatch(address, sender)
		}
	case request.ChainTypeSubstrate:
		pub, err := codec.SubstratePublicKey(address)
		if err != nil {
			return nil, signerrors.NewSerialization(err, "invalid signer address %q", address)
		}

		// only ed25519 can be checked here, sr25519 and ecdsa pass through
		if len(signature) == ed25519.SignatureSize && !verifyEd25519(pub, payload.Data, signature) {
			return nil, signerrors.NewAddressMismatch(address, "unknown ed25519 signer")
		}
	default:
		return nil, signerrors.NewUnsupportedFeature("unsupported chain type %q", chainType)
	}

	return &Result{
		Signed: signature,
		Hash:   codec.MessageHash(payload.Data, chainType == request.ChainTypeEthereum),
	}, nil
}

// AssembleEvm attaches a 65 byte r || s || v signature to tx
func AssembleEvm(tx *codec.EvmTransaction, address string, signature []byte) (*Result, error) {
	r, s, v, err := codec.SplitSignature(signature)
	if err != nil {
		return nil, err
	}

	recovery, err := codec.NormalizeV(v, tx.ChainIDBig())
	if err != nil {
		return nil, err
	}

	sig := make([]byte, 0, len(signature))
	sig = append(sig, r...)
	sig = append(sig, s...)
	sig = append(sig, recovery)

	signer := tx.Signer()
	signed, err := tx.Unsigned().WithSignature(signer, sig)
	if err != nil {
		return nil, signerrors.NewSerialization(err, "failed to attach signature")
	}

	sender, err := signer.Sender(signed)
	if err != nil {
		return nil, signerrors.NewSerialization(err, "failed to recover signer")
	}

	if !codec.SameEvmAddress(address, sender.Hex()) {
		return nil, signerrors.NewAddressMismatch(address, sender.Hex())
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, signerrors.NewSerialization(err, "failed to serialize transaction")
	}

	rawV, _, _ := signed.RawSignatureValues()
	split := Signature{R: r, S: s, V: hexutil.Uint64(rawV.Uint64())}

	res := &Result{
		Signed: raw,
		Hash:   signed.Hash().Hex(),
	}

	if tx.IsEip1559() {
		res.Transaction = &Eip1559Transaction{
			Nonce:                hexutil.Uint64(signed.Nonce()),
			MaxFeePerGas:         (*hexutil.Big)(signed.GasFeeCap()),
			MaxPriorityFeePerGas: (*hexutil.Big)(signed.GasTipCap()),
			GasLimit:             hexutil.Uint64(signed.Gas()),
			To:                   signed.To(),
			Value:                (*hexutil.Big)(signed.Value()),
			Data:                 signed.Data(),
			ChainID:              (*hexutil.Big)(tx.ChainIDBig()),
			Signature:            split,
		}
	} else {
		res.Transaction = &LegacyTransaction{
			Nonce:     hexutil.Uint64(signed.Nonce()),
			GasPrice:  (*hexutil.Big)(signed.GasPrice()),
			GasLimit:  hexutil.Uint64(signed.Gas()),
			To:        signed.To(),
			Value:     (*hexutil.Big)(signed.Value()),
			Data:      signed.Data(),
			ChainID:   (*hexutil.Big)(tx.ChainIDBig()),
			Signature: split,
		}
	}

	return res, nil
}

// AssembleSubstrate attaches a multi signature to payload and returns the v4 extrinsic
func AssembleSubstrate(payload *codec.ExtrinsicPayload, address string, signature []byte) (*Result, error) {
	if !codec.SameSubstrateAccount(payload.Address, address) {
		return nil, signerrors.NewAddressMismatch(address, payload.Address)
	}

	pub, err := codec.SubstratePublicKey(address)
	if err != nil {
		return nil, signerrors.NewSerialization(err, "invalid signer address %q", address)
	}

	multi, err := codec.ParseMultiSignature(signature)
	if err != nil {
		return nil, err
	}

	if multi.IsEd25519 {
		signable, err := payload.Signable()
		if err != nil {
			return nil, err
		}

		if !verifyEd25519(pub, signable, multi.AsEd25519[:]) {
			return nil, signerrors.NewAddressMismatch(address, "unknown ed25519 signer")
		}
	}

	extrinsic, err := payload.SignedExtrinsic(pub, signature)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode signed extrinsic")
	}

	return &Result{
		Signed: extrinsic,
		Hash:   codec.ExtrinsicHash(extrinsic),
	}, nil
}
