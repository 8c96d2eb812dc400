package signer

import (
	"context"

	"github.com/pkg/errors"
	"github/chapool/go-signer/internal/signing/codec"
	"github/chapool/go-signer/internal/signing/request"
	"github/chapool/go-signer/internal/signing/signerrors"
	"github/chapool/go-signer/internal/wallet/keyring"
	"github/chapool/go-signer/internal/wallet/keystore"
)

// Keyring looks up local key pairs
type Keyring interface {
	Pair(address string) (*keyring.Pair, error)
}

// Local signs with key pairs held in the local keyring. It never waits on
// an external party.
type Local struct {
	keyring    Keyring
	registries codec.Registries
	counter    *Counter
}

func NewLocal(kr Keyring, registries codec.Registries, counter *Counter) *Local {
	return &Local{
		keyring:    kr,
		registries: registries,
		counter:    counter,
	}
}

func (l *Local) Backend() request.Backend {
	return request.BackendLocal
}

func (l *Local) Sign(ctx context.Context, req *request.TransactionRequest, _ request.AccountProfile) (*request.SignerResult, error) {
	return l.SignPayload(ctx, req)
}

// SignPayload signs the chain specific signable form of req.Payload
func (l *Local) SignPayload(_ context.Context, req *request.TransactionRequest) (*request.SignerResult, error) {
	pair, err := l.keyring.Pair(req.Address)
	if err != nil {
		if errors.Is(err, keyring.ErrUnknownAccount) {
			return nil, signerrors.NewUnsupportedFeature("account %s is not held by the local keyring", req.Address)
		}
		return nil, err
	}

	if pair.IsLocked() {
		return nil, signerrors.NewLockedAccount(req.Address)
	}

	var signature []byte
	switch req.ChainType {
	case request.ChainTypeEthereum:
		signature, err = l.signEvm(req, pair)
	case request.ChainTypeSubstrate:
		signature, err = l.signSubstrate(req, pair)
	default:
		return nil, signerrors.NewUnsupportedFeature("chain type %q", req.ChainType)
	}
	if err != nil {
		if errors.Is(err, keyring.ErrLocked) {
			return nil, signerrors.NewLockedAccount(req.Address)
		}
		return nil, err
	}

	return &request.SignerResult{ID: l.counter.Next(), Signature: signature}, nil
}

func (l *Local) signEvm(req *request.TransactionRequest, pair *keyring.Pair) ([]byte, error) {
	if pair.KeyType() != keystore.KeyTypeSecp256k1 {
		return nil, signerrors.NewUnsupportedFeature("%s keys cannot sign ethereum transactions", pair.KeyType())
	}

	if req.IsRawMessage() {
		raw, err := codec.ParseRawPayload(req.Payload)
		if err != nil {
			return nil, err
		}
		return pair.Sign(codec.EvmMessageHash(raw.Data))
	}

	tx, err := codec.ParseEvmTransaction(req.Payload)
	if err != nil {
		return nil, err
	}

	hash := tx.SigningHash()
	return pair.Sign(hash.Bytes())
}

func (l *Local) signSubstrate(req *request.TransactionRequest, pair *keyring.Pair) ([]byte, error) {
	if pair.KeyType() != keystore.KeyTypeEd25519 {
		return nil, signerrors.NewUnsupportedFeature("%s keys cannot sign substrate extrinsics", pair.KeyType())
	}

	if req.IsRawMessage() {
		raw, err := codec.ParseRawPayload(req.Payload)
		if err != nil {
			return nil, err
		}
		return pair.Sign(raw.Data)
	}

	payload, err := codec.ParseSignerPayload(req.Payload, l.registries.Lookup(req.Chain))
	if err != nil {
		return nil, err
	}

	signable, err := payload.Signable()
	if err != nil {
		return nil, err
	}

	sig, err := pair.Sign(signable)
	if err != nil {
		return nil, err
	}

	return codec.Ed25519MultiSignature(sig)
}
