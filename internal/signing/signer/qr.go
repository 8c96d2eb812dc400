package signer

import (
	"context"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github/chapool/go-signer/internal/signing/codec"
	"github/chapool/go-signer/internal/signing/promise"
	"github/chapool/go-signer/internal/signing/request"
	"github/chapool/go-signer/internal/signing/signerrors"
)

// Qr hands the payload to an air-gapped device through a QR code and waits
// for the scanned signature
type Qr struct {
	promises   *promise.Store
	presenter  QrPresenter
	registries codec.Registries
	counter    *Counter
}

func NewQr(promises *promise.Store, presenter QrPresenter, registries codec.Registries, counter *Counter) *Qr {
	return &Qr{
		promises:   promises,
		presenter:  presenter,
		registries: registries,
		counter:    counter,
	}
}

func (q *Qr) Backend() request.Backend {
	return request.BackendExternalQr
}

func (q *Qr) Sign(ctx context.Context, req *request.TransactionRequest, _ request.AccountProfile) (*request.SignerResult, error) {
	presentation, err := QrPayload(req, q.registries)
	if err != nil {
		return nil, err
	}

	p, err := present(ctx, q.promises, req.ID, func(ctx context.Context) error {
		return q.presenter.PresentQr(ctx, *presentation)
	})
	if err != nil {
		return nil, err
	}

	return await(ctx, q.promises, p, q.counter)
}

// Respond resolves the pending QR promise of id
func (q *Qr) Respond(id string, result *request.SignerResult) bool {
	return q.promises.Resolve(id, result)
}

// Cancel rejects the pending QR promise of id. Settled or unknown ids are left alone.
func (q *Qr) Cancel(id string, reason string) bool {
	return q.promises.Reject(id, signerrors.NewUserRejected(reason))
}

// QrPayload builds the presentation for req. Substrate payloads longer than
// 256 bytes are replaced by their blake2b-256 hash.
func QrPayload(req *request.TransactionRequest, registries codec.Registries) (*request.QrPresentation, error) {
	if req.IsRawMessage() {
		return nil, signerrors.NewUnsupportedFeature("raw messages cannot be signed over QR")
	}

	presentation := &request.QrPresentation{
		QrID:      req.ID,
		QrAddress: req.Address,
	}

	switch req.ChainType {
	case request.ChainTypeEthereum:
		tx, err := codec.ParseEvmTransaction(req.Payload)
		if err != nil {
			return nil, err
		}

		payload, err := codec.EvmSigningPayload(tx)
		if err != nil {
			return nil, err
		}

		presentation.QrPayload = hexutil.Encode(payload)
		presentation.IsEthereum = true
	case request.ChainTypeSubstrate:
		payload, err := codec.ParseSignerPayload(req.Payload, registries.Lookup(req.Chain))
		if err != nil {
			return nil, err
		}

		encoded, err := payload.Encode()
		if err != nil {
			return nil, err
		}

		qr, hashed := codec.HashIfLong(encoded)
		presentation.QrPayload = hexutil.Encode(qr)
		presentation.IsQrHashed = hashed
	default:
		return nil, signerrors.NewUnsupportedFeature("chain type %q", req.ChainType)
	}

	return presentation, nil
}
