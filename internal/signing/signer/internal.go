package signer

import (
	"context"

	"github/chapool/go-signer/internal/signing/promise"
	"github/chapool/go-signer/internal/signing/request"
)

// Internal routes multisig, proxied and injected accounts through the
// extension's own confirmation flow
type Internal struct {
	promises  *promise.Store
	presenter InternalPresenter
	counter   *Counter
}

func NewInternal(promises *promise.Store, presenter InternalPresenter, counter *Counter) *Internal {
	return &Internal{
		promises:  promises,
		presenter: presenter,
		counter:   counter,
	}
}

func (i *Internal) Backend() request.Backend {
	return request.BackendInternal
}

func (i *Internal) Sign(ctx context.Context, req *request.TransactionRequest, _ request.AccountProfile) (*request.SignerResult, error) {
	presentation := request.InternalPresentation{
		ID:            req.ID,
		Address:       req.Address,
		Chain:         req.Chain,
		ChainType:     req.ChainType,
		ExtrinsicType: req.ExtrinsicType,
		Payload:       req.Payload,
	}

	p, err := present(ctx, i.promises, req.ID, func(ctx context.Context) error {
		return i.presenter.PresentInternal(ctx, presentation)
	})
	if err != nil {
		return nil, err
	}

	return await(ctx, i.promises, p, i.counter)
}
