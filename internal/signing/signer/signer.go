package signer

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
	"github/chapool/go-signer/internal/signing/promise"
	"github/chapool/go-signer/internal/signing/request"
	"github/chapool/go-signer/internal/signing/signerrors"
	"github/chapool/go-signer/internal/util"
)

// Signer produces the signature of a pending request
type Signer interface {
	Backend() request.Backend
	Sign(ctx context.Context, req *request.TransactionRequest, profile request.AccountProfile) (*request.SignerResult, error)
}

// Counter hands out SignerResult ids. Every service owns its own counter.
type Counter struct {
	last atomic.Uint64
}

// Next returns the next id, starting at 1
func (c *Counter) Next() uint64 {
	return c.last.Add(1)
}

type LedgerPresenter interface {
	PresentLedger(ctx context.Context, presentation request.LedgerPresentation) error
}

type QrPresenter interface {
	PresentQr(ctx context.Context, presentation request.QrPresentation) error
}

type InternalPresenter interface {
	PresentInternal(ctx context.Context, presentation request.InternalPresentation) error
}

// await blocks on p. When ctx ends first the promise is rejected so a late
// response finds nothing to settle.
func await(ctx context.Context, promises *promise.Store, p *promise.Promise, counter *Counter) (*request.SignerResult, error) {
	result, err := p.Wait(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			rejection := signerrors.NewUserRejected("request cancelled")
			promises.Reject(p.ID, rejection)
			util.LogFromContext(ctx).Debug().Str("promise_id", p.ID).Msg("Stopped waiting for external response")
			return nil, rejection
		}

		return nil, err
	}

	if result == nil || len(result.Signature) == 0 {
		return nil, signerrors.NewSerialization(nil, "external response carries no signature")
	}

	out := &request.SignerResult{
		ID:        counter.Next(),
		Signature: append([]byte(nil), result.Signature...),
	}

	return out, nil
}

// present registers a promise for id and runs show. A failing show rejects
// the promise again. Nothing is shown once ctx is done.
func present(ctx context.Context, promises *promise.Store, id string, show func(ctx context.Context) error) (*promise.Promise, error) {
	if ctx.Err() != nil {
		return nil, signerrors.NewUserRejected("request cancelled")
	}

	p, err := promises.Register(id)
	if err != nil {
		return nil, err
	}

	if err := show(ctx); err != nil {
		failure := signerrors.NewDeviceCommunication(err, "failed to present request")
		promises.Reject(id, failure)
		return nil, failure
	}

	return p, nil
}
