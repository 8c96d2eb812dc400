package registry

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/dropbox/godropbox/time2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github/chapool/go-signer/internal/signing/request"
	"github/chapool/go-signer/internal/signing/signerrors"
)

var ErrNotFound = errors.New("sign request not found")

type entry struct {
	req  *request.TransactionRequest
	done chan struct{}
}

// Registry owns TransactionRequest records and their status transitions.
// Every request leaves pending exactly once.
type Registry struct {
	mu       sync.RWMutex
	requests map[string]*entry
	clock    time2.Clock
	logger   zerolog.Logger
}

func New(clock time2.Clock) *Registry {
	return &Registry{
		requests: make(map[string]*entry),
		clock:    clock,
		logger:   log.With().Str("component", "sign_request_registry").Logger(),
	}
}

// Create stores a new pending request for sub and returns a copy of it
func (r *Registry) Create(sub request.Submission, backend request.Backend) *request.TransactionRequest {
	now := r.clock.Now()

	req := &request.TransactionRequest{
		ID:            uuid.New().String(),
		Chain:         sub.Chain,
		ChainType:     sub.ChainType,
		Address:       sub.Address,
		Payload:       append([]byte(nil), sub.Payload...),
		Status:        request.StatusPending,
		Backend:       backend,
		ExtrinsicType: sub.ExtrinsicType,
		CreatedAt:     now,
		UpdatedAt:     now,
		Errors:        []request.Error{},
	}

	r.mu.Lock()
	r.requests[req.ID] = &entry{req: req, done: make(chan struct{})}
	r.mu.Unlock()

	r.logger.Debug().
		Str("request_id", req.ID).
		Str("backend", string(backend)).
		Str("status", string(req.Status)).
		Msg("Created sign request")

	return req.Clone()
}

// Get returns a copy of the request with the given id
func (r *Registry) Get(id string) (*request.TransactionRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.requests[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "id %s", id)
	}

	return e.req.Clone(), nil
}

// List returns copies of all requests, oldest first
func (r *Registry) List() []*request.TransactionRequest {
	r.mu.RLock()
	res := make([]*request.TransactionRequest, 0, len(r.requests))
	for _, e := range r.requests {
		res = append(res, e.req.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].ID < res[j].ID
		}
		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})

	return res
}

// Wait blocks until the request is terminal or ctx is done
func (r *Registry) Wait(ctx context.Context, id string) (*request.TransactionRequest, error) {
	r.mu.RLock()
	e, ok := r.requests[id]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "id %s", id)
	}

	select {
	case <-e.done:
		return r.Get(id)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Complete moves a pending request to completed.
// Returns false if the request is unknown or already terminal.
func (r *Registry) Complete(id string, signed []byte, hash string, transaction json.RawMessage) bool {
	return r.transition(id, request.StatusCompleted, func(req *request.TransactionRequest) {
		req.SignedTransaction = append([]byte(nil), signed...)
		req.ExtrinsicHash = hash
		req.Transaction = append(json.RawMessage(nil), transaction...)
	})
}

// Fail moves a pending request to failed and records err
func (r *Registry) Fail(id string, err error) bool {
	return r.transition(id, request.StatusFailed, appendError(err))
}

// Reject moves a pending request to rejected and records err
func (r *Registry) Reject(id string, err error) bool {
	return r.transition(id, request.StatusRejected, appendError(err))
}

// Settle routes err to the matching terminal state: user rejections
// reject the request, everything else fails it.
func (r *Registry) Settle(id string, err error) bool {
	if signerrors.Is(err, signerrors.KindUserRejected) {
		return r.Reject(id, err)
	}

	return r.Fail(id, err)
}

func appendError(err error) func(req *request.TransactionRequest) {
	return func(req *request.TransactionRequest) {
		if err == nil {
			return
		}

		req.Errors = append(req.Errors, request.Error{
			Kind:    string(signerrors.KindOf(err)),
			Message: signerrors.Reason(err),
		})
	}
}

func (r *Registry) transition(id string, next request.Status, apply func(req *request.TransactionRequest)) bool {
	r.mu.Lock()

	e, ok := r.requests[id]
	if !ok || !canTransition(e.req.Status, next) {
		r.mu.Unlock()

		r.logger.Debug().
			Str("request_id", id).
			Str("status", string(next)).
			Bool("known", ok).
			Msg("Ignoring transition of unknown or terminal sign request")

		return false
	}

	apply(e.req)
	e.req.Status = next
	e.req.UpdatedAt = r.clock.Now()
	backend := e.req.Backend
	close(e.done)

	r.mu.Unlock()

	r.logger.Info().
		Str("request_id", id).
		Str("backend", string(backend)).
		Str("status", string(next)).
		Msg("Sign request settled")

	return true
}

func canTransition(current, next request.Status) bool {
	switch current {
	case request.StatusPending:
		return next == request.StatusCompleted || next == request.StatusFailed || next == request.StatusRejected
	case request.StatusCompleted, request.StatusFailed, request.StatusRejected:
		return false
	default:
		return false
	}
}
