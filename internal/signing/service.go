package signing

import (
	"context"
	"sync"

	"github.com/dropbox/godropbox/time2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github/chapool/go-signer/internal/metrics"
	"github/chapool/go-signer/internal/signing/assembler"
	"github/chapool/go-signer/internal/signing/codec"
	"github/chapool/go-signer/internal/signing/dispatch"
	"github/chapool/go-signer/internal/signing/promise"
	"github/chapool/go-signer/internal/signing/registry"
	"github/chapool/go-signer/internal/signing/request"
	"github/chapool/go-signer/internal/signing/signer"
	"github/chapool/go-signer/internal/signing/signerrors"
	"github/chapool/go-signer/internal/util"
)

// Service drives sign requests from submission to a terminal status
type Service interface {
	// Submit creates a pending request and signs it in the background.
	// Read-only accounts are refused right away with a failed request.
	Submit(ctx context.Context, sub request.Submission, profile request.AccountProfile) (*request.TransactionRequest, error)

	// Wait blocks until the request is terminal or ctx is done.
	// Giving up on ctx does not cancel the request.
	Wait(ctx context.Context, id string) (*request.TransactionRequest, error)

	Get(ctx context.Context, id string) (*request.TransactionRequest, error)
	List(ctx context.Context) []*request.TransactionRequest

	// Respond settles the external signer exchange of request id
	Respond(ctx context.Context, id string, result *request.SignerResult) bool

	// Cancel rejects request id if it is still pending
	Cancel(ctx context.Context, id string, reason string) bool

	// PendingPromises lists the external responses currently awaited
	PendingPromises(ctx context.Context) []promise.Snapshot

	// Close rejects everything still pending and waits for the running flows
	Close(ctx context.Context) error
}

type Option func(s *service)

func WithBroadcaster(b Broadcaster) Option {
	return func(s *service) {
		s.broadcaster = b
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *service) {
		s.metrics = m
	}
}

// WithHardware configures the hardware signer, e.g. with signer.WithDevice
func WithHardware(opts ...signer.HardwareOption) Option {
	return func(s *service) {
		s.hardwareOpts = append(s.hardwareOpts, opts...)
	}
}

type service struct {
	clock       time2.Clock
	registry    *registry.Registry
	promises    *promise.Store
	assembler   *assembler.Assembler
	presenter   Presenter
	broadcaster Broadcaster
	metrics     *metrics.Metrics
	logger      zerolog.Logger

	hardwareOpts []signer.HardwareOption
	hardware     *signer.Hardware
	qr           *signer.Qr
	signers      map[request.Backend]signer.Signer

	mu     sync.Mutex
	flows  map[string]context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// NewService wires the signer backends around a fresh registry and promise
// store. A nil keyring disables local signing.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(clock time2.Clock, kr signer.Keyring, registries codec.Registries, presenter Presenter, opts ...Option) Service {
	s := &service{
		clock:     clock,
		registry:  registry.New(clock),
		promises:  promise.NewStore(clock),
		assembler: assembler.New(registries),
		presenter: presenter,
		logger:    log.With().Str("component", "signing_service").Logger(),
		flows:     make(map[string]context.CancelFunc),
	}

	for _, opt := range opts {
		opt(s)
	}

	counter := &signer.Counter{}
	s.hardware = signer.NewHardware(s.promises, presenter, registries, counter, s.hardwareOpts...)
	s.qr = signer.NewQr(s.promises, presenter, registries, counter)

	s.signers = map[request.Backend]signer.Signer{
		request.BackendHardware:   s.hardware,
		request.BackendExternalQr: s.qr,
		request.BackendInternal:   signer.NewInternal(s.promises, presenter, counter),
	}
	if kr != nil {
		s.signers[request.BackendLocal] = signer.NewLocal(kr, registries, counter)
	}

	s.metrics.TrackPending(s.promises.Len)

	return s
}

func (s *service) Submit(ctx context.Context, sub request.Submission, profile request.AccountProfile) (*request.TransactionRequest, error) {
	if err := validateSubmission(sub); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}

	backend := dispatch.Select(profile)
	req := s.registry.Create(sub, backend)
	s.metrics.Submitted(string(backend))

	logger := util.LogFromContext(ctx).With().
		Str("request_id", req.ID).
		Str("backend", string(backend)).
		Str("chain", req.Chain).
		Logger()

	if err := dispatch.Refuse(profile); err != nil {
		s.mu.Unlock()

		logger.Info().Err(err).Msg("Refusing sign request")
		s.settle(req, err)

		return s.registry.Get(req.ID)
	}

	// the flow outlives the submitting call
	flowCtx, cancel := context.WithCancel(util.WithLogger(context.WithoutCancel(ctx), logger))
	s.flows[req.ID] = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	logger.Info().Str("status", string(req.Status)).Msg("Accepted sign request")

	go s.run(flowCtx, req, profile)

	return req, nil
}

func (s *service) run(ctx context.Context, req *request.TransactionRequest, profile request.AccountProfile) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		cancel := s.flows[req.ID]
		delete(s.flows, req.ID)
		s.mu.Unlock()

		if cancel != nil {
			cancel()
		}

		// a cancel racing the presenter may have forgotten the request too early
		s.forget(req.ID)
	}()
	defer func() {
		if r := recover(); r != nil {
			util.LogFromContext(ctx).Error().Interface("panic", r).Msg("Signer panicked")
			s.settle(req, errors.Errorf("signer panicked: %v", r))
		}
	}()

	if err := s.process(ctx, req, profile); err != nil {
		s.settle(req, err)
	}
}

func (s *service) process(ctx context.Context, req *request.TransactionRequest, profile request.AccountProfile) error {
	log := util.LogFromContext(ctx)

	sgn, ok := s.signers[req.Backend]
	if !ok {
		return signerrors.NewUnsupportedFeature("no signer for backend %s", req.Backend)
	}

	result, err := sgn.Sign(ctx, req, profile)
	if err != nil {
		return err
	}

	log.Debug().Uint64("signer_result_id", result.ID).Msg("Received signature")

	assembled, err := s.assembler.Assemble(req, result.Signature)
	if err != nil {
		return err
	}

	hash := assembled.Hash
	if s.broadcaster != nil && !req.IsRawMessage() {
		if err := ctx.Err(); err != nil {
			return signerrors.NewUserRejected("request cancelled")
		}

		broadcastHash, err := s.broadcaster.Broadcast(ctx, req, assembled.Signed)
		if err != nil {
			log.Error().Err(err).Msg("Failed to broadcast signed transaction")
			return errors.Wrap(err, "failed to broadcast signed transaction")
		}
		if broadcastHash != "" {
			hash = broadcastHash
		}
	}

	transaction, err := assembled.TransactionJSON()
	if err != nil {
		return err
	}

	if s.registry.Complete(req.ID, assembled.Signed, hash, transaction) {
		s.settled(req, request.StatusCompleted)
		log.Info().Str("status", string(request.StatusCompleted)).Str("hash", hash).Msg("Signed transaction")
	}

	return nil
}

// settle records err on req. User rejections reject, everything else fails.
func (s *service) settle(req *request.TransactionRequest, err error) {
	status := request.StatusFailed
	if signerrors.Is(err, signerrors.KindUserRejected) {
		status = request.StatusRejected
	}

	if !s.registry.Settle(req.ID, err) {
		return
	}

	s.settled(req, status)

	s.logger.Info().
		Err(err).
		Str("request_id", req.ID).
		Str("backend", string(req.Backend)).
		Str("status", string(status)).
		Bool("retryable", signerrors.Retryable(err)).
		Str("user_message_id", signerrors.UserMessageID(err)).
		Msg("Sign request did not complete")
}

func (s *service) settled(req *request.TransactionRequest, status request.Status) {
	s.metrics.Settled(string(req.Backend), string(status), s.clock.Now().Sub(req.CreatedAt))
	s.forget(req.ID)
}

func (s *service) forget(id string) {
	if f, ok := s.presenter.(forgetter); ok {
		f.Forget(id)
	}
}

func (s *service) Wait(ctx context.Context, id string) (*request.TransactionRequest, error) {
	return s.registry.Wait(ctx, id)
}

func (s *service) Get(_ context.Context, id string) (*request.TransactionRequest, error) {
	return s.registry.Get(id)
}

func (s *service) List(_ context.Context) []*request.TransactionRequest {
	return s.registry.List()
}

func (s *service) Respond(ctx context.Context, id string, result *request.SignerResult) bool {
	ok := s.promises.Resolve(id, result)
	util.LogFromContext(ctx).Debug().Str("request_id", id).Bool("settled", ok).Msg("Received external response")

	return ok
}

// Cancel rejects the awaited response of id. Requests that are not waiting
// on anyone are rejected in the registry and their flow is stopped.
func (s *service) Cancel(ctx context.Context, id string, reason string) bool {
	log := util.LogFromContext(ctx).With().Str("request_id", id).Logger()
	rejection := signerrors.NewUserRejected(reason)

	if s.promises.Reject(id, rejection) {
		log.Info().Str("reason", signerrors.Reason(rejection)).Msg("Cancelled external response")
		return true
	}

	req, err := s.registry.Get(id)
	if err != nil || req.Status.Terminal() {
		return false
	}

	if !s.registry.Reject(id, rejection) {
		return false
	}
	s.settled(req, request.StatusRejected)

	s.mu.Lock()
	cancel := s.flows[id]
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	log.Info().Str("reason", signerrors.Reason(rejection)).Msg("Cancelled sign request")

	return true
}

func (s *service) PendingPromises(_ context.Context) []promise.Snapshot {
	return s.promises.Pending()
}

func (s *service) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	shutdown := signerrors.NewUserRejected("service shutting down")

	for _, req := range s.registry.List() {
		if req.Status.Terminal() {
			continue
		}
		if s.registry.Reject(req.ID, shutdown) {
			s.settled(req, request.StatusRejected)
		}
	}

	rejected := s.promises.RejectAll(shutdown)

	s.mu.Lock()
	for _, cancel := range s.flows {
		cancel()
	}
	s.mu.Unlock()

	s.logger.Info().Int("rejected_promises", rejected).Msg("Closing signing service")

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = errors.Wrap(ctx.Err(), "failed to wait for signing flows")
	}

	if discErr := s.hardware.Disconnect(); discErr != nil {
		s.logger.Warn().Err(discErr).Msg("Failed to disconnect hardware device")
	}

	return err
}
