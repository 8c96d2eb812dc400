package signer

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github/chapool/go-signer/internal/device/ledger"
	"github/chapool/go-signer/internal/signing/codec"
	"github/chapool/go-signer/internal/signing/promise"
	"github/chapool/go-signer/internal/signing/request"
	"github/chapool/go-signer/internal/signing/signerrors"
)

// HardwareSignOptions selects the device application for a signing call
type HardwareSignOptions struct {
	ChainType request.ChainType

	// ChainID of a legacy EVM transaction, used to undo the EIP-155 v encoding
	ChainID *big.Int
}

// Connector opens the device transport
type Connector func() (ledger.Transport, error)

type HardwareOption func(h *Hardware)

// WithConnector lets the signer drive a device itself. Without it the
// presentation collaborator is expected to talk to the device and respond.
func WithConnector(connect Connector) HardwareOption {
	return func(h *Hardware) {
		h.connect = connect
	}
}

// WithDevice drives the Ledger at path through manager
func WithDevice(manager *ledger.Manager, path string) HardwareOption {
	return WithConnector(func() (ledger.Transport, error) {
		return manager.Open(path)
	})
}

// Hardware signs with a Ledger device
type Hardware struct {
	promises   *promise.Store
	presenter  LedgerPresenter
	registries codec.Registries
	counter    *Counter
	connect    Connector
	logger     zerolog.Logger

	// signMu serializes whole signing exchanges on the device
	signMu    sync.Mutex
	mu        sync.Mutex
	transport ledger.Transport
}

func NewHardware(promises *promise.Store, presenter LedgerPresenter, registries codec.Registries, counter *Counter, opts ...HardwareOption) *Hardware {
	h := &Hardware{
		promises:   promises,
		presenter:  presenter,
		registries: registries,
		counter:    counter,
		logger:     log.With().Str("component", "hardware_signer").Logger(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

func (h *Hardware) Backend() request.Backend {
	return request.BackendHardware
}

// Sign presents the payload for the device and waits for the signature.
// With a connector configured the device is driven in the background.
//
// Raw message requests go through SignMessage, everything else through
// SignTransaction.
func (h *Hardware) Sign(ctx context.Context, req *request.TransactionRequest, profile request.AccountProfile) (*request.SignerResult, error) {
	payload, opts, err := LedgerPayload(req, h.registries)
	if err != nil {
		return nil, err
	}

	sign := h.SignTransaction
	if req.IsRawMessage() {
		sign = h.SignMessage
	}

	p, err := present(ctx, h.promises, req.ID, func(ctx context.Context) error {
		return h.presenter.PresentLedger(ctx, request.LedgerPresentation{
			LedgerPayload: hexutil.Encode(payload),
			LedgerID:      req.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	if h.connect != nil {
		go h.drive(ctx, req.ID, sign, payload, profile, opts)
	}

	return await(ctx, h.promises, p, h.counter)
}

// deviceSignFunc is SignTransaction or SignMessage
type deviceSignFunc func(ctx context.Context, message []byte, accountOffset uint32, addressOffset uint32, opts HardwareSignOptions) ([]byte, error)

func (h *Hardware) drive(ctx context.Context, id string, sign deviceSignFunc, payload []byte, profile request.AccountProfile, opts HardwareSignOptions) {
	sig, err := sign(ctx, payload, profile.AccountOffset, profile.AddressOffset, opts)
	if err != nil {
		if !h.promises.Reject(id, err) {
			h.logger.Debug().Err(err).Str("promise_id", id).Msg("Device failure after promise settled")
		}
		return
	}

	h.promises.Resolve(id, &request.SignerResult{Signature: sig})
}

// SignTransaction signs an unsigned transaction payload on the device.
// The signature is returned as the device produced it, apart from the EVM
// recovery id which is normalized to 0 or 1.
func (h *Hardware) SignTransaction(ctx context.Context, message []byte, accountOffset uint32, addressOffset uint32, opts HardwareSignOptions) ([]byte, error) {
	h.signMu.Lock()
	defer h.signMu.Unlock()

	transport, err := h.open()
	if err != nil {
		return nil, err
	}

	var sig []byte
	switch opts.ChainType {
	case request.ChainTypeEthereum:
		sig, err = ledger.Ethereum{Transport: transport}.SignTransaction(ctx, ledger.EthereumPath(accountOffset, addressOffset), message)
		if err == nil {
			sig[64], err = ledgerRecoveryID(sig[64], opts.ChainID)
		}
	case request.ChainTypeSubstrate:
		sig, err = ledger.Substrate{Transport: transport}.Sign(ctx, ledger.SubstratePath(accountOffset, addressOffset), message)
	default:
		return nil, signerrors.NewUnsupportedFeature("chain type %q on hardware", opts.ChainType)
	}
	if err != nil {
		return nil, h.deviceError(err)
	}

	return sig, nil
}

// SignMessage signs raw bytes on the device. A leading 0x00 signature type
// byte is stripped from Substrate signatures.
func (h *Hardware) SignMessage(ctx context.Context, message []byte, accountOffset uint32, addressOffset uint32, opts HardwareSignOptions) ([]byte, error) {
	h.signMu.Lock()
	defer h.signMu.Unlock()

	transport, err := h.open()
	if err != nil {
		return nil, err
	}

	switch opts.ChainType {
	case request.ChainTypeEthereum:
		sig, err := ledger.Ethereum{Transport: transport}.SignPersonalMessage(ctx, ledger.EthereumPath(accountOffset, addressOffset), message)
		if err != nil {
			return nil, h.deviceError(err)
		}
		return sig, nil
	case request.ChainTypeSubstrate:
		sig, err := ledger.Substrate{Transport: transport}.SignRaw(ctx, ledger.SubstratePath(accountOffset, addressOffset), message)
		if err != nil {
			return nil, h.deviceError(err)
		}
		return StripSignaturePrefix(sig), nil
	default:
		return nil, signerrors.NewUnsupportedFeature("chain type %q on hardware", opts.ChainType)
	}
}

// Disconnect releases the device session
func (h *Hardware) Disconnect() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.transport == nil {
		return nil
	}

	err := h.transport.Close()
	h.transport = nil

	return err
}

func (h *Hardware) open() (ledger.Transport, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.transport != nil {
		return h.transport, nil
	}

	if h.connect == nil {
		return nil, signerrors.NewUnsupportedFeature("no hardware device configured")
	}

	transport, err := h.connect()
	if err != nil {
		return nil, signerrors.NewDeviceCommunication(err, "failed to open hardware device")
	}
	h.transport = transport

	return transport, nil
}

// deviceError maps device failures onto the signer taxonomy. Anything but a
// status word drops the session so the next call reconnects.
func (h *Hardware) deviceError(err error) error {
	if ledger.IsUserRejected(err) {
		return signerrors.NewUserRejected("rejected on the hardware device")
	}

	if signerrors.KindOf(err) != signerrors.KindUnknown {
		return err
	}

	var statusErr *ledger.StatusError
	if !errors.As(err, &statusErr) {
		if closeErr := h.Disconnect(); closeErr != nil {
			h.logger.Debug().Err(closeErr).Msg("Failed to close hardware device")
		}
	}

	return signerrors.NewDeviceCommunication(err, "hardware device exchange failed")
}

// StripSignaturePrefix drops a leading 0x00 byte, leaving other signatures unchanged
func StripSignaturePrefix(sig []byte) []byte {
	if len(sig) > 0 && sig[0] == 0x00 {
		return sig[1:]
	}

	return sig
}

// LedgerPayload returns the bytes the device signs for req
func LedgerPayload(req *request.TransactionRequest, registries codec.Registries) ([]byte, HardwareSignOptions, error) {
	opts := HardwareSignOptions{ChainType: req.ChainType}

	if req.IsRawMessage() {
		raw, err := codec.ParseRawPayload(req.Payload)
		if err != nil {
			return nil, opts, err
		}

		return raw.Data, opts, nil
	}

	switch req.ChainType {
	case request.ChainTypeEthereum:
		tx, err := codec.ParseEvmTransaction(req.Payload)
		if err != nil {
			return nil, opts, err
		}
		if !tx.IsEip1559() {
			opts.ChainID = tx.ChainIDBig()
		}

		payload, err := codec.EvmSigningPayload(tx)
		return payload, opts, err
	case request.ChainTypeSubstrate:
		payload, err := codec.ParseSignerPayload(req.Payload, registries.Lookup(req.Chain))
		if err != nil {
			return nil, opts, err
		}

		encoded, err := payload.Encode()
		return encoded, opts, err
	default:
		return nil, opts, signerrors.NewUnsupportedFeature("chain type %q", req.ChainType)
	}
}

// ledgerRecoveryID turns the v byte of the device into 0 or 1. The device
// only reports the low byte of an EIP-155 v.
func ledgerRecoveryID(v byte, chainID *big.Int) (byte, error) {
	if chainID != nil && chainID.Sign() > 0 {
		offset := new(big.Int).Lsh(chainID, 1)
		offset.Add(offset, big.NewInt(35))
		if id := v - byte(offset.Uint64()); id <= 1 {
			return id, nil
		}
	}

	switch {
	case v <= 1:
		return v, nil
	case v == 27 || v == 28:
		return v - 27, nil
	default:
		return 0, signerrors.NewSerialization(nil, "unexpected device recovery id %d", v)
	}
}
