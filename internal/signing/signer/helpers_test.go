package signer_test

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/stretchr/testify/require"
	"github/chapool/go-signer/internal/signing/codec"
	"github/chapool/go-signer/internal/signing/request"
)

const (
	testKeyHex    = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	legacyPayload = `{
		"nonce": "0x5",
		"gasPrice": "0x3b9aca00",
		"gasLimit": "0x5208",
		"to": "0xabcabcabcabcabcabcabcabcabcabcabcabcabca",
		"value": "0xde0b6b3a7640000",
		"data": "0x",
		"chainId": "0x1"
	}`
)

type presenter struct {
	mu       sync.Mutex
	ledger   chan request.LedgerPresentation
	qr       chan request.QrPresentation
	internal chan request.InternalPresentation
	err      error
}

func newPresenter() *presenter {
	return &presenter{
		ledger:   make(chan request.LedgerPresentation, 8),
		qr:       make(chan request.QrPresentation, 8),
		internal: make(chan request.InternalPresentation, 8),
	}
}

func (p *presenter) failure() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *presenter) PresentLedger(_ context.Context, presentation request.LedgerPresentation) error {
	if err := p.failure(); err != nil {
		return err
	}
	p.ledger <- presentation
	return nil
}

func (p *presenter) PresentQr(_ context.Context, presentation request.QrPresentation) error {
	if err := p.failure(); err != nil {
		return err
	}
	p.qr <- presentation
	return nil
}

func (p *presenter) PresentInternal(_ context.Context, presentation request.InternalPresentation) error {
	if err := p.failure(); err != nil {
		return err
	}
	p.internal <- presentation
	return nil
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for presentation")
	}

	var zero T
	return zero
}

type outcome struct {
	result *request.SignerResult
	err    error
}

func signAsync(ctx context.Context, sign func(ctx context.Context) (*request.SignerResult, error)) <-chan outcome {
	ch := make(chan outcome, 1)
	go func() {
		res, err := sign(ctx)
		ch <- outcome{result: res, err: err}
	}()

	return ch
}

func wait(t *testing.T, ch <-chan outcome) outcome {
	t.Helper()
	return receive(t, ch)
}

func newClock() time2.Clock {
	return time2.NewMockClock(time.Now())
}

func evmRequest(id string, address string) *request.TransactionRequest {
	return &request.TransactionRequest{
		ID:        id,
		Chain:     "ethereum",
		ChainType: request.ChainTypeEthereum,
		Address:   address,
		Payload:   json.RawMessage(legacyPayload),
		Status:    request.StatusPending,
	}
}

func substrateRequest(t *testing.T, id string, pub ed25519.PublicKey, method string) *request.TransactionRequest {
	t.Helper()

	address, err := codec.EncodeSS58(pub, 42)
	require.NoError(t, err)

	payload := map[string]interface{}{
		"address":            address,
		"blockHash":          "0x" + strings.Repeat("22", 32),
		"blockNumber":        "0x10",
		"era":                "0x00",
		"genesisHash":        "0x" + strings.Repeat("11", 32),
		"method":             method,
		"nonce":              "0x2",
		"signedExtensions":   []string{"CheckSpecVersion", "CheckTxVersion", "CheckGenesis", "CheckMortality", "CheckNonce", "CheckWeight", "ChargeTransactionPayment"},
		"specVersion":        "0x1",
		"tip":                "0x0",
		"transactionVersion": "0x2",
		"version":            4,
	}

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	return &request.TransactionRequest{
		ID:        id,
		Chain:     "westend",
		ChainType: request.ChainTypeSubstrate,
		Address:   address,
		Payload:   raw,
		Status:    request.StatusPending,
	}
}
