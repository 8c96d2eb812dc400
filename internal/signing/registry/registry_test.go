package registry_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-signer/internal/signing/registry"
	"github/chapool/go-signer/internal/signing/request"
	"github/chapool/go-signer/internal/signing/signerrors"
)

func newRegistry() (*registry.Registry, *time2.MockClock) {
	clock := time2.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return registry.New(clock), clock
}

func submission(address string) request.Submission {
	return request.Submission{
		Chain:         "ethereum",
		ChainType:     request.ChainTypeEthereum,
		Address:       address,
		Payload:       json.RawMessage(`{"nonce":"0x5"}`),
		ExtrinsicType: "transfer.balance",
	}
}

func TestCreateAndGet(t *testing.T) {
	reg, _ := newRegistry()

	req := reg.Create(submission("0xabc"), request.BackendLocal)
	require.NotEmpty(t, req.ID)
	assert.Equal(t, request.StatusPending, req.Status)
	assert.Equal(t, request.BackendLocal, req.Backend)
	assert.Empty(t, req.Errors)

	got, err := reg.Get(req.ID)
	require.NoError(t, err)
	assert.Equal(t, req, got)

	_, err = reg.Get("missing")
	assert.True(t, errors.Is(err, registry.ErrNotFound))
}

func TestGetReturnsCopy(t *testing.T) {
	reg, _ := newRegistry()

	req := reg.Create(submission("0xabc"), request.BackendLocal)
	req.Status = request.StatusCompleted
	req.Errors = append(req.Errors, request.Error{Kind: "x"})

	got, err := reg.Get(req.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusPending, got.Status)
	assert.Empty(t, got.Errors)
}

func TestIdempotentSettlement(t *testing.T) {
	reg, clock := newRegistry()

	req := reg.Create(submission("0xabc"), request.BackendExternalQr)

	clock.Advance(time.Second)
	require.True(t, reg.Complete(req.ID, []byte{0x01, 0x02}, "0xhash", json.RawMessage(`{"nonce":"0x5"}`)))

	settled, err := reg.Get(req.ID)
	require.NoError(t, err)

	clock.Advance(time.Second)
	assert.False(t, reg.Complete(req.ID, []byte{0x03}, "0xother", nil))
	assert.False(t, reg.Fail(req.ID, errors.New("late failure")))
	assert.False(t, reg.Reject(req.ID, signerrors.NewUserRejected("late cancel")))

	after, err := reg.Get(req.ID)
	require.NoError(t, err)
	assert.Equal(t, settled, after)
	assert.Equal(t, request.StatusCompleted, after.Status)
	assert.Equal(t, "0xhash", after.ExtrinsicHash)
	assert.JSONEq(t, `{"nonce":"0x5"}`, string(after.Transaction))
	assert.Equal(t, req.CreatedAt.Add(time.Second), after.UpdatedAt)
}

func TestSettleRoutesByKind(t *testing.T) {
	reg, _ := newRegistry()

	rejected := reg.Create(submission("0xabc"), request.BackendExternalQr)
	failed := reg.Create(submission("0xdef"), request.BackendLocal)

	require.True(t, reg.Settle(rejected.ID, signerrors.NewUserRejected("user closed the popup")))
	require.True(t, reg.Settle(failed.ID, signerrors.NewLockedAccount("0xdef")))

	got, err := reg.Get(rejected.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusRejected, got.Status)
	require.Len(t, got.Errors, 1)
	assert.Equal(t, string(signerrors.KindUserRejected), got.Errors[0].Kind)
	assert.Equal(t, "user closed the popup", got.Errors[0].Message)

	got, err = reg.Get(failed.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusFailed, got.Status)
	require.Len(t, got.Errors, 1)
	assert.Equal(t, string(signerrors.KindLockedAccount), got.Errors[0].Kind)
}

func TestUnknownIDIsNoop(t *testing.T) {
	reg, _ := newRegistry()

	assert.False(t, reg.Complete("missing", nil, "", nil))
	assert.False(t, reg.Fail("missing", errors.New("x")))
	assert.False(t, reg.Reject("missing", errors.New("x")))
	assert.Empty(t, reg.List())
}

func TestWait(t *testing.T) {
	reg, _ := newRegistry()

	req := reg.Create(submission("0xabc"), request.BackendLocal)

	go func() {
		reg.Fail(req.ID, signerrors.NewSerialization(nil, "bad payload"))
	}()

	got, err := reg.Wait(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusFailed, got.Status)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pending := reg.Create(submission("0xdef"), request.BackendLocal)
	_, err = reg.Wait(ctx, pending.ID)
	require.ErrorIs(t, err, context.Canceled)

	_, err = reg.Wait(context.Background(), "missing")
	assert.True(t, errors.Is(err, registry.ErrNotFound))
}

func TestConcurrentRequestsSettleIndependently(t *testing.T) {
	reg, _ := newRegistry()

	a := reg.Create(submission("0xaaa"), request.BackendExternalQr)
	b := reg.Create(submission("0xbbb"), request.BackendHardware)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		reg.Complete(a.ID, []byte{0x01}, "0x01", nil)
	}()
	go func() {
		defer wg.Done()
		reg.Reject(a.ID, signerrors.NewUserRejected(""))
	}()
	wg.Wait()

	gotB, err := reg.Get(b.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusPending, gotB.Status)

	gotA, err := reg.Get(a.ID)
	require.NoError(t, err)
	assert.True(t, gotA.Status.Terminal())

	list := reg.List()
	require.Len(t, list, 2)
}
