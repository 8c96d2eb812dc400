package signrequests_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-openapi/swag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-signer/internal/api"
	"github/chapool/go-signer/internal/api/httperrors"
	"github/chapool/go-signer/internal/signing/codec"
	"github/chapool/go-signer/internal/signing/request"
	"github/chapool/go-signer/internal/signing/signerrors"
	"github/chapool/go-signer/internal/test"
	apitypes "github/chapool/go-signer/internal/types"
	"github/chapool/go-signer/internal/wallet/keystore"
)

const (
	testKeyHex  = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	testAddress = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"
	evmPayload  = `{"nonce":"0x5","gasPrice":"0x3b9aca00","gasLimit":"0x5208","to":"0xabcabcabcabcabcabcabcabcabcabcabcabcabca","value":"0xde0b6b3a7640000","data":"0x","chainId":"0x1"}`
)

func submitBody(account *apitypes.AccountProfile) apitypes.PostSignRequestPayload {
	return apitypes.PostSignRequestPayload{
		Chain:         swag.String("ethereum"),
		ChainType:     swag.String(string(request.ChainTypeEthereum)),
		Address:       swag.String(testAddress),
		Payload:       json.RawMessage(evmPayload),
		ExtrinsicType: "transfer.balance",
		Account:       account,
	}
}

func submit(t *testing.T, s *api.Server, account *apitypes.AccountProfile) *apitypes.SignRequest {
	t.Helper()

	res := test.PerformRequest(t, s, "POST", "/api/v1/sign-requests", submitBody(account), nil)
	require.Equal(t, http.StatusAccepted, res.Result().StatusCode, res.Body.String())

	var created apitypes.SignRequest
	test.ParseResponseBody(t, res, &created)
	require.NotNil(t, created.ID)

	return &created
}

func get(t *testing.T, s *api.Server, id string, headers ...http.Header) *apitypes.SignRequest {
	t.Helper()

	var header http.Header
	if len(headers) > 0 {
		header = headers[0]
	}

	res := test.PerformRequest(t, s, "GET", "/api/v1/sign-requests/"+id, nil, header)
	require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

	var req apitypes.SignRequest
	test.ParseResponseBody(t, res, &req)

	return &req
}

func awaitPresentation(t *testing.T, s *api.Server, id string) *apitypes.SignRequest {
	t.Helper()

	var req *apitypes.SignRequest
	require.Eventually(t, func() bool {
		req = get(t, s, id)
		return req.Presentation != nil
	}, 5*time.Second, 10*time.Millisecond)

	return req
}

func waitTerminal(t *testing.T, s *api.Server, id string) *request.TransactionRequest {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := s.Signing.Wait(ctx, id)
	require.NoError(t, err)

	return req
}

func externalSignature(t *testing.T) *string {
	t.Helper()

	tx, err := codec.ParseEvmTransaction(json.RawMessage(evmPayload))
	require.NoError(t, err)

	key, err := crypto.HexToECDSA(testKeyHex)
	require.NoError(t, err)

	hash := tx.SigningHash()
	sig, err := crypto.Sign(hash[:], key)
	require.NoError(t, err)

	return swag.String(hexutil.Encode(sig))
}

func validationKeys(t *testing.T, body []byte) []string {
	t.Helper()

	var httpErr httperrors.HTTPValidationError
	require.NoError(t, json.Unmarshal(body, &httpErr))
	require.NotNil(t, httpErr.Type)
	assert.Equal(t, apitypes.PublicHTTPErrorTypeINVALIDBODY, *httpErr.Type)

	keys := make([]string, 0, len(httpErr.ValidationErrors))
	for _, e := range httpErr.ValidationErrors {
		keys = append(keys, swag.StringValue(e.Key))
	}

	return keys
}

func TestQrSignRequestRoundTrip(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		created := submit(t, s, &apitypes.AccountProfile{IsExternal: true})
		assert.Equal(t, string(request.StatusPending), swag.StringValue(created.Status))
		assert.Equal(t, string(request.BackendExternalQr), created.Backend)
		id := created.ID.String()

		pending := awaitPresentation(t, s, id)
		require.NotNil(t, pending.Presentation.Qr)
		assert.Equal(t, id, swag.StringValue(pending.Presentation.Qr.QrID))
		assert.True(t, pending.Presentation.Qr.IsEthereum)

		res := test.PerformRequest(t, s, "GET", "/api/v1/sign-requests/pending-responses", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var promises apitypes.GetPendingPromisesResponse
		test.ParseResponseBody(t, res, &promises)
		require.Len(t, promises.Data, 1)
		assert.Equal(t, id, promises.Data[0].ID.String())

		res = test.PerformRequest(t, s, "POST", "/api/v1/sign-requests/"+id+"/signature", apitypes.PostSignaturePayload{Signature: externalSignature(t)}, nil)
		require.Equal(t, http.StatusAccepted, res.Result().StatusCode, res.Body.String())

		done := waitTerminal(t, s, id)
		require.Equal(t, request.StatusCompleted, done.Status, "errors: %v", done.Errors)

		final := get(t, s, id)
		assert.Nil(t, final.Presentation)
		assert.Empty(t, final.UserMessage)
		assert.Empty(t, final.Errors)

		var tx types.Transaction
		require.NoError(t, tx.UnmarshalBinary(hexutil.MustDecode(final.SignedTransaction)))
		assert.Equal(t, tx.Hash().Hex(), final.ExtrinsicHash)

		var assembled struct {
			Nonce     string `json:"nonce"`
			GasPrice  string `json:"gasPrice"`
			Signature struct {
				R string `json:"r"`
				S string `json:"s"`
				V string `json:"v"`
			} `json:"signature"`
		}
		require.NoError(t, json.Unmarshal(final.Transaction, &assembled))
		assert.Equal(t, "0x5", assembled.Nonce)
		assert.Equal(t, "0x3b9aca00", assembled.GasPrice)
		assert.NotEmpty(t, assembled.Signature.R)
		assert.NotEmpty(t, assembled.Signature.S)

		// a late signature finds nothing to settle
		res = test.PerformRequest(t, s, "POST", "/api/v1/sign-requests/"+id+"/signature", apitypes.PostSignaturePayload{Signature: externalSignature(t)}, nil)
		assert.Equal(t, http.StatusConflict, res.Result().StatusCode)
	})
}

func TestCancelSignRequest(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		created := submit(t, s, &apitypes.AccountProfile{IsExternal: true})
		id := created.ID.String()
		awaitPresentation(t, s, id)

		res := test.PerformRequest(t, s, "POST", "/api/v1/sign-requests/"+id+"/cancel", apitypes.PostCancelPayload{Reason: "closed the QR modal"}, nil)
		require.Equal(t, http.StatusAccepted, res.Result().StatusCode, res.Body.String())

		done := waitTerminal(t, s, id)
		assert.Equal(t, request.StatusRejected, done.Status)

		final := get(t, s, id)
		assert.Equal(t, "You cancelled this request.", final.UserMessage)
		require.Len(t, final.Errors, 1)
		assert.Equal(t, "closed the QR modal", swag.StringValue(final.Errors[0].Message))
		assert.Equal(t, string(signerrors.KindUserRejected), swag.StringValue(final.Errors[0].Kind))

		german := get(t, s, id, http.Header{"Accept-Language": []string{"de-DE,de;q=0.9"}})
		assert.Equal(t, "Du hast diese Anfrage abgebrochen.", german.UserMessage)

		res = test.PerformRequest(t, s, "POST", "/api/v1/sign-requests/"+id+"/signature", apitypes.PostSignaturePayload{Signature: externalSignature(t)}, nil)
		assert.Equal(t, http.StatusConflict, res.Result().StatusCode)

		res = test.PerformRequest(t, s, "POST", "/api/v1/sign-requests/"+id+"/cancel", apitypes.PostCancelPayload{}, nil)
		assert.Equal(t, http.StatusConflict, res.Result().StatusCode)
	})
}

func TestLocalSignRequest(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		ctx := context.Background()

		pair, err := s.Keyring.Add(ctx, keystore.KeyTypeSecp256k1, hexutil.MustDecode("0x"+testKeyHex), "pw")
		require.NoError(t, err)

		locked := submit(t, s, nil)
		assert.Equal(t, string(request.BackendLocal), locked.Backend)

		failed := waitTerminal(t, s, locked.ID.String())
		assert.Equal(t, request.StatusFailed, failed.Status)
		require.Len(t, failed.Errors, 1)
		assert.Equal(t, string(signerrors.KindLockedAccount), failed.Errors[0].Kind)

		res := test.PerformRequest(t, s, "POST", "/api/v1/keys/"+pair.Address()+"/unlock", apitypes.PostUnlockKeyPayload{Password: swag.String("wrong")}, nil)
		assert.Equal(t, http.StatusForbidden, res.Result().StatusCode)

		res = test.PerformRequest(t, s, "POST", "/api/v1/keys/"+pair.Address()+"/unlock", apitypes.PostUnlockKeyPayload{}, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
		assert.Equal(t, []string{"password"}, validationKeys(t, res.Body.Bytes()))

		res = test.PerformRequest(t, s, "POST", "/api/v1/keys/"+pair.Address()+"/unlock", apitypes.PostUnlockKeyPayload{Password: swag.String("pw")}, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

		var key apitypes.KeyItem
		test.ParseResponseBody(t, res, &key)
		assert.False(t, swag.BoolValue(key.Locked))
		assert.Equal(t, string(keystore.KeyTypeSecp256k1), swag.StringValue(key.KeyType))

		created := submit(t, s, &apitypes.AccountProfile{})
		done := waitTerminal(t, s, created.ID.String())
		assert.Equal(t, request.StatusCompleted, done.Status, "errors: %v", done.Errors)

		res = test.PerformRequest(t, s, "GET", "/api/v1/sign-requests?status=completed", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var list apitypes.GetSignRequestsResponse
		test.ParseResponseBody(t, res, &list)
		require.Len(t, list.Data, 1)
		assert.Equal(t, created.ID.String(), list.Data[0].ID.String())

		res = test.PerformRequest(t, s, "POST", "/api/v1/keys/"+pair.Address()+"/lock", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)
		test.ParseResponseBody(t, res, &key)
		assert.True(t, swag.BoolValue(key.Locked))
	})
}

func TestReadOnlySignRequest(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/sign-requests", submitBody(&apitypes.AccountProfile{IsReadOnly: true}), nil)
		require.Equal(t, http.StatusForbidden, res.Result().StatusCode)

		var httpErr httperrors.HTTPError
		test.ParseResponseBody(t, res, &httpErr)
		require.NotNil(t, httpErr.Type)
		assert.Equal(t, apitypes.PublicHTTPErrorTypeREADONLYACCOUNT, *httpErr.Type)

		req := get(t, s, httpErr.Detail)
		assert.Equal(t, string(request.StatusFailed), swag.StringValue(req.Status))
		assert.Equal(t, "Something went wrong while signing.", req.UserMessage)
	})
}

func TestSignRequestValidation(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		body := submitBody(nil)
		body.Chain = nil
		body.ChainType = swag.String("bitcoin")
		body.Payload = nil

		res := test.PerformRequest(t, s, "POST", "/api/v1/sign-requests", body, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
		assert.ElementsMatch(t, []string{"chain", "chainType", "payload"}, validationKeys(t, res.Body.Bytes()))

		body = submitBody(&apitypes.AccountProfile{Address: "0xabcabcabcabcabcabcabcabcabcabcabcabcabca"})
		res = test.PerformRequest(t, s, "POST", "/api/v1/sign-requests", body, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
		assert.Equal(t, []string{"account.address"}, validationKeys(t, res.Body.Bytes()))

		body = submitBody(&apitypes.AccountProfile{IsHardware: true, AccountOffset: -1})
		res = test.PerformRequest(t, s, "POST", "/api/v1/sign-requests", body, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
		assert.Equal(t, []string{"accountOffset"}, validationKeys(t, res.Body.Bytes()))

		res = test.PerformRequest(t, s, "POST", "/api/v1/sign-requests/unknown/signature", apitypes.PostSignaturePayload{Signature: swag.String("0x1")}, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
		assert.Equal(t, []string{"signature"}, validationKeys(t, res.Body.Bytes()))

		assert.Empty(t, s.Signing.List(context.Background()))
	})
}

func TestSignRequestErrors(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "GET", "/api/v1/sign-requests/unknown", nil, nil)
		assert.Equal(t, http.StatusNotFound, res.Result().StatusCode)

		res = test.PerformRequest(t, s, "POST", "/api/v1/sign-requests/unknown/cancel", apitypes.PostCancelPayload{}, nil)
		assert.Equal(t, http.StatusNotFound, res.Result().StatusCode)

		res = test.PerformRequest(t, s, "POST", "/api/v1/sign-requests/unknown/signature", apitypes.PostSignaturePayload{}, nil)
		assert.Equal(t, http.StatusBadRequest, res.Result().StatusCode)

		res = test.PerformRequest(t, s, "POST", "/api/v1/sign-requests", "{not json", nil)
		assert.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
	})
}
