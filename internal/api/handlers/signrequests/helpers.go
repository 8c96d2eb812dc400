package signrequests

import (
	"context"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/go-signer/internal/api"
	"github/chapool/go-signer/internal/api/httperrors"
	"github/chapool/go-signer/internal/signing"
	"github/chapool/go-signer/internal/signing/registry"
	"github/chapool/go-signer/internal/signing/request"
	"github/chapool/go-signer/internal/signing/signerrors"
	"github/chapool/go-signer/internal/types"
)

const paramID = "id"

func getSignRequest(ctx context.Context, s *api.Server, id string) (*request.TransactionRequest, error) {
	req, err := s.Signing.Get(ctx, id)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, httperrors.ErrNotFoundSignRequest
		}
		return nil, err
	}

	return req, nil
}

// toSignRequest converts req into its public shape. Pending requests carry
// their presentation, settled ones a message in the caller's language.
func toSignRequest(c echo.Context, s *api.Server, req *request.TransactionRequest) *types.SignRequest {
	id := strfmt.UUID(req.ID)
	createdAt := strfmt.DateTime(req.CreatedAt)
	updatedAt := strfmt.DateTime(req.UpdatedAt)

	res := &types.SignRequest{
		ID:            &id,
		Chain:         swag.String(req.Chain),
		ChainType:     swag.String(string(req.ChainType)),
		Address:       swag.String(req.Address),
		Payload:       req.Payload,
		Status:        swag.String(string(req.Status)),
		Backend:       string(req.Backend),
		ExtrinsicHash: req.ExtrinsicHash,
		ExtrinsicType: req.ExtrinsicType,
		Transaction:   req.Transaction,
		CreatedAt:     &createdAt,
		UpdatedAt:     &updatedAt,
		Errors:        make([]*types.SignRequestError, 0, len(req.Errors)),
	}

	if len(req.SignedTransaction) > 0 {
		res.SignedTransaction = hexutil.Encode(req.SignedTransaction)
	}

	for _, e := range req.Errors {
		res.Errors = append(res.Errors, &types.SignRequestError{
			Kind:    swag.String(e.Kind),
			Message: swag.String(e.Message),
		})
	}

	var messageID string
	switch req.Status {
	case request.StatusRejected:
		messageID = signerrors.MessageUserRejected
	case request.StatusFailed:
		messageID = signerrors.MessageFailed
	case request.StatusPending:
		if presentation, ok := s.Inbox.Get(req.ID); ok {
			res.Presentation = toPresentation(presentation)
		}
	case request.StatusCompleted:
	}

	if messageID != "" {
		lang := s.I18n.ParseAcceptLanguage(c.Request().Header.Get("Accept-Language"))
		res.UserMessage = s.I18n.Translate(messageID, lang)
	}

	return res
}

func toPresentation(p signing.Presentation) *types.SignRequestPresentation {
	res := &types.SignRequestPresentation{}

	if p.Ledger != nil {
		res.Ledger = &types.LedgerPresentation{
			LedgerID:      swag.String(p.Ledger.LedgerID),
			LedgerPayload: swag.String(p.Ledger.LedgerPayload),
		}
	}

	if p.Qr != nil {
		res.Qr = &types.QrPresentation{
			QrID:       swag.String(p.Qr.QrID),
			QrAddress:  swag.String(p.Qr.QrAddress),
			QrPayload:  swag.String(p.Qr.QrPayload),
			IsEthereum: p.Qr.IsEthereum,
			IsQrHashed: p.Qr.IsQrHashed,
		}
	}

	if p.Internal != nil {
		res.Internal = &types.InternalPresentation{
			ID:            p.Internal.ID,
			Address:       p.Internal.Address,
			Chain:         p.Internal.Chain,
			ChainType:     string(p.Internal.ChainType),
			ExtrinsicType: p.Internal.ExtrinsicType,
			Payload:       p.Internal.Payload,
		}
	}

	return res
}
