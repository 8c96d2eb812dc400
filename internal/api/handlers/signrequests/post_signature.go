package signrequests

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github/chapool/go-signer/internal/api"
	"github/chapool/go-signer/internal/api/httperrors"
	"github/chapool/go-signer/internal/signing/request"
	"github/chapool/go-signer/internal/types"
	"github/chapool/go-signer/internal/util"
)

func PostSignatureRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Signing.POST("/:id/signature", postSignatureHandler(s))
}

// postSignatureHandler hands the signature scanned from an external device
// or produced by the internal flow to the waiting sign request
func postSignatureHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		id := c.Param(paramID)

		var body types.PostSignaturePayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		signature, err := hexutil.Decode(swag.StringValue(body.Signature))
		if err != nil {
			return httperrors.NewHTTPValidationError(
				http.StatusBadRequest,
				types.PublicHTTPErrorTypeINVALIDBODY,
				"Invalid signature",
				[]*types.HTTPValidationErrorDetail{
					{
						Key:   swag.String("signature"),
						In:    swag.String("body"),
						Error: swag.String(err.Error()),
					},
				},
			)
		}

		if _, err := getSignRequest(ctx, s, id); err != nil {
			return err
		}

		if !s.Signing.Respond(ctx, id, &request.SignerResult{Signature: signature}) {
			return httperrors.ErrConflictNotPending
		}

		req, err := getSignRequest(ctx, s, id)
		if err != nil {
			return err
		}

		return util.ValidateAndReturn(c, http.StatusAccepted, toSignRequest(c, s, req))
	}
}
