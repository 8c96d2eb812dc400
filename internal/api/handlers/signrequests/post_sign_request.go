package signrequests

import (
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/go-signer/internal/api"
	"github/chapool/go-signer/internal/api/httperrors"
	"github/chapool/go-signer/internal/signing"
	"github/chapool/go-signer/internal/signing/request"
	"github/chapool/go-signer/internal/types"
	"github/chapool/go-signer/internal/util"
)

func PostSignRequestRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Signing.POST("", postSignRequestHandler(s))
}

func postSignRequestHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostSignRequestPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		address := swag.StringValue(body.Address)

		profile := request.AccountProfile{Address: address}
		if body.Account != nil {
			if body.Account.Address != "" && body.Account.Address != address {
				return httperrors.NewHTTPValidationError(
					http.StatusBadRequest,
					types.PublicHTTPErrorTypeINVALIDBODY,
					"Invalid account",
					[]*types.HTTPValidationErrorDetail{
						{
							Key:   swag.String("account.address"),
							In:    swag.String("body"),
							Error: swag.String("must match address"),
						},
					},
				)
			}

			profile = toAccountProfile(address, body.Account)
		}

		sub := request.Submission{
			Chain:         swag.StringValue(body.Chain),
			ChainType:     request.ChainType(swag.StringValue(body.ChainType)),
			Address:       address,
			Payload:       body.Payload,
			ExtrinsicType: body.ExtrinsicType,
		}

		req, err := s.Signing.Submit(ctx, sub, profile)
		if err != nil {
			log.Debug().Err(err).Msg("Failed to submit sign request")

			switch {
			case errors.Is(err, signing.ErrInvalidSubmission):
				return httperrors.NewHTTPErrorWithDetail(http.StatusBadRequest, types.PublicHTTPErrorTypeINVALIDBODY, "Invalid sign request.", err.Error())
			case errors.Is(err, signing.ErrClosed):
				return httperrors.NewHTTPError(http.StatusServiceUnavailable, types.PublicHTTPErrorTypeGeneric, "Signing service is shutting down.")
			default:
				return err
			}
		}

		if req.Backend == request.BackendReadOnly {
			return httperrors.NewHTTPErrorWithDetail(http.StatusForbidden, types.PublicHTTPErrorTypeREADONLYACCOUNT, "Account is read-only and cannot sign.", req.ID)
		}

		return util.ValidateAndReturn(c, http.StatusAccepted, toSignRequest(c, s, req))
	}
}

func toAccountProfile(address string, account *types.AccountProfile) request.AccountProfile {
	return request.AccountProfile{
		Address:       address,
		IsReadOnly:    account.IsReadOnly,
		IsHardware:    account.IsHardware,
		HardwareType:  account.HardwareType,
		IsExternal:    account.IsExternal,
		IsMultisig:    account.IsMultisig,
		IsProxied:     account.IsProxied,
		IsInjected:    account.IsInjected,
		AccountOffset: uint32(account.AccountOffset), //nolint:gosec // bounded by the schema
		AddressOffset: uint32(account.AddressOffset), //nolint:gosec // bounded by the schema
	}
}
