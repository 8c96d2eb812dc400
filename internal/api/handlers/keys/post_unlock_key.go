package keys

import (
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/go-signer/internal/api"
	"github/chapool/go-signer/internal/api/httperrors"
	"github/chapool/go-signer/internal/types"
	"github/chapool/go-signer/internal/util"
	"github/chapool/go-signer/internal/wallet/keyring"
	"github/chapool/go-signer/internal/wallet/keystore"
)

const paramAddress = "address"

var (
	errNotFoundKey     = httperrors.NewHTTPError(http.StatusNotFound, types.PublicHTTPErrorTypeNOTFOUND, "Key not found.")
	errInvalidPassword = httperrors.NewHTTPError(http.StatusForbidden, types.PublicHTTPErrorTypeINVALIDPASSWORD, "Invalid password.")
)

func PostUnlockKeyRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Keys.POST("/:address/unlock", postUnlockKeyHandler(s))
}

func postUnlockKeyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)
		address := c.Param(paramAddress)

		var body types.PostUnlockKeyPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		if err := s.Keyring.Unlock(ctx, address, swag.StringValue(body.Password)); err != nil {
			log.Debug().Err(err).Str("address", address).Msg("Failed to unlock key pair")

			switch {
			case errors.Is(err, keyring.ErrUnknownAccount):
				return errNotFoundKey
			case errors.Is(err, keystore.ErrInvalidPass):
				return errInvalidPassword
			default:
				return err
			}
		}

		return keyItem(c, s, address)
	}
}

func keyItem(c echo.Context, s *api.Server, address string) error {
	pair, err := s.Keyring.Pair(address)
	if err != nil {
		return errNotFoundKey
	}

	return util.ValidateAndReturn(c, http.StatusOK, toKeyItem(pair))
}

func toKeyItem(pair *keyring.Pair) *types.KeyItem {
	return &types.KeyItem{
		Address: swag.String(pair.Address()),
		KeyType: swag.String(string(pair.KeyType())),
		Locked:  swag.Bool(pair.IsLocked()),
	}
}
