package signrequests

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-signer/internal/api"
	"github/chapool/go-signer/internal/api/httperrors"
	"github/chapool/go-signer/internal/types"
	"github/chapool/go-signer/internal/util"
)

func PostCancelSignRequestRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Signing.POST("/:id/cancel", postCancelSignRequestHandler(s))
}

func postCancelSignRequestHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		id := c.Param(paramID)

		var body types.PostCancelPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		if _, err := getSignRequest(ctx, s, id); err != nil {
			return err
		}

		if !s.Signing.Cancel(ctx, id, body.Reason) {
			return httperrors.ErrConflictNotPending
		}

		req, err := getSignRequest(ctx, s, id)
		if err != nil {
			return err
		}

		return util.ValidateAndReturn(c, http.StatusAccepted, toSignRequest(c, s, req))
	}
}
