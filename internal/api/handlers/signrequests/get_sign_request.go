package signrequests

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-signer/internal/api"
	"github/chapool/go-signer/internal/util"
)

func GetSignRequestRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Signing.GET("/:id", getSignRequestHandler(s))
}

func getSignRequestHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		req, err := getSignRequest(ctx, s, c.Param(paramID))
		if err != nil {
			return err
		}

		return util.ValidateAndReturn(c, http.StatusOK, toSignRequest(c, s, req))
	}
}
