package signrequests

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-signer/internal/api"
	"github/chapool/go-signer/internal/signing/request"
	"github/chapool/go-signer/internal/types"
	"github/chapool/go-signer/internal/util"
)

func GetSignRequestsRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Signing.GET("", getSignRequestsHandler(s))
}

// getSignRequestsHandler lists sign requests, optionally filtered by ?status=
func getSignRequestsHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		status := request.Status(c.QueryParam("status"))

		requests := s.Signing.List(ctx)

		response := &types.GetSignRequestsResponse{
			Data: make([]*types.SignRequest, 0, len(requests)),
		}
		for _, req := range requests {
			if status != "" && req.Status != status {
				continue
			}
			response.Data = append(response.Data, toSignRequest(c, s, req))
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}
