package signrequests

import (
	"net/http"

	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github/chapool/go-signer/internal/api"
	"github/chapool/go-signer/internal/types"
	"github/chapool/go-signer/internal/util"
)

func GetPendingResponsesRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Signing.GET("/pending-responses", getPendingResponsesHandler(s))
}

func getPendingResponsesHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		promises := s.Signing.PendingPromises(ctx)

		response := &types.GetPendingPromisesResponse{
			Data: make([]*types.PendingPromise, 0, len(promises)),
		}
		for _, p := range promises {
			id := strfmt.UUID(p.ID)
			createdAt := strfmt.DateTime(p.CreatedAt)
			response.Data = append(response.Data, &types.PendingPromise{
				ID:        &id,
				Status:    swag.String(string(p.Status)),
				CreatedAt: &createdAt,
			})
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}
