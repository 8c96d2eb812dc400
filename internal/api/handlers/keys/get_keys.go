package keys

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-signer/internal/api"
	"github/chapool/go-signer/internal/types"
	"github/chapool/go-signer/internal/util"
)

func GetKeysRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Keys.GET("", getKeysHandler(s))
}

func getKeysHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		addresses := s.Keyring.Addresses()

		response := &types.GetKeysResponse{
			Data: make([]*types.KeyItem, 0, len(addresses)),
		}
		for _, address := range addresses {
			pair, err := s.Keyring.Pair(address)
			if err != nil {
				// removed concurrently
				util.LogFromEchoContext(c).Debug().Err(err).Str("address", address).Msg("Skipping key pair")
				continue
			}

			response.Data = append(response.Data, toKeyItem(pair))
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}
