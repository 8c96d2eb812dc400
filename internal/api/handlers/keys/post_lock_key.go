package keys

import (
	"github.com/labstack/echo/v4"
	"github/chapool/go-signer/internal/api"
)

func PostLockKeyRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Keys.POST("/:address/lock", postLockKeyHandler(s))
}

func postLockKeyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		address := c.Param(paramAddress)

		if err := s.Keyring.Lock(address); err != nil {
			return errNotFoundKey
		}

		return keyItem(c, s, address)
	}
}
