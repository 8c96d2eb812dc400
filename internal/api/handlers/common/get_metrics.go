package common

import (
	"github.com/labstack/echo/v4"
	"github/chapool/go-signer/internal/api"
)

func GetMetricsRoute(s *api.Server) *echo.Route {
	return s.Router.Root.GET("/metrics", getMetricsHandler(s))
}

func getMetricsHandler(s *api.Server) echo.HandlerFunc {
	handler := echo.WrapHandler(s.Metrics.Handler())

	return func(c echo.Context) error {
		if !s.Config.Metrics.Enabled {
			return echo.ErrNotFound
		}

		return handler(c)
	}
}
