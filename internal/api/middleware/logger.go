package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github/chapool/go-signer/internal/util"
)

type LoggerConfig struct {
	Level zerolog.Level
	// Skipper defines a function to skip middleware
	Skipper func(c echo.Context) bool
}

// Logger attaches a request scoped zerolog logger to the request context and
// logs every handled request at the configured level
func Logger(cfg LoggerConfig) echo.MiddlewareFunc {
	if cfg.Skipper == nil {
		cfg.Skipper = func(echo.Context) bool { return false }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper(c) {
				return next(c)
			}

			req := c.Request()
			res := c.Response()

			ctx := util.WithLogger(req.Context(), log.With().Str("component", "http").Logger())

			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = res.Header().Get(echo.HeaderXRequestID)
			}
			if id != "" {
				ctx = util.WithRequestID(ctx, id)
			}

			c.SetRequest(req.WithContext(ctx))

			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			util.LogFromContext(ctx).WithLevel(cfg.Level).
				Str("method", req.Method).
				Str("path", c.Path()).
				Str("uri", req.RequestURI).
				Int("status", res.Status).
				Int64("bytes_out", res.Size).
				Dur("duration", time.Since(start)).
				Msg("Handled request")

			return nil
		}
	}
}
