package util

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	CTXKeyRequestID contextKey = "request_id"
)

// LogFromContext returns the logger attached to ctx, falling back to the global logger
func LogFromContext(ctx context.Context) *zerolog.Logger {
	l := log.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		if zerolog.DefaultContextLogger != nil {
			return zerolog.DefaultContextLogger
		}
		l = &log.Logger
	}

	return l
}

// LogFromEchoContext returns the request scoped logger of an echo context
func LogFromEchoContext(c echo.Context) *zerolog.Logger {
	return LogFromContext(c.Request().Context())
}

// WithLogger attaches logger to ctx
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// RequestIDFromContext returns the id stored by WithRequestID, if any
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(CTXKeyRequestID).(string)
	return id, ok && id != ""
}

// WithRequestID stores id in ctx and tags the context logger with it
func WithRequestID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, CTXKeyRequestID, id)
	logger := LogFromContext(ctx).With().Str("http_request_id", id).Logger()

	return WithLogger(ctx, logger)
}
