package router

import (
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"github/chapool/go-signer/internal/api"
	"github/chapool/go-signer/internal/api/handlers"
	"github/chapool/go-signer/internal/api/httperrors"
	"github/chapool/go-signer/internal/api/middleware"
)

func Init(s *api.Server) error {
	s.Echo = echo.New()

	s.Echo.Debug = s.Config.Echo.Debug
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.HTTPErrorHandler = httperrors.HTTPErrorHandler

	// ---
	// General middleware
	if s.Config.Echo.EnableTrailingSlashMiddleware {
		s.Echo.Pre(echoMiddleware.RemoveTrailingSlash())
	} else {
		log.Warn().Msg("Disabling trailing slash middleware due to environment config")
	}

	if s.Config.Echo.EnableRecoverMiddleware {
		s.Echo.Use(echoMiddleware.Recover())
	} else {
		log.Warn().Msg("Disabling recover middleware due to environment config")
	}

	if s.Config.Echo.EnableSecureMiddleware {
		s.Echo.Use(echoMiddleware.SecureWithConfig(echoMiddleware.SecureConfig{
			Skipper:            echoMiddleware.DefaultSecureConfig.Skipper,
			XSSProtection:      echoMiddleware.DefaultSecureConfig.XSSProtection,
			ContentTypeNosniff: contentTypeNosniff(s.Config.Echo.SecureMiddlewareContentNoSniff),
			XFrameOptions:      echoMiddleware.DefaultSecureConfig.XFrameOptions,
			HSTSPreloadEnabled: echoMiddleware.DefaultSecureConfig.HSTSPreloadEnabled,
		}))
	} else {
		log.Warn().Msg("Disabling secure middleware due to environment config")
	}

	if s.Config.Echo.EnableRequestIDMiddleware {
		s.Echo.Use(echoMiddleware.RequestID())
	} else {
		log.Warn().Msg("Disabling request ID middleware due to environment config")
	}

	if s.Config.Echo.EnableLoggerMiddleware {
		s.Echo.Use(middleware.Logger(middleware.LoggerConfig{
			Level: s.Config.Logger.RequestLevel,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/-/ready" || c.Path() == "/metrics"
			},
		}))
	} else {
		log.Warn().Msg("Disabling logger middleware due to environment config")
	}

	if s.Config.Echo.EnableCORSMiddleware {
		s.Echo.Use(echoMiddleware.CORS())
	} else {
		log.Warn().Msg("Disabling CORS middleware due to environment config")
	}

	if s.Config.Echo.EnableBodyLimitMiddleware {
		s.Echo.Use(echoMiddleware.BodyLimit(s.Config.Echo.BodyLimit))
	} else {
		log.Warn().Msg("Disabling body limit middleware due to environment config")
	}

	s.Router = &api.Router{
		Routes:       nil, // will be populated by handlers.AttachAllRoutes(s)
		Root:         s.Echo.Group(""),
		Management:   s.Echo.Group("/-"),
		APIV1Signing: s.Echo.Group("/api/v1/sign-requests"),
		APIV1Keys:    s.Echo.Group("/api/v1/keys"),
	}

	// ---
	// Finally attach our handlers
	handlers.AttachAllRoutes(s)

	return nil
}

func contentTypeNosniff(enabled bool) string {
	if enabled {
		return echoMiddleware.DefaultSecureConfig.ContentTypeNosniff
	}

	return ""
}
