package handlers

import (
	"github.com/labstack/echo/v4"
	"github/chapool/go-signer/internal/api"
	"github/chapool/go-signer/internal/api/handlers/common"
	"github/chapool/go-signer/internal/api/handlers/keys"
	"github/chapool/go-signer/internal/api/handlers/signrequests"
)

func AttachAllRoutes(s *api.Server) {
	// attach our routes
	s.Router.Routes = []*echo.Route{
		common.GetMetricsRoute(s),
		common.GetReadyRoute(s),
		keys.GetKeysRoute(s),
		keys.PostLockKeyRoute(s),
		keys.PostUnlockKeyRoute(s),
		signrequests.GetPendingResponsesRoute(s),
		signrequests.GetSignRequestRoute(s),
		signrequests.GetSignRequestsRoute(s),
		signrequests.PostCancelSignRequestRoute(s),
		signrequests.PostSignRequestRoute(s),
		signrequests.PostSignatureRoute(s),
	}
}
