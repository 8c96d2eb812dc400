package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dropbox/godropbox/time2"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github/chapool/go-signer/internal/config"
	"github/chapool/go-signer/internal/device/ledger"
	"github/chapool/go-signer/internal/i18n"
	"github/chapool/go-signer/internal/metrics"
	"github/chapool/go-signer/internal/signing"
	"github/chapool/go-signer/internal/signing/broadcast"
	"github/chapool/go-signer/internal/signing/codec"
	"github/chapool/go-signer/internal/util"
	"github/chapool/go-signer/internal/wallet/keyring"
	"github/chapool/go-signer/internal/wallet/keystore"
)

type Router struct {
	Routes       []*echo.Route
	Root         *echo.Group
	Management   *echo.Group
	APIV1Signing *echo.Group
	APIV1Keys    *echo.Group
}

// Server is a central struct keeping all the dependencies.
// It is initialized with wire, which handles making the new instances of the components
// in the right order. To add a new component, 3 steps are required:
// - declaring it in this struct
// - adding a provider function in providers.go
// - adding the provider's function name to the arguments of wire.Build() in wire.go
//
// Components labeled as `wire:"-"` will be skipped and have to be initialized after the InitNewServer* call.
// For more information about wire refer to https://pkg.go.dev/github.com/google/wire
type Server struct {
	// skip wire:
	// -> initialized with router.Init(s) function
	Echo   *echo.Echo `wire:"-"`
	Router *Router    `wire:"-"`

	Config      config.Server
	Clock       time2.Clock
	Metrics     *metrics.Metrics
	I18n        *i18n.Service
	Keystore    keystore.Service
	Keyring     *keyring.Keyring
	Registries  codec.Registries
	Ledger      *ledger.Manager
	Broadcaster *broadcast.Router
	Inbox       *signing.Inbox
	Signing     signing.Service
}

// newServerWithComponents is used by wire to initialize the server components.
// Components not listed here won't be handled by wire and should be initialized separately.
// Components which shouldn't be handled must be labeled `wire:"-"` in Server struct.
func newServerWithComponents(
	cfg config.Server,
	clock time2.Clock,
	m *metrics.Metrics,
	i18n *i18n.Service,
	ks keystore.Service,
	kr *keyring.Keyring,
	registries codec.Registries,
	ledgerManager *ledger.Manager,
	broadcaster *broadcast.Router,
	inbox *signing.Inbox,
	signingService signing.Service,
) *Server {
	return &Server{
		Config:      cfg,
		Clock:       clock,
		Metrics:     m,
		I18n:        i18n,
		Keystore:    ks,
		Keyring:     kr,
		Registries:  registries,
		Ledger:      ledgerManager,
		Broadcaster: broadcaster,
		Inbox:       inbox,
		Signing:     signingService,
	}
}

func NewServer(config config.Server) *Server {
	s := &Server{
		Config: config,
	}

	return s
}

func (s *Server) Ready() bool {
	if err := util.IsStructInitialized(s); err != nil {
		log.Debug().Err(err).Msg("Server is not fully initialized")
		return false
	}

	return true
}

func (s *Server) Start() error {
	if !s.Ready() {
		return errors.New("server is not ready")
	}

	if err := s.Echo.Start(s.Config.Echo.ListenAddress); err != nil {
		return fmt.Errorf("failed to start echo server: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) []error {
	log.Warn().Msg("Shutting down server")

	var errs []error

	if s.Echo != nil {
		log.Debug().Msg("Shutting down echo server")

		if err := s.Echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Failed to shutdown echo server")
			errs = append(errs, err)
		}
	}

	if s.Signing != nil {
		log.Debug().Msg("Settling pending sign requests")

		if err := s.Signing.Close(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to close signing service")
			errs = append(errs, err)
		}
	}

	if s.Broadcaster != nil {
		s.Broadcaster.Close()
	}

	if s.Keyring != nil {
		log.Debug().Msg("Locking keyring")
		s.Keyring.LockAll()
	}

	return errs
}
