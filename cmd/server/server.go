package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-signer/internal/api"
	"github/chapool/go-signer/internal/api/router"
	"github/chapool/go-signer/internal/config"
	"github/chapool/go-signer/internal/util/command"
)

const (
	probeFlag  string = "probe"
	unlockFlag string = "unlock"
)

type Flags struct {
	Probe  bool
	Unlock []string
}

func New() *cobra.Command {
	var flags Flags

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Starts the server",
		Long: `Starts the signing HTTP server

Keys named with --unlock are unlocked at startup with the password from
SIGNER_UNLOCK_PASSWORD, or a terminal prompt when it is unset.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.Probe, probeFlag, "p", false, "Run the readiness checks before serving.")
	cmd.Flags().StringSliceVarP(&flags.Unlock, unlockFlag, "u", nil, "Addresses to unlock at startup.")

	return cmd
}

func runServer(ctx context.Context, flags Flags) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := config.DefaultServiceConfigFromEnv()
	command.ConfigureLogger(cfg.Logger)

	s, err := api.InitNewServer(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize server")
		return errors.Wrap(err, "failed to initialize server")
	}

	if err := router.Init(s); err != nil {
		log.Error().Err(err).Msg("Failed to initialize router")
		shutdown(ctx, s)
		return errors.Wrap(err, "failed to initialize router")
	}

	if err := initializeSigner(ctx, s, flags); err != nil {
		log.Error().Err(err).Msg("Failed to initialize signer")
		shutdown(ctx, s)
		return err
	}

	errc := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
			return
		}
		errc <- nil
	}()

	log.Info().Str("listen_address", cfg.Echo.ListenAddress).Msg("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	var serveErr error
	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case serveErr = <-errc:
		if serveErr != nil {
			log.Error().Err(serveErr).Msg("Server stopped unexpectedly")
		}
	}

	shutdown(ctx, s)

	return serveErr
}

func shutdown(ctx context.Context, s *api.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.Config.Signing.ShutdownTimeout)
	defer cancel()

	if errs := s.Shutdown(shutdownCtx); len(errs) > 0 {
		log.Error().Errs("errors", errs).Msg("Failed to gracefully shut down server")
		return
	}

	log.Info().Msg("Server shut down")
}
