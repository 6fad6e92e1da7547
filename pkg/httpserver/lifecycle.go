package httpserver

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JailtonJunior94/pubsub-go/pkg/pubsub"
)

// Start runs the server and blocks until it fails, ctx is cancelled, or a
// termination signal arrives, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info(ctx, "starting operational http server",
		pubsub.String("address", s.config.Address),
		pubsub.String("service", s.config.ServiceName),
		pubsub.String("version", s.config.ServiceVersion),
		pubsub.String("environment", s.config.Environment),
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-serverErr:
		s.logger.Error(ctx, "server failed", pubsub.Err(err))
		return err
	case <-ctx.Done():
		s.logger.Info(ctx, "context cancelled, initiating shutdown")
	case sig := <-sigChan:
		s.logger.Info(ctx, "signal received, initiating shutdown",
			pubsub.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	return s.Shutdown(shutdownCtx)
}

// Shutdown gracefully stops the server. Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "initiating graceful shutdown")
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error(ctx, "error shutting down http server", pubsub.Err(err))
			shutdownErr = err
			return
		}
		s.logger.Info(ctx, "graceful shutdown completed")
	})
	return shutdownErr
}
