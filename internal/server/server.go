// Package server wires storage, handlers and middleware into the credgate HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/iudanet/credgate/internal/config"
	"github.com/iudanet/credgate/internal/server/handlers"
	"github.com/iudanet/credgate/internal/server/middleware"
	"github.com/iudanet/credgate/internal/server/storage"
	"github.com/iudanet/credgate/internal/server/storage/boltdb"
	"github.com/iudanet/credgate/internal/server/storage/postgres"
	"github.com/iudanet/credgate/internal/server/storage/sqlite"
)

// OpenStorage открывает хранилище пользователей по настройкам драйвера
func OpenStorage(ctx context.Context, cfg config.StorageConfig) (storage.UserStorage, error) {
	var (
		store storage.UserStorage
		err   error
	)

	switch cfg.Driver {
	case config.DriverSQLite:
		store, err = sqlite.New(ctx, cfg.DSN)
	case config.DriverPostgres:
		store, err = postgres.New(ctx, cfg.DSN)
	case config.DriverBolt:
		store, err = boltdb.New(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Driver, err)
	}

	return store, nil
}

// NewRouter собирает маршруты и цепочку middleware:
// recovery -> request id -> logging -> gateway signature -> handler
func NewRouter(
	logger *slog.Logger,
	userStorage storage.UserStorage,
	hasher handlers.PasswordHasher,
	verifier middleware.SignatureVerifier,
	version string,
) http.Handler {
	authHandler := handlers.NewAuthHandler(logger, userStorage, hasher)
	healthHandler := handlers.NewHealthHandler(logger, userStorage, version)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", authHandler.Register)
	mux.HandleFunc("POST /login", authHandler.Login)
	mux.HandleFunc("GET /user/{email}", authHandler.GetUser)
	mux.HandleFunc("POST /reset-password", authHandler.ResetPassword)
	mux.HandleFunc("GET /health", healthHandler.Health)

	var handler http.Handler = mux
	handler = middleware.GatewaySignature(logger, verifier)(handler)
	handler = middleware.LoggingWithSkip(logger, []string{"/health"})(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.RecoveryMiddleware(logger)(handler)

	return handler
}

// Server is the credgate HTTP listener
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        config.ServerConfig
}

// New creates a Server serving handler with the configured timeouts
func New(cfg config.ServerConfig, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Address,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
		},
		logger: logger,
		cfg:    cfg,
	}
}

// Run listens on the configured address until ctx is cancelled,
// then shuts down gracefully within ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an already opened listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server started", slog.String("address", ln.Addr().String()))
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server", slog.Duration("timeout", s.cfg.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	s.logger.Info("server stopped")
	return nil
}
