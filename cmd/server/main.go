package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/credgate/internal/config"
	"github.com/iudanet/credgate/internal/crypto"
	"github.com/iudanet/credgate/internal/logging"
	"github.com/iudanet/credgate/internal/server"
	"github.com/iudanet/credgate/internal/signature"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	// Show version and exit if requested
	if cfg.ShowVersion {
		printVersion()
		os.Exit(0)
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Без публичного ключа gateway сервер не стартует
	publicKey, err := signature.LoadPublicKey(cfg.Gateway.PublicKeyPath)
	if err != nil {
		return fmt.Errorf("failed to load gateway public key: %w", err)
	}

	verifier, err := signature.NewVerifier(signature.Config{
		PublicKey: publicKey,
		Algorithm: cfg.Gateway.Algorithm,
	})
	if err != nil {
		return fmt.Errorf("failed to create signature verifier: %w", err)
	}

	store, err := server.OpenStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	logger.Info("credgate starting",
		slog.String("version", Version),
		slog.String("storage", cfg.Storage.Driver),
		slog.String("algorithm", verifier.Algorithm()),
	)

	hasher := crypto.NewPasswordHasher(cfg.Password.BcryptCost)
	router := server.NewRouter(logger, store, hasher, verifier, Version)

	return server.New(cfg.Server, router, logger).Run(ctx)
}

func printVersion() {
	fmt.Printf("credgate server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
