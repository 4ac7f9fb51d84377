package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	"github.com/chatwire/chatwire/internal/v1/config"
	"github.com/chatwire/chatwire/internal/v1/health"
	"github.com/chatwire/chatwire/internal/v1/logging"
	"github.com/chatwire/chatwire/internal/v1/namegen"
	"github.com/chatwire/chatwire/internal/v1/names"
	"github.com/chatwire/chatwire/internal/v1/rooms"
	"github.com/chatwire/chatwire/internal/v1/transport"
)

func main() {
	// Load .env file for local development.
	// Try multiple paths to handle different ways of running the app
	envPaths := []string{".env", "../../../.env", "../../.env"}
	var envLoaded bool

	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			slog.Info("Loaded environment from", "path", path)
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		slog.Info("No .env file found, relying on environment variables")
	}

	cfg, err := config.Load("chat-server", os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}

	if err := logging.Initialize(cfg.LogLevel, cfg.Dev); err != nil {
		slog.Error("Logger initialization failed", "error", err)
		os.Exit(1)
	}
	logger := logging.GetLogger()
	defer logger.Sync()

	// Cancelled on SIGINT/SIGTERM; everything downstream hangs off it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := transport.NewServer(rooms.NewDirectory(), names.NewRegistry(), namegen.New())
	if err := srv.Listen(cfg.Addr()); err != nil {
		logging.Error(ctx, "failed to bind listener", zap.String("addr", cfg.Addr()), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logging.Info(ctx, "chat server listening", zap.String("addr", srv.Addr().String()))

	// --- Ops plane (optional) ---
	// Health probes and Prometheus metrics on a separate HTTP listener.
	var ops *http.Server
	if cfg.OpsEnabled() {
		ops = &http.Server{
			Addr:    cfg.OpsAddr,
			Handler: health.Router(health.NewHandler(srv)),
		}
		go func() {
			logging.Info(ctx, "ops server listening", zap.String("addr", cfg.OpsAddr))
			if err := ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error(ctx, "ops server failed", zap.Error(err))
				// Take the whole process through its normal shutdown path.
				_ = syscall.Kill(os.Getpid(), syscall.SIGTERM)
			}
		}()
	}

	// Serve blocks until the signal context is cancelled (clean drain,
	// returns nil) or the accept loop dies.
	serveErr := srv.Serve(ctx)

	if ops != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ops.Shutdown(shutdownCtx); err != nil {
			logging.Error(shutdownCtx, "ops server forced to shutdown", zap.Error(err))
		}
	}

	if serveErr != nil {
		logging.Error(context.Background(), "accept loop failed", zap.Error(serveErr))
		logger.Sync()
		os.Exit(1)
	}
	logging.Info(context.Background(), "server exiting")
}
