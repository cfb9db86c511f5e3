package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/auth"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/bootstrap"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/config"
	apphttp "github.com/WailSalutem-Health-Care/care-record-service/internal/http"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/logger"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format, "care-record-service")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	if err := run(cfg, zapLogger); err != nil {
		zapLogger.Fatal("service stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	logger.Info("care-record-service starting",
		zap.String("mode", cfg.Mode.String()),
		zap.String("store", cfg.Store.Backend),
		zap.String("timezone", cfg.Location.String()),
	)

	tp, err := telemetry.InitProvider(ctx, telemetry.LoadConfig(cfg.Mode.String()), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown telemetry", zap.Error(err))
		}
	}()

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		logger.Warn("continuing without custom metrics", zap.Error(err))
	}

	perms, err := auth.LoadPermissions(cfg.Auth.PermissionsFile)
	if err != nil {
		return err
	}

	store, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	verifier, err := bootstrap.Verifier(ctx, cfg, logger)
	if err != nil {
		return err
	}

	publisher := bootstrap.Publisher(cfg.RabbitMQ, logger)
	defer publisher.Close()

	router := apphttp.SetupRouter(apphttp.Options{
		Mode:           cfg.Mode,
		Location:       cfg.Location,
		Store:          store,
		Publisher:      publisher,
		Verifier:       verifier,
		Permissions:    perms,
		Metrics:        metrics,
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown http server: %w", err)
	}
	logger.Info("HTTP server stopped")
	return nil
}
