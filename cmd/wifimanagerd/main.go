// Package main implements the WiFi connection manager daemon entry point:
// it wires the Manager Core to a simulated driver, a bbolt-backed
// credential store, the audit logger, the telemetry hub and the local
// HTTP control surface, then runs until a termination signal arrives.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aluiziotomazelli/wifi-manager/internal/api"
	"github.com/aluiziotomazelli/wifi-manager/internal/audit"
	"github.com/aluiziotomazelli/wifi-manager/internal/auth"
	"github.com/aluiziotomazelli/wifi-manager/internal/config"
	"github.com/aluiziotomazelli/wifi-manager/internal/driver/simdriver"
	"github.com/aluiziotomazelli/wifi-manager/internal/manager"
	"github.com/aluiziotomazelli/wifi-manager/internal/store"
	"github.com/aluiziotomazelli/wifi-manager/internal/store/boltstore"
	"github.com/aluiziotomazelli/wifi-manager/internal/telemetry"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "path to an optional YAML config overlay")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("service", "wifimanagerd").Logger()

	logger.Info().Str("version", version).Msg("starting wifi manager daemon")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	auditLogger, err := audit.NewLogger(cfg.AuditLogDir, cfg.AuditMaxSizeMB, cfg.AuditMaxBackups, cfg.AuditMaxAgeDays)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize audit logger")
	}
	defer auditLogger.Close()

	hub := telemetry.NewHub(cfg.EventBufferSize, cfg.EventRetention, cfg.HeartbeatPeriod)
	defer hub.Stop()

	kv, err := boltstore.Open(cfg.StorePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open credential store")
	}
	defer kv.Close()

	drv := simdriver.New(true)
	credStore := store.New(drv, kv)

	mgr := manager.New(cfg, drv, credStore, logger,
		manager.WithTelemetry(hub),
		manager.WithAudit(auditLogger))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := mgr.Init(ctx); err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("failed to initialize manager")
	}
	cancel()
	logger.Info().Msg("manager core initialized")

	verifier, err := auth.NewVerifier(auth.VerifierConfig{
		Algorithm:    cfg.AuthAlgorithm,
		PublicKeyPEM: cfg.AuthPublicKeyPEM,
		SecretKey:    cfg.AuthSecretKey,
		JWKSURL:      cfg.AuthJWKSURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build auth verifier")
	}
	authMiddleware := auth.NewMiddlewareWithVerifier(verifier)

	server := api.NewServer(mgr, hub, auditLogger, authMiddleware,
		10*time.Second, 10*time.Second, 120*time.Second)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(cfg.HTTPAddr); err != nil {
			serverErr <- fmt.Errorf("http server failed: %w", err)
		}
	}()

	logger.Info().Str("addr", cfg.HTTPAddr).Msg("control surface listening")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-serverErr:
		logger.Error().Err(err).Msg("control surface failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error stopping control surface")
	}

	if err := mgr.Deinit(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during manager deinit")
	}

	logger.Info().Msg("wifi manager daemon shutdown complete")
}
