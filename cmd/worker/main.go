// Package main provides the entrypoint for the SafeWalk sync worker.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/safewalk/safewalk/internal/backend"
	"github.com/safewalk/safewalk/internal/config"
	"github.com/safewalk/safewalk/internal/incident"
	"github.com/safewalk/safewalk/internal/provider/resilience"
	"github.com/safewalk/safewalk/internal/store"
	"github.com/safewalk/safewalk/internal/telemetry"
	"github.com/safewalk/safewalk/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "safewalk-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting SafeWalk sync worker")

	cfg := config.Load()
	if cfg.BackendBaseURL == "" {
		log.Fatal().Msg("SAFEWALK_BACKEND_URL is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	st, err := store.NewSQLiteStore(cfg.StorePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open offline store")
	}
	defer st.Close()

	registry := resilience.GlobalRegistry
	online := func() bool { return registry.Online(backend.ProviderName) }

	backendClient := backend.NewClient(backend.ClientConfig{
		BaseURL:  cfg.BackendBaseURL,
		Registry: registry,
		Logger:   log,
	})

	incidents := incident.NewRepository(incident.RepositoryConfig{
		Backend: backendClient,
		Store:   st,
		Online:  online,
		Logger:  log,
	})

	syncJob := worker.NewSyncJob(worker.SyncJobConfig{
		Syncer:  incidents,
		Online:  online,
		Metrics: telemetry.NewMetrics(telemetry.Meter(serviceName)),
		Logger:  log,
	})

	// Periodic sync loop picks up the queue even without Pub/Sub.
	go syncJob.Start(ctx)

	// Pub/Sub kicks a sync on demand (reconnect events, manual drain).
	if cfg.PubSubProjectID != "" {
		handler, handlerErr := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.PubSubProjectID,
			SubscriptionName: cfg.SyncSubscription,
			SyncJob:          syncJob,
			Online:           online,
			Logger:           log,
		})
		if handlerErr != nil {
			log.Fatal().Err(handlerErr).Msg("failed to create pubsub handler")
		}
		defer handler.Close()

		go func() {
			if receiveErr := handler.Start(ctx); receiveErr != nil {
				log.Error().Err(receiveErr).Msg("pubsub receive stopped")
				cancel()
			}
		}()
		log.Info().
			Str("subscription", cfg.SyncSubscription).
			Msg("pubsub sync trigger enabled")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("shutting down worker")
	case <-ctx.Done():
	}
	cancel()

	log.Info().Msg("worker stopped")
}
