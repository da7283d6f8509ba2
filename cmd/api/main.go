// Package main provides the entrypoint for the SafeWalk API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/safewalk/safewalk/internal/api"
	"github.com/safewalk/safewalk/internal/api/middleware"
	"github.com/safewalk/safewalk/internal/auth"
	"github.com/safewalk/safewalk/internal/backend"
	"github.com/safewalk/safewalk/internal/config"
	"github.com/safewalk/safewalk/internal/geocode"
	geotomtom "github.com/safewalk/safewalk/internal/geocode/tomtom"
	"github.com/safewalk/safewalk/internal/incident"
	"github.com/safewalk/safewalk/internal/navigation"
	"github.com/safewalk/safewalk/internal/provider/resilience"
	"github.com/safewalk/safewalk/internal/routing"
	"github.com/safewalk/safewalk/internal/routing/tomtom"
	"github.com/safewalk/safewalk/internal/safety"
	"github.com/safewalk/safewalk/internal/settings"
	"github.com/safewalk/safewalk/internal/sos"
	"github.com/safewalk/safewalk/internal/store"
	"github.com/safewalk/safewalk/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "safewalk-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting SafeWalk API")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
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
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.TelemetryEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	appMetrics := telemetry.NewMetrics(telemetry.Meter(serviceName))

	// Open the offline store
	st, err := store.NewSQLiteStore(cfg.StorePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open offline store")
	}
	defer st.Close()
	log.Info().Str("path", cfg.StorePath).Msg("offline store opened")

	// Provider registry shared by all outbound clients
	registry := resilience.GlobalRegistry

	// Backend client
	backendClient := backend.NewClient(backend.ClientConfig{
		BaseURL:  cfg.BackendBaseURL,
		Registry: registry,
		Logger:   log,
	})

	// Auth
	jwtSigningKey := cfg.JWTSigningKey
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}
	authService := auth.NewService(auth.ServiceConfig{
		Backend: backendClient,
		Store:   st,
		JWT:     auth.NewJWTService(auth.JWTConfig{SigningKey: jwtSigningKey}),
		Logger:  log,
	})
	log.Info().Msg("auth service initialized")

	// Geocoding
	geocodeService := geocode.NewService(geocode.ServiceConfig{
		Provider: geotomtom.NewClient(geotomtom.ClientConfig{
			APIKey:   cfg.TomTomAPIKey,
			BaseURL:  cfg.TomTomBaseURL,
			Registry: registry,
			Logger:   log,
		}),
		Logger:         log,
		MinQueryLength: cfg.MinSuggestQueryLength,
	})

	// Routing
	routingService := routing.NewService(routing.ServiceConfig{
		Provider: tomtom.NewClient(tomtom.ClientConfig{
			APIKey:   cfg.TomTomAPIKey,
			BaseURL:  cfg.TomTomBaseURL,
			Registry: registry,
			Logger:   log,
		}),
		Logger: log,
	})

	// Incidents, offline-first against the backend
	incidents := incident.NewRepository(incident.RepositoryConfig{
		Backend: backendClient,
		Store:   st,
		Online:  func() bool { return registry.Online(backend.ProviderName) },
		Logger:  log,
	})

	// Safety scoring engine
	engine := safety.NewEngine(safety.EngineConfig{
		Planner:   routingService,
		Incidents: incidents,
		Logger:    log,
	})

	// SOS dispatch, with Pub/Sub fanout when configured
	sosConfig := sos.Config{
		Sender: backendClient,
		Logger: log,
	}
	if cfg.PubSubProjectID != "" {
		publisher, pubErr := sos.NewPubSubPublisher(ctx, sos.PubSubConfig{
			ProjectID: cfg.PubSubProjectID,
			Topic:     cfg.SOSTopic,
			Logger:    log,
		})
		if pubErr != nil {
			log.Fatal().Err(pubErr).Msg("failed to create SOS publisher")
		}
		defer publisher.Close()
		sosConfig.Events = publisher
		log.Info().Str("topic", cfg.SOSTopic).Msg("SOS Pub/Sub fanout enabled")
	}
	dispatcher := sos.NewDispatcher(sosConfig)

	// Stillness monitor
	monitor := navigation.NewMonitor(navigation.Config{
		Dispatcher: dispatcher,
		Metrics:    appMetrics,
		Logger:     log,
	})

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:         Version,
		BuildTime:       BuildTime,
		Logger:          log,
		ServiceName:     serviceName,
		Metrics:         httpMetrics,
		AppMetrics:      appMetrics,
		Registry:        registry,
		AuthService:     authService,
		GeocodeService:  geocodeService,
		Engine:          engine,
		SavedRoutes:     safety.NewSavedRoutes(st),
		Incidents:       incidents,
		Monitor:         monitor,
		Dispatcher:      dispatcher,
		SettingsService: settings.NewService(st, log),
		Store:           st,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
