// Package config loads SafeWalk service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the SafeWalk services.
type Config struct {
	// Env is the deployment environment (development, staging, production).
	Env string

	// Port is the HTTP listen port.
	Port string

	// TomTomAPIKey is the geocoding/routing provider API key (required).
	TomTomAPIKey string

	// TomTomBaseURL overrides the provider base URL (tests, proxies).
	TomTomBaseURL string

	// BackendBaseURL is the SafeWalk backend base URL (required).
	BackendBaseURL string

	// JWTSigningKey signs local session access tokens.
	JWTSigningKey string

	// StorePath is the SQLite file backing the offline store.
	StorePath string

	// OTLPEndpoint is the OpenTelemetry collector endpoint.
	OTLPEndpoint string

	// TelemetryEnabled enables OTLP export.
	TelemetryEnabled bool

	// PubSubProjectID is the GCP project for SOS fanout and sync triggers.
	// Pub/Sub integration is disabled when empty.
	PubSubProjectID string

	// SOSTopic is the Pub/Sub topic SOS events are published to.
	SOSTopic string

	// SyncSubscription is the Pub/Sub subscription the sync worker consumes.
	SyncSubscription string

	// MinSuggestQueryLength is the minimum geocode query length.
	MinSuggestQueryLength int
}

// Load reads configuration from the environment. A .env file is loaded first
// if present, for local development; real deployments supply the environment
// directly.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:                   getEnv("APP_ENV", "development"),
		Port:                  getEnv("APP_PORT", "8080"),
		TomTomAPIKey:          os.Getenv("TOMTOM_API_KEY"),
		TomTomBaseURL:         getEnv("TOMTOM_BASE_URL", "https://api.tomtom.com"),
		BackendBaseURL:        os.Getenv("SAFEWALK_BACKEND_URL"),
		JWTSigningKey:         os.Getenv("JWT_SIGNING_KEY"),
		StorePath:             getEnv("OFFLINE_STORE_PATH", "safewalk.db"),
		OTLPEndpoint:          getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TelemetryEnabled:      getEnvBool("OTEL_ENABLED", false),
		PubSubProjectID:       os.Getenv("PUBSUB_PROJECT_ID"),
		SOSTopic:              getEnv("SOS_TOPIC", "sos-events"),
		SyncSubscription:      getEnv("SYNC_SUBSCRIPTION", "incident-sync"),
		MinSuggestQueryLength: getEnvInt("MIN_SUGGEST_QUERY_LENGTH", 3),
	}
}

// Validate checks that required external configuration is present.
// The provider API key and backend base URL must be externally supplied;
// they are never embedded.
func (c Config) Validate() error {
	if c.TomTomAPIKey == "" {
		return fmt.Errorf("TOMTOM_API_KEY is required")
	}
	if c.BackendBaseURL == "" {
		return fmt.Errorf("SAFEWALK_BACKEND_URL is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
