// Package api provides the HTTP API for SafeWalk.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/safewalk/safewalk/internal/api/handler"
	"github.com/safewalk/safewalk/internal/api/middleware"
	"github.com/safewalk/safewalk/internal/auth"
	"github.com/safewalk/safewalk/internal/geocode"
	"github.com/safewalk/safewalk/internal/incident"
	"github.com/safewalk/safewalk/internal/navigation"
	"github.com/safewalk/safewalk/internal/provider/resilience"
	"github.com/safewalk/safewalk/internal/safety"
	"github.com/safewalk/safewalk/internal/settings"
	"github.com/safewalk/safewalk/internal/sos"
	"github.com/safewalk/safewalk/internal/store"
	"github.com/safewalk/safewalk/internal/telemetry"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version         string
	BuildTime       string
	Logger          zerolog.Logger
	ServiceName     string
	Metrics         *middleware.Metrics
	AppMetrics      *telemetry.Metrics
	Registry        *resilience.Registry
	AuthService     *auth.Service
	GeocodeService  *geocode.Service
	Engine          *safety.Engine
	SavedRoutes     *safety.SavedRoutes
	Incidents       *incident.Repository
	Monitor         *navigation.Monitor
	Dispatcher      *sos.Dispatcher
	SettingsService *settings.Service
	Store           store.Store
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "safewalk-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry)
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	geocodeHandler := handler.NewGeocodeHandler(cfg.GeocodeService, cfg.Store)
	routeHandler := handler.NewRouteHandler(cfg.Engine, cfg.SavedRoutes, cfg.GeocodeService, cfg.Store, cfg.AppMetrics)
	incidentHandler := handler.NewIncidentHandler(cfg.Incidents, cfg.AppMetrics)
	navigationHandler := handler.NewNavigationHandler(cfg.Monitor, cfg.Engine, cfg.SavedRoutes)
	sosHandler := handler.NewSOSHandler(cfg.Dispatcher, cfg.Monitor, cfg.AppMetrics)
	settingsHandler := handler.NewSettingsHandler(cfg.SettingsService)

	// Create auth middleware
	authMiddleware := middleware.Auth(cfg.AuthService)

	// Create rate limit middleware for different endpoint categories
	authRateLimit := middleware.RateLimitByIP(middleware.AuthRateLimit)           // 10 req/min
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Auth endpoints (public) - strict rate limiting
		r.Route("/auth", func(r chi.Router) {
			r.Use(authRateLimit) // 10 requests per minute per IP
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
		})

		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Geocoding endpoints (public) - typeahead fires on every
		// keystroke, so standard rate limiting only
		r.Route("/geocode", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/suggest", geocodeHandler.Suggest)
		})
		r.With(standardRateLimit).Get("/search/history", geocodeHandler.SearchHistory)

		// Me endpoint (authenticated)
		r.With(authMiddleware).
			With(middleware.RateLimitByUser(middleware.StandardRateLimit)).
			Get("/me", authHandler.Me)

		// Routes endpoint - expensive compute, strict rate limiting
		r.With(authMiddleware).With(expensiveRateLimit).Post("/routes:compute", routeHandler.Compute)

		// Saved routes (authenticated) - user-based rate limiting
		r.Route("/routes/saved", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit)) // 100 req/min per user
			r.Get("/", routeHandler.ListSaved)
			r.Post("/", routeHandler.SaveRoute)
			r.Delete("/{routeId}", routeHandler.DeleteSaved)
		})

		// Incident endpoints (authenticated)
		r.Route("/incidents", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit))
			r.Get("/", incidentHandler.List)
			r.Post("/", incidentHandler.Report)
		})
		r.With(authMiddleware).With(standardRateLimit).Post("/incidents:sync", incidentHandler.Sync)

		// Navigation session (authenticated)
		r.Route("/navigation", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit))
			r.Get("/", navigationHandler.Get)
			r.Post("/start", navigationHandler.Start)
			r.Post("/position", navigationHandler.Position)
			r.Post("/acknowledge", navigationHandler.Acknowledge)
			r.Post("/simulate-stop", navigationHandler.SimulateStop)
			r.Post("/end", navigationHandler.End)
		})

		// SOS endpoints (authenticated) - never rate limited beyond the
		// standard class; a throttled SOS would be worse than abuse
		r.Route("/sos", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", sosHandler.Trigger)
			r.Get("/", sosHandler.Active)
			r.Delete("/", sosHandler.Dismiss)
		})

		// Settings (authenticated)
		r.Route("/settings", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit))
			r.Get("/", settingsHandler.Get)
			r.Put("/", settingsHandler.Put)
		})
	})

	return r
}
