package geocode

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the geocoding service.
type ServiceConfig struct {
	// Provider is the geocoding provider (required).
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// MinQueryLength overrides the minimum query length (optional).
	MinQueryLength int

	// Limit is the maximum number of suggestions returned (optional).
	Limit int
}

// Service provides typeahead address suggestions. Lookups are soft-failing:
// short queries and provider errors both produce an empty result set so the
// caller's input flow is never interrupted.
type Service struct {
	provider  Provider
	logger    zerolog.Logger
	minLength int
	limit     int
}

// NewService creates a new geocoding service.
func NewService(cfg ServiceConfig) *Service {
	minLength := cfg.MinQueryLength
	if minLength <= 0 {
		minLength = MinQueryLength
	}

	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	return &Service{
		provider:  cfg.Provider,
		logger:    cfg.Logger.With().Str("component", "geocode").Logger(),
		minLength: minLength,
		limit:     limit,
	}
}

// Suggest returns typeahead suggestions for the query. Queries shorter than
// the minimum length return an empty slice without contacting the provider.
// Provider failures are logged and also return an empty slice.
func (s *Service) Suggest(ctx context.Context, query string) []Suggestion {
	query = strings.TrimSpace(query)
	if len(query) < s.minLength {
		return nil
	}

	suggestions, err := s.provider.Search(ctx, query, s.limit)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("query", query).
			Msg("geocoding search failed")
		return nil
	}

	return suggestions
}

// ResolveOne resolves a query to its best-matching suggestion, or nil when
// nothing matches or the provider is unavailable.
func (s *Service) ResolveOne(ctx context.Context, query string) *Suggestion {
	suggestions := s.Suggest(ctx, query)
	if len(suggestions) == 0 {
		return nil
	}
	return &suggestions[0]
}

// ProviderName returns the name of the configured provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}
