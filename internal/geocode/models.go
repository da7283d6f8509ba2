// Package geocode provides address search and typeahead suggestions.
package geocode

import (
	"context"
	"errors"

	"github.com/safewalk/safewalk/pkg/polyline"
)

// Common geocoding errors.
var (
	// ErrProviderUnavailable indicates the geocoding provider cannot be reached.
	ErrProviderUnavailable = errors.New("geocoding provider unavailable")

	// ErrQueryTooShort indicates the query is below the minimum length.
	ErrQueryTooShort = errors.New("query too short")
)

const (
	// MinQueryLength is the minimum query length that triggers a search.
	MinQueryLength = 3

	// DefaultLimit is the default number of suggestions returned.
	DefaultLimit = 5
)

// Suggestion is a single geocoding result.
type Suggestion struct {
	// Address is the freeform display address.
	Address string `json:"address"`

	// Position is the geographic position of the result.
	Position polyline.Coordinate `json:"position"`

	// Country is the country the result is in.
	Country string `json:"country,omitempty"`
}

// Provider performs address searches against an external geocoding service.
type Provider interface {
	// Search returns up to limit suggestions for the query.
	Search(ctx context.Context, query string, limit int) ([]Suggestion, error)

	// Name returns the provider's identifier.
	Name() string
}

// Error wraps provider-specific errors with context.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return e.Provider + ": " + e.Code + ": " + e.Message
	}
	return e.Provider + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
