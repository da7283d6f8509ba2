// Package routing provides route computation against the external provider.
package routing

import (
	"context"
	"errors"
	"time"

	"github.com/safewalk/safewalk/pkg/polyline"
)

// Sentinel errors for routing operations.
var (
	// ErrProviderUnavailable indicates the routing provider is down or the circuit breaker is open.
	ErrProviderUnavailable = errors.New("routing provider unavailable")
	// ErrNoRouteFound indicates no valid route exists between the given points.
	ErrNoRouteFound = errors.New("no route found between the given points")
	// ErrRateLimitExceeded indicates the API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidCoordinates indicates the provided coordinates are invalid or out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Provider defines the interface for routing providers.
type Provider interface {
	// GetRoute computes a route between two points for a travel mode.
	GetRoute(ctx context.Context, req RouteRequest) (*Directions, error)
	// Name returns the provider identifier for logging and health tracking.
	Name() string
}

// TravelMode is the user-facing travel mode.
type TravelMode string

// Travel modes.
const (
	ModeWalking TravelMode = "walking"
	ModeBike    TravelMode = "bike"
	ModeCar     TravelMode = "car"
	ModeTransit TravelMode = "transit"
)

// Valid reports whether m is a known travel mode.
func (m TravelMode) Valid() bool {
	switch m {
	case ModeWalking, ModeBike, ModeCar, ModeTransit:
		return true
	}
	return false
}

// ProviderMode maps the internal mode to the provider's travel-mode
// vocabulary. Unknown modes fall back to car, matching the provider default.
func (m TravelMode) ProviderMode() string {
	switch m {
	case ModeWalking:
		return "pedestrian"
	case ModeBike:
		return "bicycle"
	case ModeTransit:
		return "bus"
	default:
		return "car"
	}
}

// RouteRequest is the request for computing a route.
type RouteRequest struct {
	Origin      polyline.Coordinate
	Destination polyline.Coordinate
	Mode        TravelMode
}

// Directions is the provider's answer for a single route.
type Directions struct {
	// Points is the ordered polyline from origin to destination.
	Points []polyline.Coordinate

	// DistanceMeters is the total route length in meters.
	DistanceMeters int

	// DurationSeconds is the total travel time in seconds.
	DurationSeconds int

	// Provider identifies which provider produced the route.
	Provider string

	// FetchedAt is when the route was computed.
	FetchedAt time.Time
}

// Error provides detailed error information from the routing provider.
type Error struct {
	Provider string // Provider that generated the error
	Code     string // Error code from the provider
	Message  string // Human-readable error message
	Err      error  // Underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient and the request can be retried.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable) || errors.Is(e.Err, ErrRateLimitExceeded)
}
