package models

import "github.com/safewalk/safewalk/internal/safety"

// ComputeRoutesRequest describes a route search. Origin and destination
// may be given as coordinates or as free-text queries to resolve.
type ComputeRoutesRequest struct {
	Origin           *Point `json:"origin,omitempty"`
	Destination      *Point `json:"destination,omitempty"`
	OriginQuery      string `json:"originQuery,omitempty"`
	DestinationQuery string `json:"destinationQuery,omitempty"`
	Mode             string `json:"mode,omitempty"`
}

// ComputeRoutesResponse is the ranked scored route set.
type ComputeRoutesResponse struct {
	Routes []safety.Route `json:"routes"`

	// Fallback is set when the whole set is the pre-scored demo data.
	Fallback bool `json:"fallback,omitempty"`
}

// SaveRouteRequest saves a previously computed route by ID, or a full
// route payload (for example one loaded from another device).
type SaveRouteRequest struct {
	RouteID string        `json:"routeId,omitempty"`
	Route   *safety.Route `json:"route,omitempty"`
}

// SavedRoutesResponse is the saved route list.
type SavedRoutesResponse struct {
	Routes []safety.Route `json:"routes"`
}
