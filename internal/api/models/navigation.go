package models

import "github.com/safewalk/safewalk/internal/navigation"

// StartNavigationRequest selects the route to navigate.
type StartNavigationRequest struct {
	RouteID string `json:"routeId"`
}

// PositionUpdateRequest is a live position sample.
type PositionUpdateRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NavigationResponse is the observable session state.
type NavigationResponse struct {
	Session navigation.Snapshot `json:"session"`
}
