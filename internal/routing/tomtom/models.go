package tomtom

// calculateRouteResponse represents the TomTom calculateRoute API response.
type calculateRouteResponse struct {
	Routes []tomtomRoute `json:"routes"`
}

// tomtomRoute represents a single route in the response.
type tomtomRoute struct {
	Summary routeSummary `json:"summary"`
	Legs    []routeLeg   `json:"legs"`
}

// routeSummary contains totals for a route.
type routeSummary struct {
	LengthInMeters      int `json:"lengthInMeters"`
	TravelTimeInSeconds int `json:"travelTimeInSeconds"`
}

// routeLeg carries the ordered points of one leg. Point-to-point routes have
// exactly one leg.
type routeLeg struct {
	Points []legPoint `json:"points"`
}

// legPoint is a single polyline point.
type legPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// errorResponse represents a TomTom error payload.
type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
	DetailedError struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"detailedError"`
}
