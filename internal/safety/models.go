// Package safety defines scored routes and the scoring engine that
// builds and ranks them.
package safety

import (
	"fmt"

	"github.com/safewalk/safewalk/pkg/polyline"
)

// Display colors derived from the safety score.
const (
	ColorSafe    = "#10B981"
	ColorCaution = "#F59E0B"
)

// SafeScoreThreshold is the score at or above which a route is presented
// as safe rather than cautionary.
const SafeScoreThreshold = 80

// Route is a scored, immutable candidate path between two points.
// Re-scoring produces a new Route with a new identifier.
type Route struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Start       string                `json:"start"`
	End         string                `json:"end"`
	Distance    string                `json:"distance"`
	Duration    string                `json:"duration"`
	SafetyScore int                   `json:"safetyScore"`
	Lighting    int                   `json:"lighting"`
	Traffic     int                   `json:"traffic"`
	Crowd       int                   `json:"crowd"`
	Incidents   int                   `json:"incidents"`
	Color       string                `json:"color"`
	Description string                `json:"description"`
	Coordinates []polyline.Coordinate `json:"coordinates"`

	// Fallback marks a pre-scored demo route returned when no provider
	// route was available. The UI must present these as placeholders.
	Fallback bool `json:"fallback,omitempty"`
}

// Navigable reports whether the route can be used for turn-by-turn
// navigation. Routes without coordinates cannot be monitored.
func (r Route) Navigable() bool {
	return len(r.Coordinates) > 0
}

// FormatDistance renders a length in meters as kilometers with one
// decimal, e.g. 1500 -> "1.5 km".
func FormatDistance(meters int) string {
	return fmt.Sprintf("%.1f km", float64(meters)/1000)
}

// FormatDuration renders a duration in seconds as whole minutes,
// rounded up, e.g. 600 -> "10 min".
func FormatDuration(seconds int) string {
	minutes := (seconds + 59) / 60
	return fmt.Sprintf("%d min", minutes)
}
