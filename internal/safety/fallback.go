package safety

import (
	"github.com/google/uuid"

	"github.com/safewalk/safewalk/pkg/polyline"
)

// FallbackRoutes returns the fixed, pre-scored demo route set used when
// no provider route is available. These are placeholders so the caller
// is never left with zero options; each is flagged as a fallback.
func FallbackRoutes(originLabel, destinationLabel string) []Route {
	if originLabel == "" {
		originLabel = "Current Location"
	}
	if destinationLabel == "" {
		destinationLabel = "Destination"
	}

	return []Route{
		{
			ID:          "rt_" + uuid.NewString(),
			Name:        "Safest Route",
			Start:       originLabel,
			End:         destinationLabel,
			Distance:    "1.8 km",
			Duration:    "23 min",
			SafetyScore: 92,
			Lighting:    90,
			Traffic:     50,
			Crowd:       50,
			Incidents:   0,
			Color:       ColorSafe,
			Description: "Well-lit main streets with steady foot traffic",
			Coordinates: []polyline.Coordinate{
				{Lat: 40.7580, Lon: -73.9855},
				{Lat: 40.7565, Lon: -73.9840},
				{Lat: 40.7549, Lon: -73.9840},
				{Lat: 40.7532, Lon: -73.9822},
				{Lat: 40.7516, Lon: -73.9810},
			},
			Fallback: true,
		},
		{
			ID:          "rt_" + uuid.NewString(),
			Name:        "Fastest Route",
			Start:       originLabel,
			End:         destinationLabel,
			Distance:    "1.2 km",
			Duration:    "15 min",
			SafetyScore: 71,
			Lighting:    60,
			Traffic:     50,
			Crowd:       50,
			Incidents:   3,
			Color:       ColorCaution,
			Description: "Shorter path through quieter, dimly lit blocks",
			Coordinates: []polyline.Coordinate{
				{Lat: 40.7580, Lon: -73.9855},
				{Lat: 40.7562, Lon: -73.9871},
				{Lat: 40.7540, Lon: -73.9860},
				{Lat: 40.7516, Lon: -73.9810},
			},
			Fallback: true,
		},
	}
}
