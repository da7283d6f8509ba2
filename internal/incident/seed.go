package incident

import "time"

// SeedIncidents returns the built-in incident set used when the backend
// is unavailable or returns nothing. Positions are around midtown
// Manhattan to match the demo route area.
func SeedIncidents() []Incident {
	base := time.Now().UTC()
	return []Incident{
		{
			ID:             "seed_1",
			IdempotencyKey: "seed_1",
			Category:       CategoryLighting,
			Severity:       SeverityMedium,
			Title:          "Broken streetlight",
			Place:          "W 45th St & 7th Ave",
			Lat:            40.7577,
			Lng:            -73.9857,
			Description:    "Corner streetlight out for several nights",
			Timestamp:      "2 hours ago",
			RecordedAt:     base.Add(-2 * time.Hour),
		},
		{
			ID:             "seed_2",
			IdempotencyKey: "seed_2",
			Category:       CategoryHarassment,
			Severity:       SeverityHigh,
			Title:          "Aggressive panhandling",
			Place:          "Bryant Park entrance",
			Lat:            40.7536,
			Lng:            -73.9832,
			Description:    "Group following pedestrians near the park entrance",
			Timestamp:      "5 hours ago",
			RecordedAt:     base.Add(-5 * time.Hour),
		},
		{
			ID:             "seed_3",
			IdempotencyKey: "seed_3",
			Category:       CategoryAccident,
			Severity:       SeverityLow,
			Title:          "Sidewalk closure",
			Place:          "W 39th St & 6th Ave",
			Lat:            40.7525,
			Lng:            -73.9851,
			Description:    "Scaffolding collapse, pedestrians diverted to the street",
			Timestamp:      "1 day ago",
			RecordedAt:     base.Add(-24 * time.Hour),
		},
	}
}
