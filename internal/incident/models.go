// Package incident manages community safety incident reports, including
// the offline queue and its synchronization.
package incident

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies an incident.
type Category string

const (
	CategoryCrime      Category = "crime"
	CategoryAccident   Category = "accident"
	CategoryLighting   Category = "lighting"
	CategoryHarassment Category = "harassment"
	CategoryOther      Category = "other"
)

// Valid reports whether the category is a known value.
func (c Category) Valid() bool {
	switch c {
	case CategoryCrime, CategoryAccident, CategoryLighting, CategoryHarassment, CategoryOther:
		return true
	}
	return false
}

// Severity orders incidents for display and heatmap weighting,
// high > medium > low.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Valid reports whether the severity is a known value.
func (s Severity) Valid() bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Weight returns the heatmap weight for the severity.
func (s Severity) Weight() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

// Incident is a community safety report.
type Incident struct {
	ID string `json:"id"`

	// IdempotencyKey is a client-generated key the backend dedupes on,
	// so replaying the offline queue cannot create duplicate records.
	IdempotencyKey string `json:"idempotencyKey"`

	Category    Category `json:"category"`
	Severity    Severity `json:"severity"`
	Title       string   `json:"title"`
	Place       string   `json:"place,omitempty"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Description string   `json:"description,omitempty"`

	// Timestamp is the human-readable display timestamp, e.g.
	// "2 hours ago" for seed data or an RFC3339 instant for reports.
	Timestamp string `json:"timestamp"`

	// RecordedAt is the machine-readable creation time.
	RecordedAt time.Time `json:"recordedAt"`

	// Pending marks a locally recorded report not yet accepted by the
	// backend. Cleared only by a successful sync.
	Pending bool `json:"pending,omitempty"`
}

// NewIncident creates a report with generated identifiers and timestamps.
func NewIncident(category Category, severity Severity, title, place string, lat, lng float64, description string) Incident {
	now := time.Now().UTC()
	return Incident{
		ID:             "inc_" + uuid.NewString(),
		IdempotencyKey: uuid.NewString(),
		Category:       category,
		Severity:       severity,
		Title:          title,
		Place:          place,
		Lat:            lat,
		Lng:            lng,
		Description:    description,
		Timestamp:      now.Format(time.RFC3339),
		RecordedAt:     now,
	}
}
