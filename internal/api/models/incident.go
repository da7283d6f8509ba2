package models

import "github.com/safewalk/safewalk/internal/incident"

// ReportIncidentRequest is a new incident report.
type ReportIncidentRequest struct {
	Category    string  `json:"category"`
	Severity    string  `json:"severity"`
	Title       string  `json:"title"`
	Place       string  `json:"place,omitempty"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Description string  `json:"description,omitempty"`
}

// IncidentsResponse is the incident list.
type IncidentsResponse struct {
	Incidents []incident.Incident `json:"incidents"`
}

// ReportIncidentResponse acknowledges a report.
type ReportIncidentResponse struct {
	Incident incident.Incident `json:"incident"`

	// Queued is set when the report is held in the offline queue
	// rather than confirmed by the backend.
	Queued bool `json:"queued,omitempty"`
}

// SyncResponse is the outcome of an offline queue sync.
type SyncResponse struct {
	Success bool `json:"success"`
	Pending int  `json:"pending"`
}
