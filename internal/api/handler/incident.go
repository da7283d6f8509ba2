package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/safewalk/safewalk/internal/api/models"
	"github.com/safewalk/safewalk/internal/api/response"
	"github.com/safewalk/safewalk/internal/incident"
	"github.com/safewalk/safewalk/internal/telemetry"
)

// IncidentHandler handles community incident endpoints.
type IncidentHandler struct {
	repo    *incident.Repository
	metrics *telemetry.Metrics
}

// NewIncidentHandler creates a new IncidentHandler.
func NewIncidentHandler(repo *incident.Repository, metrics *telemetry.Metrics) *IncidentHandler {
	return &IncidentHandler{
		repo:    repo,
		metrics: metrics,
	}
}

// List handles GET /v1/incidents - current incidents, including any
// pending offline reports.
func (h *IncidentHandler) List(w http.ResponseWriter, r *http.Request) {
	incidents := h.repo.List(r.Context())
	if incidents == nil {
		incidents = []incident.Incident{}
	}
	response.JSON(w, r, http.StatusOK, models.IncidentsResponse{Incidents: incidents})
}

// Report handles POST /v1/incidents - record a new incident. The
// report always succeeds locally; when the backend cannot be reached
// the incident is queued for a later sync and Queued is set.
func (h *IncidentHandler) Report(w http.ResponseWriter, r *http.Request) {
	var req models.ReportIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if fieldErrors := validateReport(&req); len(fieldErrors) > 0 {
		response.BadRequest(w, r, "validation error", fieldErrors)
		return
	}

	inc := incident.NewIncident(
		incident.Category(req.Category),
		incident.Severity(req.Severity),
		req.Title,
		req.Place,
		req.Lat,
		req.Lng,
		req.Description,
	)

	stored, delivered := h.repo.Report(r.Context(), inc)

	h.metrics.RecordIncidentReported(r.Context())
	if !delivered {
		h.metrics.RecordIncidentQueued(r.Context())
	}

	response.Created(w, r, "/v1/incidents/"+stored.ID, models.ReportIncidentResponse{
		Incident: stored,
		Queued:   !delivered,
	})
}

func validateReport(req *models.ReportIncidentRequest) []models.FieldError {
	var fieldErrors []models.FieldError
	if !incident.Category(req.Category).Valid() {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "category", Message: "unknown category", Code: "invalid_value",
		})
	}
	if !incident.Severity(req.Severity).Valid() {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "severity", Message: "unknown severity", Code: "invalid_value",
		})
	}
	if strings.TrimSpace(req.Title) == "" {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "title", Message: "title is required", Code: "required",
		})
	}
	if req.Lat < -90 || req.Lat > 90 {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "lat", Message: "latitude out of range", Code: "out_of_range",
		})
	}
	if req.Lng < -180 || req.Lng > 180 {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "lng", Message: "longitude out of range", Code: "out_of_range",
		})
	}
	return fieldErrors
}

// Sync handles POST /v1/incidents:sync - submit the offline queue.
// The queue is kept intact when any entry fails so nothing is lost.
func (h *IncidentHandler) Sync(w http.ResponseWriter, r *http.Request) {
	success := h.repo.Sync(r.Context())
	h.metrics.RecordSyncRun(r.Context(), success)

	response.JSON(w, r, http.StatusOK, models.SyncResponse{
		Success: success,
		Pending: len(h.repo.Pending()),
	})
}
