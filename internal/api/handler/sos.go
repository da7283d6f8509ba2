package handler

import (
	"encoding/json"
	"net/http"

	"github.com/safewalk/safewalk/internal/api/models"
	"github.com/safewalk/safewalk/internal/api/response"
	"github.com/safewalk/safewalk/internal/navigation"
	"github.com/safewalk/safewalk/internal/sos"
	"github.com/safewalk/safewalk/internal/telemetry"
	"github.com/safewalk/safewalk/pkg/polyline"
)

// SOSHandler handles emergency SOS endpoints.
type SOSHandler struct {
	dispatcher *sos.Dispatcher
	monitor    *navigation.Monitor
	metrics    *telemetry.Metrics
}

// NewSOSHandler creates a new SOSHandler.
func NewSOSHandler(dispatcher *sos.Dispatcher, monitor *navigation.Monitor, metrics *telemetry.Metrics) *SOSHandler {
	return &SOSHandler{
		dispatcher: dispatcher,
		monitor:    monitor,
		metrics:    metrics,
	}
}

// Trigger handles POST /v1/sos - manual SOS. During an active
// navigation session the session's position is used and the session is
// marked resolved; otherwise the request must carry a position.
func (h *SOSHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if h.monitor != nil && h.monitor.State() != navigation.StateIdle {
		// The monitor records the dispatch metric itself.
		h.monitor.ManualSOS()
		h.respondActive(w, r, http.StatusCreated)
		return
	}

	var req models.TriggerSOSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if req.Lat == 0 && req.Lng == 0 {
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "lat", Message: "a position is required outside navigation", Code: "required"},
		})
		return
	}

	h.dispatcher.Trigger(polyline.Coordinate{Lat: req.Lat, Lon: req.Lng})
	h.metrics.RecordSOSDispatched(r.Context(), "manual")
	h.respondActive(w, r, http.StatusCreated)
}

// Active handles GET /v1/sos - the active SOS, if any.
func (h *SOSHandler) Active(w http.ResponseWriter, r *http.Request) {
	h.respondActive(w, r, http.StatusOK)
}

// Dismiss handles DELETE /v1/sos - dismiss the SOS banner. Alerts
// already sent are not recalled.
func (h *SOSHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	h.dispatcher.Dismiss()
	response.NoContent(w, r)
}

func (h *SOSHandler) respondActive(w http.ResponseWriter, r *http.Request, status int) {
	dispatch, ok := h.dispatcher.Active()
	if !ok {
		response.NotFound(w, r, "no active SOS")
		return
	}
	response.JSON(w, r, status, models.SOSResponse{Dispatch: dispatch})
}
