package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/safewalk/safewalk/internal/api/models"
	"github.com/safewalk/safewalk/internal/api/response"
	"github.com/safewalk/safewalk/internal/navigation"
	"github.com/safewalk/safewalk/internal/safety"
	"github.com/safewalk/safewalk/pkg/polyline"
)

// NavigationHandler handles navigation session endpoints.
type NavigationHandler struct {
	monitor *navigation.Monitor
	engine  *safety.Engine
	saved   *safety.SavedRoutes
}

// NewNavigationHandler creates a new NavigationHandler.
func NewNavigationHandler(monitor *navigation.Monitor, engine *safety.Engine, saved *safety.SavedRoutes) *NavigationHandler {
	return &NavigationHandler{
		monitor: monitor,
		engine:  engine,
		saved:   saved,
	}
}

// Start handles POST /v1/navigation/start - begin navigating a route.
// The route is looked up among the last computed set first, then the
// saved list.
func (h *NavigationHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req models.StartNavigationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if req.RouteID == "" {
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "routeId", Message: "routeId is required", Code: "required"},
		})
		return
	}

	route, ok := h.engine.Lookup(req.RouteID)
	if !ok {
		route, ok = h.saved.Lookup(req.RouteID)
	}
	if !ok {
		response.NotFound(w, r, "no route with that id")
		return
	}

	if err := h.monitor.Start(route); err != nil {
		if errors.Is(err, navigation.ErrSessionActive) {
			response.Conflict(w, r, "a navigation session is already active")
			return
		}
		if errors.Is(err, navigation.ErrRouteNotNavigable) {
			response.BadRequest(w, r, "route has no coordinates to navigate", nil)
			return
		}
		response.InternalError(w, r, "failed to start navigation")
		return
	}

	response.JSON(w, r, http.StatusOK, models.NavigationResponse{Session: h.monitor.Snapshot()})
}

// Position handles POST /v1/navigation/position - a live GPS sample.
func (h *NavigationHandler) Position(w http.ResponseWriter, r *http.Request) {
	var req models.PositionUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if h.monitor.State() == navigation.StateIdle {
		response.NotFound(w, r, "no active navigation session")
		return
	}

	h.monitor.UpdatePosition(polyline.Coordinate{Lat: req.Lat, Lon: req.Lon})
	response.JSON(w, r, http.StatusOK, models.NavigationResponse{Session: h.monitor.Snapshot()})
}

// Acknowledge handles POST /v1/navigation/acknowledge - the user
// confirmed they are fine, cancelling any running countdown.
func (h *NavigationHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	if h.monitor.State() == navigation.StateIdle {
		response.NotFound(w, r, "no active navigation session")
		return
	}

	h.monitor.Acknowledge()
	response.JSON(w, r, http.StatusOK, models.NavigationResponse{Session: h.monitor.Snapshot()})
}

// SimulateStop handles POST /v1/navigation/simulate-stop - demo hook
// that makes the next tick treat the user as still.
func (h *NavigationHandler) SimulateStop(w http.ResponseWriter, r *http.Request) {
	if h.monitor.State() == navigation.StateIdle {
		response.NotFound(w, r, "no active navigation session")
		return
	}

	h.monitor.SimulateStop()
	response.JSON(w, r, http.StatusOK, models.NavigationResponse{Session: h.monitor.Snapshot()})
}

// End handles POST /v1/navigation/end - finish the trip.
func (h *NavigationHandler) End(w http.ResponseWriter, r *http.Request) {
	if h.monitor.State() == navigation.StateIdle {
		response.NotFound(w, r, "no active navigation session")
		return
	}

	h.monitor.End()
	response.NoContent(w, r)
}

// Get handles GET /v1/navigation - the current session state.
func (h *NavigationHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.NavigationResponse{Session: h.monitor.Snapshot()})
}
