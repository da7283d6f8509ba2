package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/safewalk/safewalk/internal/api/models"
	"github.com/safewalk/safewalk/internal/api/response"
	"github.com/safewalk/safewalk/internal/geocode"
	"github.com/safewalk/safewalk/internal/routing"
	"github.com/safewalk/safewalk/internal/safety"
	"github.com/safewalk/safewalk/internal/store"
	"github.com/safewalk/safewalk/internal/telemetry"
	"github.com/safewalk/safewalk/pkg/polyline"
)

// RouteHandler handles route computation and saved routes.
type RouteHandler struct {
	engine         *safety.Engine
	saved          *safety.SavedRoutes
	geocodeService *geocode.Service
	store          store.Store
	metrics        *telemetry.Metrics
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(engine *safety.Engine, saved *safety.SavedRoutes, geocodeService *geocode.Service, st store.Store, metrics *telemetry.Metrics) *RouteHandler {
	return &RouteHandler{
		engine:         engine,
		saved:          saved,
		geocodeService: geocodeService,
		store:          st,
		metrics:        metrics,
	}
}

// Compute handles POST /v1/routes:compute - build and rank scored
// routes between two points. Endpoints may be given as coordinates or
// as free-text queries; queries are resolved to their top suggestion.
// Each successful search records the resolved endpoint labels in the
// search history.
func (h *RouteHandler) Compute(w http.ResponseWriter, r *http.Request) {
	var req models.ComputeRoutesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	mode := routing.ModeWalking
	if req.Mode != "" {
		mode = routing.TravelMode(req.Mode)
		if !mode.Valid() {
			response.BadRequest(w, r, "validation error", []models.FieldError{
				{Field: "mode", Message: "unknown travel mode", Code: "invalid_value"},
			})
			return
		}
	}

	origin, originLabel, fieldErr := h.resolveEndpoint(r, req.Origin, req.OriginQuery, "origin")
	if fieldErr != nil {
		response.BadRequest(w, r, "validation error", []models.FieldError{*fieldErr})
		return
	}
	destination, destLabel, fieldErr := h.resolveEndpoint(r, req.Destination, req.DestinationQuery, "destination")
	if fieldErr != nil {
		response.BadRequest(w, r, "validation error", []models.FieldError{*fieldErr})
		return
	}

	routes := safety.Rank(h.engine.BuildRoutes(r.Context(), safety.BuildRequest{
		Origin:           origin,
		Destination:      destination,
		Mode:             mode,
		OriginLabel:      originLabel,
		DestinationLabel: destLabel,
	}))

	fallback := len(routes) > 0 && routes[0].Fallback
	h.metrics.RecordRoutesBuilt(r.Context(), len(routes), fallback)

	if originLabel != "" {
		_ = store.PushSearchHistory(h.store, originLabel)
	}
	if destLabel != "" {
		_ = store.PushSearchHistory(h.store, destLabel)
	}

	response.JSON(w, r, http.StatusOK, models.ComputeRoutesResponse{
		Routes:   routes,
		Fallback: fallback,
	})
}

// resolveEndpoint turns a coordinate-or-query endpoint into a
// coordinate and a display label.
func (h *RouteHandler) resolveEndpoint(r *http.Request, point *models.Point, query, field string) (polyline.Coordinate, string, *models.FieldError) {
	if point != nil {
		return polyline.Coordinate{Lat: point.Lat, Lon: point.Lon}, query, nil
	}
	if query == "" {
		return polyline.Coordinate{}, "", &models.FieldError{
			Field:   field,
			Message: "coordinates or a query are required",
			Code:    "required",
		}
	}

	suggestion := h.geocodeService.ResolveOne(r.Context(), query)
	if suggestion == nil {
		return polyline.Coordinate{}, "", &models.FieldError{
			Field:   field + "Query",
			Message: "no match for query",
			Code:    "unresolvable",
		}
	}
	return suggestion.Position, suggestion.Address, nil
}

// ListSaved handles GET /v1/routes/saved - the saved route list.
func (h *RouteHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	routes := h.saved.List()
	if routes == nil {
		routes = []safety.Route{}
	}
	response.JSON(w, r, http.StatusOK, models.SavedRoutesResponse{Routes: routes})
}

// SaveRoute handles POST /v1/routes/saved - save a computed route by
// ID, or a full route payload.
func (h *RouteHandler) SaveRoute(w http.ResponseWriter, r *http.Request) {
	var req models.SaveRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	var route safety.Route
	switch {
	case req.Route != nil:
		route = *req.Route
		if route.ID == "" {
			response.BadRequest(w, r, "validation error", []models.FieldError{
				{Field: "route.id", Message: "route id is required", Code: "required"},
			})
			return
		}
	case req.RouteID != "":
		found, ok := h.engine.Lookup(req.RouteID)
		if !ok {
			response.NotFound(w, r, "no computed route with that id")
			return
		}
		route = found
	default:
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "routeId", Message: "routeId or route is required", Code: "required"},
		})
		return
	}

	if err := h.saved.Save(route); err != nil {
		response.InternalError(w, r, "failed to save route")
		return
	}

	response.Created(w, r, "/v1/routes/saved/"+route.ID, route)
}

// DeleteSaved handles DELETE /v1/routes/saved/{routeId}.
func (h *RouteHandler) DeleteSaved(w http.ResponseWriter, r *http.Request) {
	routeID := chi.URLParam(r, "routeId")

	if err := h.saved.Delete(routeID); err != nil {
		if errors.Is(err, safety.ErrRouteNotSaved) {
			response.NotFound(w, r, "route is not in the saved list")
			return
		}
		response.InternalError(w, r, "failed to delete route")
		return
	}

	response.NoContent(w, r)
}
