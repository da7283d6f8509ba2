package handler

import (
	"net/http"
	"strings"

	"github.com/safewalk/safewalk/internal/api/models"
	"github.com/safewalk/safewalk/internal/api/response"
	"github.com/safewalk/safewalk/internal/geocode"
	"github.com/safewalk/safewalk/internal/store"
)

// GeocodeHandler handles address search endpoints.
type GeocodeHandler struct {
	geocodeService *geocode.Service
	store          store.Store
}

// NewGeocodeHandler creates a new GeocodeHandler.
func NewGeocodeHandler(geocodeService *geocode.Service, st store.Store) *GeocodeHandler {
	return &GeocodeHandler{
		geocodeService: geocodeService,
		store:          st,
	}
}

// Suggest handles GET /v1/geocode/suggest?q= - typeahead suggestions.
// Queries shorter than the minimum length return an empty list rather
// than an error so clients can call this on every keystroke. Typeahead
// traffic is not recorded in the search history; only completed route
// searches are.
func (h *GeocodeHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	suggestions := h.geocodeService.Suggest(r.Context(), query)
	if suggestions == nil {
		suggestions = []geocode.Suggestion{}
	}

	response.JSON(w, r, http.StatusOK, models.SuggestResponse{
		Query:       query,
		Suggestions: suggestions,
	})
}

// SearchHistory handles GET /v1/search/history - recent searches,
// most recent first.
func (h *GeocodeHandler) SearchHistory(w http.ResponseWriter, r *http.Request) {
	queries := store.SearchHistory(h.store)
	if queries == nil {
		queries = []string{}
	}

	response.JSON(w, r, http.StatusOK, models.SearchHistoryResponse{
		Queries: queries,
	})
}
