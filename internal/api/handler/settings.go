package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/safewalk/safewalk/internal/api/models"
	"github.com/safewalk/safewalk/internal/api/response"
	"github.com/safewalk/safewalk/internal/settings"
)

// SettingsHandler handles user preference endpoints.
type SettingsHandler struct {
	settingsService *settings.Service
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService *settings.Service) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
	}
}

// Get handles GET /v1/settings - current preferences, defaults when
// nothing is stored.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.settingsService.Get())
}

// Put handles PUT /v1/settings - replace preferences.
func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req settings.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if err := h.settingsService.Put(req); err != nil {
		if errors.Is(err, settings.ErrInvalidScore) {
			response.BadRequest(w, r, "validation error", []models.FieldError{
				{Field: "minSafetyScore", Message: "must be between 0 and 100", Code: "out_of_range"},
			})
			return
		}
		if errors.Is(err, settings.ErrInvalidMode) {
			response.BadRequest(w, r, "validation error", []models.FieldError{
				{Field: "travelMode", Message: "unknown travel mode", Code: "invalid_value"},
			})
			return
		}
		response.InternalError(w, r, "failed to save settings")
		return
	}

	response.JSON(w, r, http.StatusOK, req)
}
