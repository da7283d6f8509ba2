package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/safewalk/safewalk/internal/api/models"
	"github.com/safewalk/safewalk/internal/api/response"
	"github.com/safewalk/safewalk/internal/auth"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login handles POST /v1/auth/login - email/password authentication.
// When the backend is unreachable and a cached profile matches the
// email, an offline session is returned instead of an error.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidEmail) {
			response.BadRequest(w, r, "validation error", []models.FieldError{
				{Field: "email", Message: "invalid email address", Code: "invalid_format"},
			})
			return
		}
		if errors.Is(err, auth.ErrMissingPassword) {
			response.BadRequest(w, r, "validation error", []models.FieldError{
				{Field: "password", Message: "password is required", Code: "required"},
			})
			return
		}
		if errors.Is(err, auth.ErrInvalidCredentials) {
			response.Unauthorized(w, r, "invalid email or password")
			return
		}
		if errors.Is(err, auth.ErrLoginUnavailable) {
			response.ServiceUnavailable(w, r, "login is unavailable and no cached profile matches")
			return
		}

		response.InternalError(w, r, "login failed")
		return
	}

	response.JSON(w, r, http.StatusOK, models.LoginResponse{
		User:      session.User,
		Token:     session.Token,
		ExpiresAt: models.Timestamp(session.ExpiresAt),
		Offline:   session.Offline,
	})
}

// Logout handles POST /v1/auth/logout - drop the stored session token.
// The cached profile is kept so offline login keeps working.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(); err != nil {
		response.InternalError(w, r, "logout failed")
		return
	}
	response.NoContent(w, r)
}

// Me handles GET /v1/me - the cached profile of the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	user, ok := h.authService.CachedUser()
	if !ok || user.ID != userID {
		response.NotFound(w, r, "no profile for this session")
		return
	}

	response.JSON(w, r, http.StatusOK, models.MeResponse{User: user})
}
