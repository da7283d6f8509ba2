package models

import "github.com/safewalk/safewalk/internal/backend"

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the established session.
type LoginResponse struct {
	User      backend.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt Timestamp    `json:"expiresAt"`
	Offline   bool         `json:"offline,omitempty"`
}

// MeResponse is the current user profile.
type MeResponse struct {
	User backend.User `json:"user"`
}
