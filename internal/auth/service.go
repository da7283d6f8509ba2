package auth

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/safewalk/safewalk/internal/backend"
	"github.com/safewalk/safewalk/internal/store"
)

// Predefined auth errors.
var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrMissingPassword    = errors.New("password is required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginUnavailable   = errors.New("login unavailable and no cached profile")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Authenticator is the backend login surface the service needs.
// *backend.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*backend.User, string, error)
}

// ServiceConfig holds configuration for the auth service.
type ServiceConfig struct {
	// Backend performs remote authentication (required).
	Backend Authenticator

	// Store caches the session token and user profile (required).
	Store store.Store

	// JWT issues and validates local session tokens (required).
	JWT *JWTService

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service manages login sessions. Login degrades to the cached profile
// when the backend is unreachable; only a user with no cached profile
// sees a connectivity failure.
type Service struct {
	backend Authenticator
	store   store.Store
	jwt     *JWTService
	logger  zerolog.Logger
}

// NewService creates an auth service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		backend: cfg.Backend,
		store:   cfg.Store,
		jwt:     cfg.JWT,
		logger:  cfg.Logger.With().Str("component", "auth").Logger(),
	}
}

// Session is an established login session.
type Session struct {
	User      backend.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`

	// Offline marks a session established from the cached profile
	// without backend confirmation.
	Offline bool `json:"offline,omitempty"`
}

// Login authenticates the user. On backend success the profile and a
// fresh session token are cached. If the backend is unreachable and a
// cached profile exists, an offline session is returned instead;
// rejected credentials always fail.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if password == "" {
		return nil, ErrMissingPassword
	}

	user, _, err := s.backend.Login(ctx, email, password)
	if err == nil {
		return s.establishSession(user, false)
	}

	if errors.Is(err, backend.ErrUnauthorized) {
		return nil, ErrInvalidCredentials
	}

	// Backend unreachable: fall back to the cached profile if it
	// belongs to the same account.
	cached, ok := store.GetJSON[backend.User](s.store, store.KeyCachedUser)
	if !ok || cached.Email != email {
		s.logger.Warn().Err(err).Msg("login failed with no usable cached profile")
		return nil, ErrLoginUnavailable
	}

	s.logger.Info().Str("email", email).Msg("backend unreachable, using cached profile")
	return s.establishSession(&cached, true)
}

func (s *Service) establishSession(user *backend.User, offline bool) (*Session, error) {
	token, expiresAt, err := s.jwt.GenerateSessionToken(user)
	if err != nil {
		return nil, err
	}

	if err := store.SetJSON(s.store, store.KeyCachedUser, *user); err != nil {
		s.logger.Error().Err(err).Msg("failed to cache user profile")
	}
	if err := s.store.Set(store.KeyAuthToken, []byte(token)); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist session token")
	}

	return &Session{
		User:      *user,
		Token:     token,
		ExpiresAt: expiresAt,
		Offline:   offline,
	}, nil
}

// Logout clears the persisted session. The cached profile is kept so a
// later offline login can still succeed.
func (s *Service) Logout() error {
	return s.store.Delete(store.KeyAuthToken)
}

// ValidateSessionToken validates a bearer token and returns its claims.
func (s *Service) ValidateSessionToken(token string) (*SessionClaims, error) {
	return s.jwt.ValidateSessionToken(token)
}

// CachedUser returns the cached profile, if any.
func (s *Service) CachedUser() (backend.User, bool) {
	return store.GetJSON[backend.User](s.store, store.KeyCachedUser)
}
