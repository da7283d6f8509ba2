// Package backend is the client for the SafeWalk backend service:
// authentication, incident listing and reporting, and SOS delivery.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/safewalk/safewalk/internal/incident"
	"github.com/safewalk/safewalk/internal/provider/resilience"
)

const (
	// ProviderName identifies the backend in the provider registry.
	ProviderName = "safewalk-backend"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// Backend errors.
var (
	// ErrUnavailable indicates the backend cannot be reached.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrUnauthorized indicates rejected credentials.
	ErrUnauthorized = errors.New("invalid credentials")
)

// Contact is an emergency contact on a user profile.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// User is an authenticated user profile.
type User struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	EmergencyContacts []Contact `json:"emergencyContacts,omitempty"`
}

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the backend client.
type ClientConfig struct {
	// BaseURL is the backend base URL (required).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, a resilient client with defaults is used.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client talks to the SafeWalk backend.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a backend client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		clientCfg.Registry = cfg.Registry
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		logger:     cfg.Logger.With().Str("provider", ProviderName).Logger(),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Login authenticates with email and password, returning the user
// profile and session token.
func (c *Client) Login(ctx context.Context, email, password string) (*User, string, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode login request: %w", err)
	}

	resp, err := c.post(ctx, "/auth/login", body, "")
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, "", ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return nil, "", fmt.Errorf("%w: login returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var loginResp loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return nil, "", fmt.Errorf("failed to decode login response: %w", err)
	}

	return &loginResp.User, loginResp.Token, nil
}

// ListIncidents fetches the current incident set.
func (c *Client) ListIncidents(ctx context.Context) ([]incident.Incident, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/incidents", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: incidents returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var incidents []incident.Incident
	if err := json.NewDecoder(resp.Body).Decode(&incidents); err != nil {
		return nil, fmt.Errorf("failed to decode incidents: %w", err)
	}
	return incidents, nil
}

// ReportIncident submits a report. The incident's idempotency key is
// sent as a header so the backend can dedupe queue replays.
func (c *Client) ReportIncident(ctx context.Context, inc incident.Incident) error {
	body, err := json.Marshal(inc)
	if err != nil {
		return fmt.Errorf("failed to encode incident: %w", err)
	}

	resp, err := c.post(ctx, "/incidents", body, inc.IdempotencyKey)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%w: report returned status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

type sosRequest struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Timestamp string  `json:"timestamp"`
}

// SendSOS delivers an SOS event with the user's position.
func (c *Client) SendSOS(ctx context.Context, lat, lng float64, at time.Time) error {
	body, err := json.Marshal(sosRequest{
		Lat:       lat,
		Lng:       lng,
		Timestamp: at.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to encode sos request: %w", err)
	}

	resp, err := c.post(ctx, "/sos", body, "")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("%w: sos returned status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body []byte, idempotencyKey string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	return c.httpClient.Do(req)
}
