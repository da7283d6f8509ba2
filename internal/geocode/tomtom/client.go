// Package tomtom provides a client for the TomTom search API.
package tomtom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/safewalk/safewalk/internal/geocode"
	"github.com/safewalk/safewalk/internal/provider/resilience"
	"github.com/safewalk/safewalk/pkg/polyline"
)

const (
	// ProviderName identifies this geocoding provider.
	ProviderName = "tomtom-search"

	// DefaultBaseURL is the TomTom API base URL.
	DefaultBaseURL = "https://api.tomtom.com"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the TomTom search client.
type ClientConfig struct {
	// APIKey is the TomTom API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to the TomTom API).
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

// Client is a TomTom fuzzy search API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new TomTom search client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

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
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger.With().Str("provider", ProviderName).Logger(),
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return ProviderName
}

// Search performs a typeahead fuzzy search for the query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]geocode.Suggestion, error) {
	if limit <= 0 {
		limit = geocode.DefaultLimit
	}

	endpoint := fmt.Sprintf("%s/search/2/search/%s.json", c.baseURL, url.PathEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &geocode.Error{
			Provider: ProviderName,
			Message:  "failed to create request",
			Err:      err,
		}
	}

	q := req.URL.Query()
	q.Set("key", c.apiKey)
	q.Set("typeahead", "true")
	q.Set("limit", strconv.Itoa(limit))
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &geocode.Error{
			Provider: ProviderName,
			Message:  "request failed",
			Err:      fmt.Errorf("%w: %w", geocode.ErrProviderUnavailable, err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &geocode.Error{
			Provider: ProviderName,
			Message:  "failed to read response body",
			Err:      err,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.mapError(resp.StatusCode, body)
	}

	var searchResp searchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, &geocode.Error{
			Provider: ProviderName,
			Message:  "failed to decode response",
			Err:      err,
		}
	}

	suggestions := make([]geocode.Suggestion, 0, len(searchResp.Results))
	for _, result := range searchResp.Results {
		suggestions = append(suggestions, geocode.Suggestion{
			Address: result.Address.FreeformAddress,
			Position: polyline.Coordinate{
				Lat: result.Position.Lat,
				Lon: result.Position.Lon,
			},
			Country: result.Address.Country,
		})
	}

	c.logger.Debug().
		Str("query", query).
		Int("results", len(suggestions)).
		Msg("search completed")

	return suggestions, nil
}

func (c *Client) mapError(statusCode int, body []byte) error {
	var errResp errorResponse
	message := "search request failed"
	code := ""
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.DetailedError.Message != "" {
			message = errResp.DetailedError.Message
			code = errResp.DetailedError.Code
		} else if errResp.Message != "" {
			message = errResp.Message
		}
	}

	baseErr := error(nil)
	switch {
	case statusCode == http.StatusForbidden || statusCode == http.StatusUnauthorized:
		baseErr = fmt.Errorf("invalid API key")
	case statusCode >= 500:
		baseErr = geocode.ErrProviderUnavailable
	}

	return &geocode.Error{
		Provider: ProviderName,
		Code:     code,
		Message:  fmt.Sprintf("%s (status %d)", message, statusCode),
		Err:      baseErr,
	}
}
