package tomtom

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/safewalk/safewalk/internal/geocode"
)

const searchBody = `{
	"results": [
		{
			"address": {"freeformAddress": "350 5th Ave, New York, NY 10118", "country": "United States"},
			"position": {"lat": 40.748, "lon": -73.985}
		},
		{
			"address": {"freeformAddress": "360 5th Ave, New York, NY 10001", "country": "United States"},
			"position": {"lat": 40.749, "lon": -73.986}
		}
	]
}`

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/search/2/search/") || !strings.HasSuffix(r.URL.Path, ".json") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("typeahead"); got != "true" {
			t.Errorf("expected typeahead=true, got %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("expected limit=5, got %q", got)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("expected key=test-key, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchBody))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{APIKey: "test-key", BaseURL: server.URL})

	suggestions, err := client.Search(context.Background(), "350 5th Ave", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(suggestions))
	}
	first := suggestions[0]
	if first.Address != "350 5th Ave, New York, NY 10118" {
		t.Errorf("unexpected address: %q", first.Address)
	}
	if first.Position.Lat != 40.748 || first.Position.Lon != -73.985 {
		t.Errorf("unexpected position: %+v", first.Position)
	}
	if first.Country != "United States" {
		t.Errorf("unexpected country: %q", first.Country)
	}
}

func TestClient_Search_EmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{APIKey: "test-key", BaseURL: server.URL})

	suggestions, err := client.Search(context.Background(), "zzzzzz", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(suggestions) != 0 {
		t.Errorf("expected no suggestions, got %d", len(suggestions))
	}
}

func TestClient_Search_QueryEscaping(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{APIKey: "test-key", BaseURL: server.URL})

	if _, err := client.Search(context.Background(), "a/b c", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(gotPath, " ") {
		t.Errorf("query not escaped in path: %q", gotPath)
	}
}

func TestClient_Search_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message": "service unavailable"}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{APIKey: "test-key", BaseURL: server.URL})

	_, err := client.Search(context.Background(), "350 5th Ave", 5)
	if !errors.Is(err, geocode.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
}
