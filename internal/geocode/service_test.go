package geocode

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/safewalk/safewalk/pkg/polyline"
)

// mockProvider is a mock geocoding provider for testing.
type mockProvider struct {
	results   []Suggestion
	err       error
	callCount atomic.Int32
	lastQuery atomic.Value
}

func (m *mockProvider) Search(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	m.callCount.Add(1)
	m.lastQuery.Store(query)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.results) > limit {
		return m.results[:limit], nil
	}
	return m.results, nil
}

func (m *mockProvider) Name() string {
	return "mock-geocoder"
}

func testSuggestions() []Suggestion {
	return []Suggestion{
		{Address: "350 5th Ave, New York, NY 10118", Position: polyline.Coordinate{Lat: 40.748, Lon: -73.985}, Country: "United States"},
		{Address: "360 5th Ave, New York, NY 10001", Position: polyline.Coordinate{Lat: 40.749, Lon: -73.986}, Country: "United States"},
	}
}

func TestService_Suggest(t *testing.T) {
	provider := &mockProvider{results: testSuggestions()}
	service := NewService(ServiceConfig{Provider: provider})

	suggestions := service.Suggest(context.Background(), "350 5th Ave")
	if len(suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(suggestions))
	}
	if suggestions[0].Address != "350 5th Ave, New York, NY 10118" {
		t.Errorf("unexpected first suggestion: %q", suggestions[0].Address)
	}
}

func TestService_Suggest_ShortQuery(t *testing.T) {
	provider := &mockProvider{results: testSuggestions()}
	service := NewService(ServiceConfig{Provider: provider})

	for _, query := range []string{"", "a", "ab", "  ab  "} {
		if got := service.Suggest(context.Background(), query); got != nil {
			t.Errorf("Suggest(%q) = %v, want nil", query, got)
		}
	}

	if provider.callCount.Load() != 0 {
		t.Errorf("provider should not be called for short queries, got %d calls", provider.callCount.Load())
	}
}

func TestService_Suggest_ProviderErrorSoftFails(t *testing.T) {
	provider := &mockProvider{err: errors.New("network down")}
	service := NewService(ServiceConfig{Provider: provider})

	if got := service.Suggest(context.Background(), "350 5th Ave"); got != nil {
		t.Errorf("expected nil on provider error, got %v", got)
	}
}

func TestService_ResolveOne(t *testing.T) {
	provider := &mockProvider{results: testSuggestions()}
	service := NewService(ServiceConfig{Provider: provider})

	best := service.ResolveOne(context.Background(), "350 5th Ave")
	if best == nil {
		t.Fatal("expected a suggestion")
	}
	if best.Position.Lat != 40.748 {
		t.Errorf("unexpected position: %+v", best.Position)
	}

	provider.results = nil
	if got := service.ResolveOne(context.Background(), "nowhere at all"); got != nil {
		t.Errorf("expected nil for no matches, got %+v", got)
	}
}

func TestDebouncer_CoalescesRapidQueries(t *testing.T) {
	provider := &mockProvider{results: testSuggestions()}
	service := NewService(ServiceConfig{Provider: provider})

	done := make(chan []Suggestion, 4)
	debouncer := NewDebouncer(service, 20*time.Millisecond, func(s []Suggestion) {
		done <- s
	})
	defer debouncer.Stop()

	ctx := context.Background()
	debouncer.Do(ctx, "350")
	debouncer.Do(ctx, "350 5th")
	debouncer.Do(ctx, "350 5th Ave")

	select {
	case suggestions := <-done:
		if len(suggestions) != 2 {
			t.Fatalf("expected 2 suggestions, got %d", len(suggestions))
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for debounced result")
	}

	if provider.callCount.Load() != 1 {
		t.Errorf("expected 1 provider call after coalescing, got %d", provider.callCount.Load())
	}
	if got := provider.lastQuery.Load(); got != "350 5th Ave" {
		t.Errorf("expected final query to win, got %v", got)
	}
}

func TestDebouncer_ShortQueryClearsResults(t *testing.T) {
	provider := &mockProvider{results: testSuggestions()}
	service := NewService(ServiceConfig{Provider: provider})

	done := make(chan []Suggestion, 4)
	debouncer := NewDebouncer(service, 10*time.Millisecond, func(s []Suggestion) {
		done <- s
	})
	defer debouncer.Stop()

	ctx := context.Background()
	debouncer.Do(ctx, "350 5th Ave")
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for first result")
	}

	debouncer.Do(ctx, "35")
	select {
	case suggestions := <-done:
		if suggestions != nil {
			t.Errorf("expected cleared results, got %v", suggestions)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for cleared result")
	}

	if got := debouncer.Latest(); got != nil {
		t.Errorf("Latest() = %v, want nil", got)
	}
}

func TestDebouncer_StopDiscardsPending(t *testing.T) {
	provider := &mockProvider{results: testSuggestions()}
	service := NewService(ServiceConfig{Provider: provider})

	fired := make(chan struct{}, 1)
	debouncer := NewDebouncer(service, 20*time.Millisecond, func(s []Suggestion) {
		fired <- struct{}{}
	})

	debouncer.Do(context.Background(), "350 5th Ave")
	debouncer.Stop()

	select {
	case <-fired:
		t.Fatal("stopped debouncer should not publish")
	case <-time.After(100 * time.Millisecond):
	}

	if provider.callCount.Load() != 0 {
		t.Errorf("expected no provider calls after Stop, got %d", provider.callCount.Load())
	}
}
