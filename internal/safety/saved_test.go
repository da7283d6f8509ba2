package safety

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/safewalk/safewalk/internal/store"
	"github.com/safewalk/safewalk/pkg/polyline"
)

func savedTestRoute(id string) Route {
	return Route{
		ID:          id,
		Name:        "Safest Route",
		Start:       "Times Square",
		End:         "Empire State Building",
		Distance:    "1.2 km",
		Duration:    "15 min",
		SafetyScore: 92,
		Lighting:    90,
		Traffic:     50,
		Crowd:       50,
		Incidents:   1,
		Color:       ColorSafe,
		Description: "Well-lit main streets with steady foot traffic",
		Coordinates: []polyline.Coordinate{
			{Lat: 40.758, Lon: -73.985},
			{Lat: 40.753, Lon: -73.985},
			{Lat: 40.748, Lon: -73.985},
		},
	}
}

func TestSavedRoutes_SaveListDelete(t *testing.T) {
	saved := NewSavedRoutes(store.NewMemoryStore())

	saved.Save(savedTestRoute("rt_1"))
	saved.Save(savedTestRoute("rt_2"))

	routes := saved.List()
	if len(routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(routes))
	}
	if routes[0].ID != "rt_2" {
		t.Errorf("most recent save should be first, got %q", routes[0].ID)
	}

	if err := saved.Delete("rt_1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if got := len(saved.List()); got != 1 {
		t.Errorf("expected 1 route after delete, got %d", got)
	}

	if err := saved.Delete("rt_unknown"); !errors.Is(err, ErrRouteNotSaved) {
		t.Errorf("expected ErrRouteNotSaved, got %v", err)
	}
}

func TestSavedRoutes_SaveReplacesDuplicate(t *testing.T) {
	saved := NewSavedRoutes(store.NewMemoryStore())

	route := savedTestRoute("rt_1")
	saved.Save(route)

	route.Name = "Renamed"
	saved.Save(route)

	routes := saved.List()
	if len(routes) != 1 {
		t.Fatalf("expected 1 route, got %d", len(routes))
	}
	if routes[0].Name != "Renamed" {
		t.Errorf("re-save should replace, got %q", routes[0].Name)
	}
}

// At rest a saved route keeps its geometry as an encoded polyline
// string, not a per-point coordinate array.
func TestSavedRoutes_PersistsGeometryPolylineEncoded(t *testing.T) {
	s := store.NewMemoryStore()
	saved := NewSavedRoutes(s)

	want := savedTestRoute("rt_1")
	if err := saved.Save(want); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	raw, err := s.Get(store.KeySavedRoutes)
	if err != nil {
		t.Fatalf("stored value missing: %v", err)
	}
	if bytes.Contains(raw, []byte(`"coordinates"`)) {
		t.Errorf("stored form must not contain a coordinates array: %s", raw)
	}
	wantEncoded, _ := json.Marshal(polyline.Encode(want.Coordinates))
	if !bytes.Contains(raw, []byte(`"polyline":`+string(wantEncoded))) {
		t.Errorf("stored form missing encoded polyline %s: %s", wantEncoded, raw)
	}

	got, ok := saved.Lookup("rt_1")
	if !ok {
		t.Fatal("saved route not found")
	}
	if len(got.Coordinates) != len(want.Coordinates) {
		t.Fatalf("coordinate count = %d, want %d", len(got.Coordinates), len(want.Coordinates))
	}
	for i := range want.Coordinates {
		if got.Coordinates[i] != want.Coordinates[i] {
			t.Errorf("coordinate %d = %+v, want %+v", i, got.Coordinates[i], want.Coordinates[i])
		}
	}
}

// Saving and reloading a route through the durable store must preserve
// every field, including the full coordinate sequence.
func TestSavedRoutes_SQLiteRoundTrip(t *testing.T) {
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "routes.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer s.Close()

	saved := NewSavedRoutes(s)
	want := savedTestRoute("rt_1")
	if err := saved.Save(want); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, ok := saved.Lookup("rt_1")
	if !ok {
		t.Fatal("saved route not found")
	}
	if got.Name != want.Name || got.Distance != want.Distance || got.Duration != want.Duration ||
		got.SafetyScore != want.SafetyScore || got.Color != want.Color || got.Description != want.Description {
		t.Errorf("round-trip mismatch: got %+v", got)
	}
	if len(got.Coordinates) != len(want.Coordinates) {
		t.Fatalf("coordinate count = %d, want %d", len(got.Coordinates), len(want.Coordinates))
	}
	for i := range want.Coordinates {
		if got.Coordinates[i] != want.Coordinates[i] {
			t.Errorf("coordinate %d = %+v, want %+v", i, got.Coordinates[i], want.Coordinates[i])
		}
	}
}
