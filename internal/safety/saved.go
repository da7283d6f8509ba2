package safety

import (
	"errors"
	"sync"

	"github.com/safewalk/safewalk/internal/store"
	"github.com/safewalk/safewalk/pkg/polyline"
)

// ErrRouteNotSaved is returned when deleting an unknown saved route.
var ErrRouteNotSaved = errors.New("route not in saved list")

// storedRoute is the at-rest form of a saved route. Geometry is kept
// polyline-encoded so a long coordinate sequence stores as one compact
// string instead of a JSON array per point.
type storedRoute struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Distance    string `json:"distance"`
	Duration    string `json:"duration"`
	SafetyScore int    `json:"safetyScore"`
	Lighting    int    `json:"lighting"`
	Traffic     int    `json:"traffic"`
	Crowd       int    `json:"crowd"`
	Incidents   int    `json:"incidents"`
	Color       string `json:"color"`
	Description string `json:"description"`
	Polyline    string `json:"polyline,omitempty"`
	Fallback    bool   `json:"fallback,omitempty"`
}

func encodeStored(r Route) storedRoute {
	return storedRoute{
		ID:          r.ID,
		Name:        r.Name,
		Start:       r.Start,
		End:         r.End,
		Distance:    r.Distance,
		Duration:    r.Duration,
		SafetyScore: r.SafetyScore,
		Lighting:    r.Lighting,
		Traffic:     r.Traffic,
		Crowd:       r.Crowd,
		Incidents:   r.Incidents,
		Color:       r.Color,
		Description: r.Description,
		Polyline:    polyline.Encode(r.Coordinates),
		Fallback:    r.Fallback,
	}
}

func (sr storedRoute) route() Route {
	return Route{
		ID:          sr.ID,
		Name:        sr.Name,
		Start:       sr.Start,
		End:         sr.End,
		Distance:    sr.Distance,
		Duration:    sr.Duration,
		SafetyScore: sr.SafetyScore,
		Lighting:    sr.Lighting,
		Traffic:     sr.Traffic,
		Crowd:       sr.Crowd,
		Incidents:   sr.Incidents,
		Color:       sr.Color,
		Description: sr.Description,
		Coordinates: polyline.Decode(sr.Polyline),
		Fallback:    sr.Fallback,
	}
}

// SavedRoutes persists the user's saved route list for offline use.
type SavedRoutes struct {
	store store.Store
	mu    sync.Mutex
}

// NewSavedRoutes creates the saved-routes list over the given store.
func NewSavedRoutes(s store.Store) *SavedRoutes {
	return &SavedRoutes{store: s}
}

// List returns the saved routes, most recently saved first.
func (s *SavedRoutes) List() []Route {
	stored, _ := store.GetJSON[[]storedRoute](s.store, store.KeySavedRoutes)
	if len(stored) == 0 {
		return nil
	}
	routes := make([]Route, len(stored))
	for i, sr := range stored {
		routes[i] = sr.route()
	}
	return routes
}

// Save adds a route to the saved list. Saving a route that is already
// saved replaces the stored copy.
func (s *SavedRoutes) Save(route Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, _ := store.GetJSON[[]storedRoute](s.store, store.KeySavedRoutes)

	updated := make([]storedRoute, 0, len(stored)+1)
	updated = append(updated, encodeStored(route))
	for _, sr := range stored {
		if sr.ID == route.ID {
			continue
		}
		updated = append(updated, sr)
	}

	return store.SetJSON(s.store, store.KeySavedRoutes, updated)
}

// Delete removes a route from the saved list by ID.
func (s *SavedRoutes) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, _ := store.GetJSON[[]storedRoute](s.store, store.KeySavedRoutes)

	updated := stored[:0]
	found := false
	for _, sr := range stored {
		if sr.ID == id {
			found = true
			continue
		}
		updated = append(updated, sr)
	}
	if !found {
		return ErrRouteNotSaved
	}

	return store.SetJSON(s.store, store.KeySavedRoutes, updated)
}

// Lookup returns a saved route by ID.
func (s *SavedRoutes) Lookup(id string) (Route, bool) {
	for _, r := range s.List() {
		if r.ID == id {
			return r, true
		}
	}
	return Route{}, false
}
