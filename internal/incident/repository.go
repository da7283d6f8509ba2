package incident

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/safewalk/safewalk/internal/store"
	"github.com/safewalk/safewalk/pkg/polyline"
)

// Backend is the remote incident service.
type Backend interface {
	ListIncidents(ctx context.Context) ([]Incident, error)
	ReportIncident(ctx context.Context, inc Incident) error
}

// RepositoryConfig holds configuration for the incident repository.
type RepositoryConfig struct {
	// Backend is the remote service (required).
	Backend Backend

	// Store persists the pending queue (required).
	Store store.Store

	// Online reports current backend connectivity. Nil means always
	// online.
	Online func() bool

	// Logger for repository operations.
	Logger zerolog.Logger
}

// Repository serves incidents with offline-first semantics: reads fall
// back to seed data plus the local queue, and writes never fail from
// the caller's point of view.
type Repository struct {
	backend Backend
	store   store.Store
	online  func() bool
	logger  zerolog.Logger

	// mu serializes queue access between the report path and the sync
	// path so an append during a sync drain is not lost.
	mu sync.Mutex

	known   []Incident
	knownMu sync.RWMutex
}

// NewRepository creates an incident repository.
func NewRepository(cfg RepositoryConfig) *Repository {
	online := cfg.Online
	if online == nil {
		online = func() bool { return true }
	}

	return &Repository{
		backend: cfg.Backend,
		store:   cfg.Store,
		online:  online,
		logger:  cfg.Logger.With().Str("component", "incidents").Logger(),
	}
}

// List returns the incidents to display. Online, it fetches from the
// backend and falls back to the seed list when the fetch errors or
// comes back empty. Offline, it returns the seed list plus the locally
// queued pending reports.
func (r *Repository) List(ctx context.Context) []Incident {
	if r.online() {
		incidents, err := r.backend.ListIncidents(ctx)
		if err == nil && len(incidents) > 0 {
			r.rememberKnown(incidents)
			return incidents
		}
		if err != nil {
			r.logger.Warn().Err(err).Msg("incident fetch failed, using seed data")
		}
		seeds := SeedIncidents()
		r.rememberKnown(seeds)
		return seeds
	}

	result := SeedIncidents()
	result = append(result, r.Pending()...)
	r.rememberKnown(result)
	return result
}

// Report records an incident. Online, it attempts the backend call and
// falls back to the local queue on failure; offline, it queues
// immediately. Recording never fails from the caller's point of view.
// The returned incident carries the Pending flag when it was queued;
// delivered reports whether the backend confirmed the report.
func (r *Repository) Report(ctx context.Context, inc Incident) (Incident, bool) {
	if r.online() {
		err := r.backend.ReportIncident(ctx, inc)
		if err == nil {
			return inc, true
		}
		r.logger.Warn().
			Err(err).
			Str("incident_id", inc.ID).
			Msg("incident report failed, queuing locally")
	}

	inc.Pending = true
	r.enqueue(inc)
	return inc, false
}

// Sync drains the pending queue, re-submitting each entry individually.
// On full success the queue is cleared; on any failure the whole queue
// is left intact for the next connectivity event. Each entry carries an
// idempotency key so replays cannot create duplicate records.
func (r *Repository) Sync(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending, _ := store.GetJSON[[]Incident](r.store, store.KeyPendingIncidents)
	if len(pending) == 0 {
		return true
	}

	for _, inc := range pending {
		if err := r.backend.ReportIncident(ctx, inc); err != nil {
			r.logger.Warn().
				Err(err).
				Str("incident_id", inc.ID).
				Int("queued", len(pending)).
				Msg("sync failed, keeping queue for retry")
			return false
		}
	}

	if err := r.store.Delete(store.KeyPendingIncidents); err != nil {
		r.logger.Error().Err(err).Msg("failed to clear synced queue")
		return false
	}

	r.logger.Info().Int("synced", len(pending)).Msg("pending incidents synced")
	return true
}

// Pending returns the locally queued reports.
func (r *Repository) Pending() []Incident {
	pending, _ := store.GetJSON[[]Incident](r.store, store.KeyPendingIncidents)
	return pending
}

// CountNear counts known incidents within radiusMeters of the path.
// It works from the most recently listed set (or the seed set before
// any List call) so it never performs I/O.
func (r *Repository) CountNear(path []polyline.Coordinate, radiusMeters float64) int {
	r.knownMu.RLock()
	known := r.known
	r.knownMu.RUnlock()

	if known == nil {
		known = SeedIncidents()
	}

	count := 0
	for _, inc := range known {
		pos := polyline.Coordinate{Lat: inc.Lat, Lon: inc.Lng}
		if polyline.DistanceToPath(pos, path) <= radiusMeters {
			count++
		}
	}
	return count
}

func (r *Repository) enqueue(inc Incident) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending, _ := store.GetJSON[[]Incident](r.store, store.KeyPendingIncidents)
	pending = append(pending, inc)
	if err := store.SetJSON(r.store, store.KeyPendingIncidents, pending); err != nil {
		r.logger.Error().
			Err(err).
			Str("incident_id", inc.ID).
			Msg("failed to persist pending incident")
	}
}

func (r *Repository) rememberKnown(incidents []Incident) {
	r.knownMu.Lock()
	r.known = incidents
	r.knownMu.Unlock()
}
