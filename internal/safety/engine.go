package safety

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/safewalk/safewalk/internal/routing"
	"github.com/safewalk/safewalk/pkg/polyline"
)

// corridorRadiusMeters bounds how far from the route path an incident
// still counts against the route.
const corridorRadiusMeters = 250

// RoutePlanner fetches directions from the routing layer.
// *routing.Service satisfies it.
type RoutePlanner interface {
	GetRoute(ctx context.Context, req routing.RouteRequest) (*routing.Directions, error)
}

// IncidentCounter counts incidents within a corridor around a path.
// A nil counter means no incident data is available and counts are zero.
type IncidentCounter interface {
	CountNear(path []polyline.Coordinate, radiusMeters float64) int
}

// EngineConfig holds configuration for the scoring engine.
type EngineConfig struct {
	// Planner fetches provider directions (required).
	Planner RoutePlanner

	// Incidents counts incidents along a route corridor (optional).
	Incidents IncidentCounter

	// Score produces safety scores (optional, defaults to the
	// placeholder pseudo-random policy).
	Score ScoreFunc

	// Logger for engine operations.
	Logger zerolog.Logger
}

// Engine builds and ranks scored routes. It is the sole place where
// the safety score is assigned.
type Engine struct {
	planner   RoutePlanner
	incidents IncidentCounter
	score     ScoreFunc
	logger    zerolog.Logger

	mu        sync.RWMutex
	lastBuilt map[string]Route
}

// NewEngine creates a scoring engine.
func NewEngine(cfg EngineConfig) *Engine {
	score := cfg.Score
	if score == nil {
		score = DefaultScoreFunc()
	}

	return &Engine{
		planner:   cfg.Planner,
		incidents: cfg.Incidents,
		score:     score,
		logger:    cfg.Logger.With().Str("component", "safety").Logger(),
		lastBuilt: make(map[string]Route),
	}
}

// BuildRequest describes a route search.
type BuildRequest struct {
	Origin           polyline.Coordinate
	Destination      polyline.Coordinate
	Mode             routing.TravelMode
	OriginLabel      string
	DestinationLabel string
}

// BuildRoutes fetches directions and converts them into scored routes.
// When the provider yields nothing (offline, no route, provider error)
// it falls back to the pre-scored demo set so callers always have
// options; fallback routes carry the Fallback flag.
func (e *Engine) BuildRoutes(ctx context.Context, req BuildRequest) []Route {
	directions, err := e.planner.GetRoute(ctx, routing.RouteRequest{
		Origin:      req.Origin,
		Destination: req.Destination,
		Mode:        req.Mode,
	})
	if err != nil || directions == nil || len(directions.Points) == 0 {
		if err != nil {
			e.logger.Warn().Err(err).Msg("route compute failed, using fallback routes")
		}
		routes := FallbackRoutes(req.OriginLabel, req.DestinationLabel)
		e.remember(routes)
		return routes
	}

	route := e.scoreDirections(directions, req)
	routes := []Route{route}
	e.remember(routes)
	return routes
}

// scoreDirections maps provider directions to a Route. The distance,
// duration and coordinate mapping is exact unit conversion; only the
// score comes from the injected policy.
func (e *Engine) scoreDirections(directions *routing.Directions, req BuildRequest) Route {
	score := clampScore(e.score())

	incidentCount := 0
	if e.incidents != nil {
		incidentCount = e.incidents.CountNear(directions.Points, corridorRadiusMeters)
	}

	// Some provider responses omit the summary distance; fall back to
	// measuring the geometry itself.
	distanceMeters := directions.DistanceMeters
	if distanceMeters == 0 {
		distanceMeters = int(polyline.Length(directions.Points))
	}

	return Route{
		ID:          "rt_" + uuid.NewString(),
		Name:        "Recommended Route",
		Start:       req.OriginLabel,
		End:         req.DestinationLabel,
		Distance:    FormatDistance(distanceMeters),
		Duration:    FormatDuration(directions.DurationSeconds),
		SafetyScore: score,
		Lighting:    deriveLighting(score),
		Traffic:     50,
		Crowd:       50,
		Incidents:   incidentCount,
		Color:       deriveColor(score),
		Description: deriveDescription(score),
		Coordinates: directions.Points,
	}
}

// Rank orders routes by descending safety score. Routes below the
// caller's threshold are kept; flagging them is a presentation concern.
func Rank(routes []Route) []Route {
	ranked := make([]Route, len(routes))
	copy(ranked, routes)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].SafetyScore > ranked[j].SafetyScore
	})
	return ranked
}

// Lookup returns a route from the most recent build by ID.
func (e *Engine) Lookup(id string) (Route, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	route, ok := e.lastBuilt[id]
	return route, ok
}

func (e *Engine) remember(routes []Route) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lastBuilt = make(map[string]Route, len(routes))
	for _, r := range routes {
		e.lastBuilt[r.ID] = r
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
