// Package navigation watches an active trip for sustained stillness and
// escalates through a countdown to an automatic SOS unless cancelled.
package navigation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/safewalk/safewalk/internal/safety"
	"github.com/safewalk/safewalk/internal/telemetry"
	"github.com/safewalk/safewalk/pkg/polyline"
)

// State is the monitor's session state.
type State string

const (
	// StateIdle means no navigation session exists.
	StateIdle State = "idle"

	// StateActive means the trip is in progress and movement is tracked.
	StateActive State = "active"

	// StateStillnessSuspected is entered when no movement has been seen
	// for the stillness threshold. The prompt fires on entry; the
	// countdown starts ticking one beat later unless movement or an
	// acknowledgement returns the session to Active first.
	StateStillnessSuspected State = "stillness_suspected"

	// StateCountdownRunning means the SOS countdown is ticking.
	StateCountdownRunning State = "countdown_running"

	// StateResolved means an SOS fired for this session. No further
	// automatic escalation occurs until the trip ends.
	StateResolved State = "resolved"
)

// Default thresholds.
const (
	DefaultTickInterval       = 1 * time.Second
	DefaultStillnessThreshold = 10 * time.Second
	DefaultMovementThresholdM = 2.0
	DefaultCountdownSeconds   = 10
)

// Monitor errors.
var (
	ErrSessionActive     = errors.New("a navigation session is already active")
	ErrNoSession         = errors.New("no active navigation session")
	ErrRouteNotNavigable = errors.New("route has no coordinates")
)

// Dispatcher fires an SOS for a position. *sos.Dispatcher satisfies it.
type Dispatcher interface {
	Trigger(pos polyline.Coordinate)
}

// Notifier delivers the local stillness prompt (speech, vibration).
type Notifier interface {
	StillnessPrompt()
}

// Config holds configuration for the monitor.
type Config struct {
	// Dispatcher fires SOS events (required).
	Dispatcher Dispatcher

	// Notifier delivers local prompts (optional).
	Notifier Notifier

	// Metrics counts dispatched SOS events (optional).
	Metrics *telemetry.Metrics

	// Logger for monitor operations.
	Logger zerolog.Logger

	// Now overrides the clock (optional, for tests).
	Now func() time.Time

	// TickInterval is the period of the stillness check (optional).
	TickInterval time.Duration

	// StillnessThreshold is how long without movement counts as still
	// (optional).
	StillnessThreshold time.Duration

	// MovementThresholdMeters is the minimum great-circle displacement
	// that counts as movement (optional).
	MovementThresholdMeters float64

	// CountdownSeconds is the SOS countdown length (optional).
	CountdownSeconds int
}

// Snapshot is an observable copy of the session state.
type Snapshot struct {
	State              State               `json:"state"`
	RouteID            string              `json:"routeId,omitempty"`
	Position           polyline.Coordinate `json:"position"`
	LastMovementAt     time.Time           `json:"lastMovementAt"`
	CountdownRemaining int                 `json:"countdownRemaining"`
	SOSFired           bool                `json:"sosFired"`
}

// Monitor is the stillness state machine for one navigation session at
// a time. All transitions happen inside a single locked step so a tick
// and a position update can never interleave mid-transition.
type Monitor struct {
	dispatcher Dispatcher
	notifier   Notifier
	metrics    *telemetry.Metrics
	logger     zerolog.Logger
	now        func() time.Time

	tickInterval       time.Duration
	stillnessThreshold time.Duration
	movementThreshold  float64
	countdownSeconds   int

	mu             sync.Mutex
	state          State
	route          safety.Route
	position       polyline.Coordinate
	lastMovementAt time.Time
	simulatedStop  bool
	countdown      int
	sosFired       bool
	stop           chan struct{}
}

// NewMonitor creates a monitor in the Idle state.
func NewMonitor(cfg Config) *Monitor {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	tick := cfg.TickInterval
	if tick <= 0 {
		tick = DefaultTickInterval
	}
	stillness := cfg.StillnessThreshold
	if stillness <= 0 {
		stillness = DefaultStillnessThreshold
	}
	movement := cfg.MovementThresholdMeters
	if movement <= 0 {
		movement = DefaultMovementThresholdM
	}
	countdown := cfg.CountdownSeconds
	if countdown <= 0 {
		countdown = DefaultCountdownSeconds
	}

	return &Monitor{
		dispatcher:         cfg.Dispatcher,
		notifier:           cfg.Notifier,
		metrics:            cfg.Metrics,
		logger:             cfg.Logger.With().Str("component", "navigation").Logger(),
		now:                now,
		tickInterval:       tick,
		stillnessThreshold: stillness,
		movementThreshold:  movement,
		countdownSeconds:   countdown,
		state:              StateIdle,
	}
}

// Start begins a navigation session on the selected route.
func (m *Monitor) Start(route safety.Route) error {
	if !route.Navigable() {
		return ErrRouteNotNavigable
	}

	m.mu.Lock()
	if m.state != StateIdle {
		m.mu.Unlock()
		return ErrSessionActive
	}

	m.state = StateActive
	m.route = route
	m.position = route.Coordinates[0]
	m.lastMovementAt = m.now()
	m.simulatedStop = false
	m.countdown = 0
	m.sosFired = false
	m.stop = make(chan struct{})
	stop := m.stop
	m.mu.Unlock()

	m.logger.Info().
		Str("route_id", route.ID).
		Str("destination", route.End).
		Msg("navigation started")

	go m.run(stop)
	return nil
}

// run drives the periodic stillness check until the session ends.
func (m *Monitor) run(stop chan struct{}) {
	ticker := time.NewTicker(m.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.mu.Lock()
			m.step(m.now())
			done := m.state == StateResolved || m.state == StateIdle
			m.mu.Unlock()
			if done {
				return
			}
		}
	}
}

// step advances the state machine by one tick. Callers must hold m.mu.
func (m *Monitor) step(now time.Time) {
	switch m.state {
	case StateActive:
		if m.simulatedStop || now.Sub(m.lastMovementAt) >= m.stillnessThreshold {
			m.state = StateStillnessSuspected
			m.countdown = m.countdownSeconds
			m.logger.Warn().
				Dur("still_for", now.Sub(m.lastMovementAt)).
				Bool("simulated", m.simulatedStop).
				Msg("stillness suspected, prompting user")
			if m.notifier != nil {
				m.notifier.StillnessPrompt()
			}
		}

	case StateStillnessSuspected:
		// The prompt had one beat to land; now the countdown ticks.
		m.state = StateCountdownRunning
		m.logger.Warn().
			Int("countdown", m.countdown).
			Msg("no response to prompt, countdown running")

	case StateCountdownRunning:
		m.countdown--
		if m.countdown <= 0 {
			m.fireSOSLocked()
		}
	}
}

// fireSOSLocked dispatches the automatic SOS exactly once and resolves
// the session. Callers must hold m.mu.
func (m *Monitor) fireSOSLocked() {
	if !m.sosFired {
		m.sosFired = true
		m.dispatcher.Trigger(m.position)
		m.metrics.RecordSOSDispatched(context.Background(), "auto")
		m.logger.Error().
			Float64("lat", m.position.Lat).
			Float64("lon", m.position.Lon).
			Msg("countdown expired, automatic SOS dispatched")
	}
	m.state = StateResolved
}

// UpdatePosition feeds a live position into the session. Displacement
// beyond the movement threshold resets the stillness clock and cancels
// any running countdown.
func (m *Monitor) UpdatePosition(pos polyline.Coordinate) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateActive && m.state != StateStillnessSuspected && m.state != StateCountdownRunning {
		return
	}

	moved := polyline.Distance(m.position, pos) > m.movementThreshold
	m.position = pos

	if moved {
		m.lastMovementAt = m.now()
		m.simulatedStop = false
		if m.state == StateCountdownRunning || m.state == StateStillnessSuspected {
			m.state = StateActive
			m.countdown = 0
			m.logger.Info().Msg("movement detected, countdown cancelled")
		}
	}
}

// Acknowledge is the explicit "I am safe" response. It cancels a running
// countdown and returns the session to Active.
func (m *Monitor) Acknowledge() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateCountdownRunning && m.state != StateStillnessSuspected {
		return
	}

	m.state = StateActive
	m.countdown = 0
	m.lastMovementAt = m.now()
	m.simulatedStop = false
	m.logger.Info().Msg("user acknowledged, countdown cancelled")
}

// SimulateStop forces the stillness transition on the next tick. Test
// hook mirrored from the product's demo mode.
func (m *Monitor) SimulateStop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateActive {
		m.simulatedStop = true
	}
}

// ManualSOS fires an SOS immediately, bypassing the countdown. It works
// from any state; with an active session the session resolves.
func (m *Monitor) ManualSOS() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dispatcher.Trigger(m.position)
	m.metrics.RecordSOSDispatched(context.Background(), "manual")
	m.logger.Error().Msg("manual SOS dispatched")

	if m.state != StateIdle {
		m.sosFired = true
		m.state = StateResolved
	}
}

// End destroys the session from any state and cancels all timers.
func (m *Monitor) End() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateIdle {
		return
	}

	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
	m.state = StateIdle
	m.route = safety.Route{}
	m.simulatedStop = false
	m.countdown = 0
	m.logger.Info().Msg("navigation ended")
}

// State returns the current session state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Snapshot returns an observable copy of the session.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		State:              m.state,
		Position:           m.position,
		LastMovementAt:     m.lastMovementAt,
		CountdownRemaining: m.countdown,
		SOSFired:           m.sosFired,
	}
	if m.state != StateIdle {
		snap.RouteID = m.route.ID
	}
	return snap
}
