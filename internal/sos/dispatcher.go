// Package sos dispatches emergency alerts: a synchronous local alert so
// the user always gets feedback, plus a best-effort backend delivery.
package sos

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/safewalk/safewalk/pkg/polyline"
)

// DefaultDeliveryTimeout bounds the backend SOS call.
const DefaultDeliveryTimeout = 15 * time.Second

// Sender delivers an SOS to the backend. *backend.Client satisfies it.
type Sender interface {
	SendSOS(ctx context.Context, lat, lng float64, at time.Time) error
}

// Notifier drives the local alert sink (speech, vibration).
type Notifier interface {
	SOSAlert(pos polyline.Coordinate)
}

// EventPublisher publishes dispatch events for downstream consumers.
type EventPublisher interface {
	PublishSOS(ctx context.Context, d Dispatch) error
}

// Dispatch is the observable record of one SOS.
type Dispatch struct {
	ID          string              `json:"id"`
	Position    polyline.Coordinate `json:"position"`
	TriggeredAt time.Time           `json:"triggeredAt"`

	// Delivered and DeliveryError record the outcome of the backend
	// call. Delivery is best-effort; a failed delivery never blocks or
	// undoes the local alert.
	Delivered     bool   `json:"delivered"`
	DeliveryError string `json:"deliveryError,omitempty"`

	Dismissed bool `json:"dismissed,omitempty"`
}

// Config holds configuration for the dispatcher.
type Config struct {
	// Sender delivers SOS events to the backend (required).
	Sender Sender

	// Notifier drives the local alert (optional).
	Notifier Notifier

	// Events receives dispatch outcomes (optional).
	Events EventPublisher

	// Logger for dispatcher operations.
	Logger zerolog.Logger

	// Now overrides the clock (optional, for tests).
	Now func() time.Time

	// DeliveryTimeout bounds the backend call (optional).
	DeliveryTimeout time.Duration

	// OnDelivery is invoked after the backend call settles (optional,
	// for tests and UI updates).
	OnDelivery func(Dispatch)
}

// Dispatcher fires SOS events. Triggering is fire-and-forget from the
// caller's perspective: the local alert runs synchronously, the network
// delivery runs in the background on its own context so an aborted
// request cannot cancel it.
type Dispatcher struct {
	sender          Sender
	notifier        Notifier
	events          EventPublisher
	logger          zerolog.Logger
	now             func() time.Time
	deliveryTimeout time.Duration
	onDelivery      func(Dispatch)

	mu     sync.Mutex
	active *Dispatch
}

// NewDispatcher creates an SOS dispatcher.
func NewDispatcher(cfg Config) *Dispatcher {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	timeout := cfg.DeliveryTimeout
	if timeout <= 0 {
		timeout = DefaultDeliveryTimeout
	}

	return &Dispatcher{
		sender:          cfg.Sender,
		notifier:        cfg.Notifier,
		events:          cfg.Events,
		logger:          cfg.Logger.With().Str("component", "sos").Logger(),
		now:             now,
		deliveryTimeout: timeout,
		onDelivery:      cfg.OnDelivery,
	}
}

// Trigger fires an SOS at the given position. The local alert is driven
// before this returns; backend delivery continues in the background and
// its outcome is recorded on the dispatch.
func (d *Dispatcher) Trigger(pos polyline.Coordinate) {
	dispatch := Dispatch{
		ID:          "sos_" + uuid.NewString(),
		Position:    pos,
		TriggeredAt: d.now(),
	}

	d.mu.Lock()
	d.active = &dispatch
	d.mu.Unlock()

	d.logger.Error().
		Str("sos_id", dispatch.ID).
		Float64("lat", pos.Lat).
		Float64("lon", pos.Lon).
		Msg("SOS triggered")

	if d.notifier != nil {
		d.notifier.SOSAlert(pos)
	}

	go d.deliver(dispatch)
}

// deliver runs the backend call on a detached context so the trigger
// path (often a cancelled HTTP request) cannot abort it.
func (d *Dispatcher) deliver(dispatch Dispatch) {
	ctx, cancel := context.WithTimeout(context.Background(), d.deliveryTimeout)
	defer cancel()

	err := d.sender.SendSOS(ctx, dispatch.Position.Lat, dispatch.Position.Lon, dispatch.TriggeredAt)
	if err != nil {
		dispatch.DeliveryError = err.Error()
		d.logger.Error().
			Err(err).
			Str("sos_id", dispatch.ID).
			Msg("SOS backend delivery failed")
	} else {
		dispatch.Delivered = true
		d.logger.Info().
			Str("sos_id", dispatch.ID).
			Msg("SOS delivered to backend")
	}

	d.mu.Lock()
	if d.active != nil && d.active.ID == dispatch.ID {
		d.active.Delivered = dispatch.Delivered
		d.active.DeliveryError = dispatch.DeliveryError
	}
	d.mu.Unlock()

	if d.events != nil {
		if err := d.events.PublishSOS(ctx, dispatch); err != nil {
			d.logger.Warn().Err(err).Str("sos_id", dispatch.ID).Msg("failed to publish SOS event")
		}
	}

	if d.onDelivery != nil {
		d.onDelivery(dispatch)
	}
}

// Dismiss clears the active SOS display state. It does not un-send
// anything already dispatched.
func (d *Dispatcher) Dismiss() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active != nil {
		d.active.Dismissed = true
		d.logger.Info().Str("sos_id", d.active.ID).Msg("SOS dismissed")
		d.active = nil
	}
}

// Active returns the current SOS, if one has been triggered and not
// dismissed.
func (d *Dispatcher) Active() (Dispatch, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active == nil {
		return Dispatch{}, false
	}
	return *d.active, true
}
