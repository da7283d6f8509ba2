// Package settings persists user preferences for route choice and
// notifications.
package settings

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/safewalk/safewalk/internal/routing"
	"github.com/safewalk/safewalk/internal/store"
)

// Settings errors.
var (
	ErrInvalidScore = errors.New("minimum safety score must be between 0 and 100")
	ErrInvalidMode  = errors.New("unknown travel mode")
)

// Notifications holds the per-channel toggles.
type Notifications struct {
	Push  bool `json:"push"`
	SMS   bool `json:"sms"`
	Email bool `json:"email"`
}

// Settings are the user's preferences.
type Settings struct {
	// MinSafetyScore is the threshold below which a route is flagged
	// in the UI. Routes below it are kept, not hidden.
	MinSafetyScore int `json:"minSafetyScore"`

	AvoidUnlitAreas bool               `json:"avoidUnlitAreas"`
	AvoidCrowds     bool               `json:"avoidCrowds"`
	TravelMode      routing.TravelMode `json:"travelMode"`
	Notifications   Notifications      `json:"notifications"`
}

// Defaults returns the out-of-the-box settings.
func Defaults() Settings {
	return Settings{
		MinSafetyScore:  60,
		AvoidUnlitAreas: true,
		AvoidCrowds:     false,
		TravelMode:      routing.ModeWalking,
		Notifications: Notifications{
			Push: true,
			SMS:  true,
		},
	}
}

// Validate checks the settings for storable values.
func (s Settings) Validate() error {
	if s.MinSafetyScore < 0 || s.MinSafetyScore > 100 {
		return ErrInvalidScore
	}
	if !s.TravelMode.Valid() {
		return ErrInvalidMode
	}
	return nil
}

// Service loads and persists settings.
type Service struct {
	store  store.Store
	logger zerolog.Logger
}

// NewService creates a settings service.
func NewService(s store.Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  s,
		logger: logger.With().Str("component", "settings").Logger(),
	}
}

// Get returns the stored settings, or the defaults when nothing is
// stored or the stored entry does not parse.
func (s *Service) Get() Settings {
	stored, ok := store.GetJSON[Settings](s.store, store.KeySettings)
	if !ok {
		return Defaults()
	}
	if stored.Validate() != nil {
		s.logger.Warn().Msg("stored settings invalid, using defaults")
		return Defaults()
	}
	return stored
}

// Put validates and persists the settings.
func (s *Service) Put(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	return store.SetJSON(s.store, store.KeySettings, settings)
}
