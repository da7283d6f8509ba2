// Package store provides persistent local key-value storage for client
// state that must survive restarts and work without connectivity.
package store

import (
	"encoding/json"
	"errors"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("key not found")

// Well-known storage keys.
const (
	KeyAuthToken        = "auth_token"
	KeyCachedUser       = "cached_user"
	KeySavedRoutes      = "saved_routes"
	KeySearchHistory    = "search_history"
	KeyPendingIncidents = "pending_incidents"
	KeySettings         = "settings"
)

// Store is a persistent key-value store.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) ([]byte, error)

	// Set stores value under key, replacing any existing value.
	Set(key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Clear removes all keys.
	Clear() error
}

// GetJSON reads and decodes the value at key. It returns the zero value
// and false when the key is missing or the stored bytes do not decode;
// corrupt entries never surface as errors to callers.
func GetJSON[T any](s Store, key string) (T, bool) {
	var value T

	data, err := s.Get(key)
	if err != nil {
		return value, false
	}

	if err := json.Unmarshal(data, &value); err != nil {
		return value, false
	}
	return value, true
}

// SetJSON encodes value and stores it under key.
func SetJSON[T any](s Store, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.Set(key, data)
}

// MaxSearchHistory is the maximum number of remembered searches.
const MaxSearchHistory = 5

// PushSearchHistory prepends query to the stored search history, keeping
// entries unique and capped at MaxSearchHistory, most recent first.
func PushSearchHistory(s Store, query string) error {
	history, _ := GetJSON[[]string](s, KeySearchHistory)

	updated := make([]string, 0, MaxSearchHistory)
	updated = append(updated, query)
	for _, entry := range history {
		if entry == query {
			continue
		}
		updated = append(updated, entry)
		if len(updated) == MaxSearchHistory {
			break
		}
	}

	return SetJSON(s, KeySearchHistory, updated)
}

// SearchHistory returns the stored search history, most recent first.
func SearchHistory(s Store) []string {
	history, _ := GetJSON[[]string](s, KeySearchHistory)
	return history
}
