package models

import "github.com/safewalk/safewalk/internal/geocode"

// SuggestResponse is a list of typeahead suggestions. The query is
// echoed back so clients can discard responses for superseded input.
type SuggestResponse struct {
	Query       string               `json:"query"`
	Suggestions []geocode.Suggestion `json:"suggestions"`
}

// SearchHistoryResponse is the stored search history, most recent first.
type SearchHistoryResponse struct {
	Queries []string `json:"queries"`
}
