package safety

import (
	"math/rand"
	"sync"
	"time"
)

// ScoreFunc produces a safety score in [0,100] for a candidate route.
// The engine derives sub-scores and the display color deterministically
// from the returned value, so swapping in a fixed function makes the
// whole mapping deterministic for tests.
type ScoreFunc func() int

// DefaultScoreFunc returns the placeholder scoring policy: a bounded
// pseudo-random score in [60,100). There is no real risk model yet;
// this stands in until one exists.
func DefaultScoreFunc() ScoreFunc {
	var mu sync.Mutex
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return func() int {
		mu.Lock()
		defer mu.Unlock()
		return 60 + rng.Intn(40)
	}
}

// FixedScoreFunc returns a ScoreFunc that always yields score.
func FixedScoreFunc(score int) ScoreFunc {
	return func() int { return score }
}

// deriveLighting maps a safety score to the lighting sub-score.
func deriveLighting(score int) int {
	if score >= SafeScoreThreshold {
		return 90
	}
	return 60
}

// deriveColor maps a safety score to its display color.
func deriveColor(score int) string {
	if score >= SafeScoreThreshold {
		return ColorSafe
	}
	return ColorCaution
}

// deriveDescription produces the free-text rationale for a score.
func deriveDescription(score int) string {
	if score >= SafeScoreThreshold {
		return "Well-lit main streets with steady foot traffic"
	}
	return "Shorter path through quieter, dimly lit blocks"
}
