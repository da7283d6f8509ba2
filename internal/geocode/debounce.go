package geocode

import (
	"context"
	"sync"
	"time"
)

// DefaultQuietPeriod is how long input must be quiet before a search fires.
const DefaultQuietPeriod = 400 * time.Millisecond

// Debouncer coalesces rapid successive queries into a single search. Each
// call to Do supersedes any pending one; only the result of the latest
// query is ever published. Stale results from superseded searches are
// discarded even when they finish after a newer search.
type Debouncer struct {
	service *Service
	quiet   time.Duration

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	latest []Suggestion
	onDone func([]Suggestion)
}

// NewDebouncer creates a debouncer over the given service. A quiet period
// of zero uses the default. onDone, when non-nil, is invoked with each
// published result set.
func NewDebouncer(service *Service, quiet time.Duration, onDone func([]Suggestion)) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Debouncer{
		service: service,
		quiet:   quiet,
		onDone:  onDone,
	}
}

// Do schedules a search for query after the quiet period. Any previously
// scheduled search is cancelled. Queries below the minimum length clear the
// published result immediately.
func (d *Debouncer) Do(ctx context.Context, query string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	if len(query) < d.service.minLength {
		d.publishLocked(gen, nil)
		return
	}

	d.timer = time.AfterFunc(d.quiet, func() {
		suggestions := d.service.Suggest(ctx, query)

		d.mu.Lock()
		defer d.mu.Unlock()
		d.publishLocked(gen, suggestions)
	})
}

// publishLocked records the result set if gen is still current. Callers
// must hold d.mu.
func (d *Debouncer) publishLocked(gen uint64, suggestions []Suggestion) {
	if gen != d.gen {
		return
	}
	d.latest = suggestions
	if d.onDone != nil {
		d.onDone(suggestions)
	}
}

// Latest returns the most recently published result set.
func (d *Debouncer) Latest() []Suggestion {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latest
}

// Stop cancels any pending search and invalidates in-flight results.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
