// Package worker provides background job processing for SafeWalk.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/safewalk/safewalk/internal/incident"
	"github.com/safewalk/safewalk/internal/telemetry"
)

// Syncer drains the offline incident queue. *incident.Repository
// satisfies it.
type Syncer interface {
	Sync(ctx context.Context) bool
	Pending() []incident.Incident
}

// SyncJobConfig holds configuration for creating a SyncJob.
type SyncJobConfig struct {
	// Syncer drains the queue (required).
	Syncer Syncer

	// Online reports backend connectivity. Nil means always try.
	Online func() bool

	// Metrics records sync outcomes (optional).
	Metrics *telemetry.Metrics

	// Interval between periodic sync attempts. Default: 1 minute.
	Interval time.Duration

	Logger zerolog.Logger
}

// DefaultSyncInterval is how often the periodic sync fires.
const DefaultSyncInterval = time.Minute

// SyncJob submits queued incident reports to the backend. It runs on a
// timer and can also be kicked by a Pub/Sub message, so reconnects are
// picked up quickly without hammering an offline backend.
type SyncJob struct {
	syncer   Syncer
	online   func() bool
	metrics  *telemetry.Metrics
	interval time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	lastRun SyncResult
}

// SyncResult is the outcome of one sync attempt.
type SyncResult struct {
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`

	// Skipped means the backend was known offline and no attempt was
	// made; the queue is untouched.
	Skipped bool `json:"skipped"`

	Success bool `json:"success"`
	Pending int  `json:"pending"`
}

// NewSyncJob creates a sync job processor.
func NewSyncJob(cfg SyncJobConfig) *SyncJob {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &SyncJob{
		syncer:   cfg.Syncer,
		online:   cfg.Online,
		metrics:  cfg.Metrics,
		interval: interval,
		logger:   cfg.Logger.With().Str("component", "sync-job").Logger(),
	}
}

// Run performs one sync attempt and returns its result.
func (j *SyncJob) Run(ctx context.Context) SyncResult {
	start := time.Now()
	result := SyncResult{StartedAt: start}

	pending := len(j.syncer.Pending())
	if pending == 0 {
		result.Success = true
		result.Duration = time.Since(start)
		j.record(result)
		return result
	}

	if j.online != nil && !j.online() {
		j.logger.Debug().Int("pending", pending).Msg("backend offline, sync skipped")
		result.Skipped = true
		result.Pending = pending
		result.Duration = time.Since(start)
		j.record(result)
		return result
	}

	result.Success = j.syncer.Sync(ctx)
	result.Pending = len(j.syncer.Pending())
	result.Duration = time.Since(start)

	j.metrics.RecordSyncRun(ctx, result.Success)
	j.logger.Info().
		Bool("success", result.Success).
		Int("pending", result.Pending).
		Dur("duration", result.Duration).
		Msg("incident sync completed")

	j.record(result)
	return result
}

// Start runs the periodic sync loop until the context is cancelled.
func (j *SyncJob) Start(ctx context.Context) {
	j.logger.Info().Dur("interval", j.interval).Msg("starting periodic incident sync")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info().Msg("stopping periodic incident sync")
			return
		case <-ticker.C:
			j.Run(ctx)
		}
	}
}

// LastRun returns the most recent sync result.
func (j *SyncJob) LastRun() SyncResult {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastRun
}

func (j *SyncJob) record(result SyncResult) {
	j.mu.Lock()
	j.lastRun = result
	j.mu.Unlock()
}
