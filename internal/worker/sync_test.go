package worker_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/safewalk/safewalk/internal/incident"
	"github.com/safewalk/safewalk/internal/worker"
)

type fakeSyncer struct {
	pending   []incident.Incident
	succeed   bool
	syncCalls int
}

func (f *fakeSyncer) Sync(context.Context) bool {
	f.syncCalls++
	if f.succeed {
		f.pending = nil
	}
	return f.succeed
}

func (f *fakeSyncer) Pending() []incident.Incident {
	return f.pending
}

func pendingReports(n int) []incident.Incident {
	reports := make([]incident.Incident, n)
	for i := range reports {
		reports[i] = incident.NewIncident(
			incident.CategoryCrime, incident.SeverityLow,
			"test", "", 40.7, -74.0, "")
		reports[i].Pending = true
	}
	return reports
}

func newSyncJob(s worker.Syncer, online func() bool) *worker.SyncJob {
	return worker.NewSyncJob(worker.SyncJobConfig{
		Syncer: s,
		Online: online,
		Logger: zerolog.New(io.Discard),
	})
}

func TestSyncJob_EmptyQueueIsSuccess(t *testing.T) {
	syncer := &fakeSyncer{}
	job := newSyncJob(syncer, nil)

	result := job.Run(context.Background())

	assert.True(t, result.Success)
	assert.False(t, result.Skipped)
	assert.Zero(t, result.Pending)
	assert.Zero(t, syncer.syncCalls, "empty queue should not hit the backend")
}

func TestSyncJob_DrainsQueue(t *testing.T) {
	syncer := &fakeSyncer{pending: pendingReports(3), succeed: true}
	job := newSyncJob(syncer, nil)

	result := job.Run(context.Background())

	assert.True(t, result.Success)
	assert.Zero(t, result.Pending)
	assert.Equal(t, 1, syncer.syncCalls)
}

func TestSyncJob_FailureKeepsQueue(t *testing.T) {
	syncer := &fakeSyncer{pending: pendingReports(2), succeed: false}
	job := newSyncJob(syncer, nil)

	result := job.Run(context.Background())

	assert.False(t, result.Success)
	assert.Equal(t, 2, result.Pending)
}

func TestSyncJob_SkipsWhenOffline(t *testing.T) {
	syncer := &fakeSyncer{pending: pendingReports(2), succeed: true}
	job := newSyncJob(syncer, func() bool { return false })

	result := job.Run(context.Background())

	assert.True(t, result.Skipped)
	assert.False(t, result.Success)
	assert.Equal(t, 2, result.Pending)
	assert.Zero(t, syncer.syncCalls, "offline sync should not hit the backend")
}

func TestSyncJob_LastRun(t *testing.T) {
	syncer := &fakeSyncer{pending: pendingReports(1), succeed: true}
	job := newSyncJob(syncer, nil)

	before := job.LastRun()
	assert.True(t, before.StartedAt.IsZero())

	job.Run(context.Background())

	after := job.LastRun()
	assert.True(t, after.Success)
	assert.False(t, after.StartedAt.IsZero())
}

func TestSyncJob_PeriodicLoopStopsOnCancel(t *testing.T) {
	syncer := &fakeSyncer{succeed: true}
	job := worker.NewSyncJob(worker.SyncJobConfig{
		Syncer:   syncer,
		Interval: time.Millisecond,
		Logger:   zerolog.New(io.Discard),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sync loop did not stop after cancel")
	}
}
