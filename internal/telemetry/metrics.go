package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics are the service's domain counters. Instrument creation
// failures leave the field nil and recording becomes a no-op; losing a
// counter must never take down a safety feature.
type Metrics struct {
	routesBuilt       metric.Int64Counter
	incidentsReported metric.Int64Counter
	incidentsQueued   metric.Int64Counter
	syncRuns          metric.Int64Counter
	sosDispatched     metric.Int64Counter
}

// NewMetrics registers the domain instruments on the given meter.
func NewMetrics(meter metric.Meter) *Metrics {
	m := &Metrics{}

	m.routesBuilt, _ = meter.Int64Counter("safewalk.routes.built",
		metric.WithDescription("Scored routes built, by source"))
	m.incidentsReported, _ = meter.Int64Counter("safewalk.incidents.reported",
		metric.WithDescription("Incident reports accepted"))
	m.incidentsQueued, _ = meter.Int64Counter("safewalk.incidents.queued",
		metric.WithDescription("Incident reports queued offline"))
	m.syncRuns, _ = meter.Int64Counter("safewalk.sync.runs",
		metric.WithDescription("Offline queue sync attempts, by outcome"))
	m.sosDispatched, _ = meter.Int64Counter("safewalk.sos.dispatched",
		metric.WithDescription("SOS events dispatched, by origin"))

	return m
}

// RecordRoutesBuilt counts built routes; fallback marks the demo set.
func (m *Metrics) RecordRoutesBuilt(ctx context.Context, n int, fallback bool) {
	if m == nil || m.routesBuilt == nil {
		return
	}
	source := "provider"
	if fallback {
		source = "fallback"
	}
	m.routesBuilt.Add(ctx, int64(n), metric.WithAttributes(attribute.String("source", source)))
}

// RecordIncidentReported counts an accepted report.
func (m *Metrics) RecordIncidentReported(ctx context.Context) {
	if m == nil || m.incidentsReported == nil {
		return
	}
	m.incidentsReported.Add(ctx, 1)
}

// RecordIncidentQueued counts a report held in the offline queue.
func (m *Metrics) RecordIncidentQueued(ctx context.Context) {
	if m == nil || m.incidentsQueued == nil {
		return
	}
	m.incidentsQueued.Add(ctx, 1)
}

// RecordSyncRun counts a queue sync attempt.
func (m *Metrics) RecordSyncRun(ctx context.Context, success bool) {
	if m == nil || m.syncRuns == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.syncRuns.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordSOSDispatched counts an SOS, by origin (auto or manual).
func (m *Metrics) RecordSOSDispatched(ctx context.Context, origin string) {
	if m == nil || m.sosDispatched == nil {
		return
	}
	m.sosDispatched.Add(ctx, 1, metric.WithAttributes(attribute.String("origin", origin)))
}
