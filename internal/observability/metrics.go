// Package observability collects run counters for the history walk.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RunMetrics counts walk progress. Each run owns an independent registry so
// repeated runs in one process never collide on collector registration.
type RunMetrics struct {
	registry *prometheus.Registry

	commitsProcessed prometheus.Counter
	recordsEmitted   prometheus.Counter
	pathsSkipped     *prometheus.CounterVec
}

// NewRunMetrics creates the counters on a fresh registry.
func NewRunMetrics() *RunMetrics {
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		commitsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lineage_commits_processed_total",
			Help: "Commits walked along the first-parent chain.",
		}),
		recordsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lineage_records_emitted_total",
			Help: "Line lifetime records emitted.",
		}),
		pathsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lineage_paths_skipped_total",
			Help: "Paths excluded from tracking, by reason.",
		}, []string{"reason"}),
	}

	m.registry.MustRegister(m.commitsProcessed, m.recordsEmitted, m.pathsSkipped)

	return m
}

// CommitProcessed counts one walked commit.
func (m *RunMetrics) CommitProcessed() {
	m.commitsProcessed.Inc()
}

// RecordEmitted counts one emitted lifetime record.
func (m *RunMetrics) RecordEmitted() {
	m.recordsEmitted.Inc()
}

// PathSkipped counts one excluded path under the given reason.
func (m *RunMetrics) PathSkipped(reason string) {
	m.pathsSkipped.WithLabelValues(reason).Inc()
}

// Handler serves the registry as a /metrics scrape endpoint.
func (m *RunMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Snapshot is a point-in-time view of the counters for log output.
type Snapshot struct {
	CommitsProcessed int64
	RecordsEmitted   int64
	PathsSkipped     map[string]int64
}

// Snapshot gathers the current counter values.
func (m *RunMetrics) Snapshot() (Snapshot, error) {
	snap := Snapshot{PathsSkipped: make(map[string]int64)}

	families, err := m.registry.Gather()
	if err != nil {
		return snap, fmt.Errorf("gather metrics: %w", err)
	}

	for _, family := range families {
		switch family.GetName() {
		case "lineage_commits_processed_total":
			snap.CommitsProcessed = int64(family.GetMetric()[0].GetCounter().GetValue())
		case "lineage_records_emitted_total":
			snap.RecordsEmitted = int64(family.GetMetric()[0].GetCounter().GetValue())
		case "lineage_paths_skipped_total":
			for _, metric := range family.GetMetric() {
				reason := ""

				for _, label := range metric.GetLabel() {
					if label.GetName() == "reason" {
						reason = label.GetValue()
					}
				}

				snap.PathsSkipped[reason] = int64(metric.GetCounter().GetValue())
			}
		}
	}

	return snap, nil
}
