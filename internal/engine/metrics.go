package engine

import (
	"sync"
	"time"
)

// Metrics tracks aggregate batch engine statistics across runs.
type Metrics struct {
	mu sync.RWMutex

	// Counters. Attempts/Successes/Failures are updated atomically by
	// workers; the rest only under mu.
	Attempts  int64
	Successes int64
	Failures  int64
	TotalRuns int64
	Dropped   int64

	// Timings
	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

func (m *Metrics) record(result *Result) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRuns++
	m.Dropped += int64(result.Failed)
	m.LastRunAt = time.Now()
	m.LastRunDuration = result.Duration
	m.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (e *Engine) GetMetrics() Metrics {
	e.metrics.mu.RLock()
	defer e.metrics.mu.RUnlock()

	return Metrics{
		Attempts:        e.metrics.Attempts,
		Successes:       e.metrics.Successes,
		Failures:        e.metrics.Failures,
		TotalRuns:       e.metrics.TotalRuns,
		Dropped:         e.metrics.Dropped,
		LastRunAt:       e.metrics.LastRunAt,
		LastRunDuration: e.metrics.LastRunDuration,
		TotalDuration:   e.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (e *Engine) MetricsSnapshot() map[string]interface{} {
	m := e.GetMetrics()
	return map[string]interface{}{
		"attempts":          m.Attempts,
		"successes":         m.Successes,
		"failures":          m.Failures,
		"total_runs":        m.TotalRuns,
		"dropped_tasks":     m.Dropped,
		"last_run_at":       m.LastRunAt,
		"last_run_duration": m.LastRunDuration.String(),
		"total_duration":    m.TotalDuration.String(),
	}
}
