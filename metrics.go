package sparsim

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting simulation metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    decisions *prometheus.CounterVec
//	}
//
//	func (p *PrometheusCollector) RecordDecision(d sparsim.Decision) {
//	    p.decisions.WithLabelValues(d.String()).Inc()
//	}
type MetricsCollector interface {
	// RecordIngest is called after each vertex is ingested and placed.
	RecordIngest(duration time.Duration, err error)

	// RecordDecision is called with the outcome of each placement decision.
	RecordDecision(d Decision)

	// RecordPhase is called after each run phase with the cost it left.
	RecordPhase(name string, cost int, duration time.Duration)

	// RecordMergeSwap is called after each merge pass with the number of
	// attempted and committed group swaps.
	RecordMergeSwap(attempts, committed int)

	// RecordExchange is called with the number of virtual primaries
	// exchanged in one pass.
	RecordExchange(n int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordIngest(time.Duration, error)      {}
func (NoopMetricsCollector) RecordDecision(Decision)                {}
func (NoopMetricsCollector) RecordPhase(string, int, time.Duration) {}
func (NoopMetricsCollector) RecordMergeSwap(int, int)               {}
func (NoopMetricsCollector) RecordExchange(int)                     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	IngestCount      atomic.Int64
	IngestErrors     atomic.Int64
	IngestTotalNanos atomic.Int64
	Retained         atomic.Int64
	Moved            atomic.Int64
	Swapped          atomic.Int64
	Reverted         atomic.Int64
	Phases           atomic.Int64
	LastPhaseCost    atomic.Int64
	MergeAttempts    atomic.Int64
	MergeCommitted   atomic.Int64
	Exchanged        atomic.Int64
}

// RecordIngest implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIngest(duration time.Duration, err error) {
	b.IngestCount.Add(1)
	b.IngestTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.IngestErrors.Add(1)
	}
}

// RecordDecision implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDecision(d Decision) {
	switch d {
	case Retained:
		b.Retained.Add(1)
	case Moved:
		b.Moved.Add(1)
	case Swapped:
		b.Swapped.Add(1)
	case Reverted:
		b.Reverted.Add(1)
	}
}

// RecordPhase implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPhase(_ string, cost int, _ time.Duration) {
	b.Phases.Add(1)
	b.LastPhaseCost.Store(int64(cost))
}

// RecordMergeSwap implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMergeSwap(attempts, committed int) {
	b.MergeAttempts.Add(int64(attempts))
	b.MergeCommitted.Add(int64(committed))
}

// RecordExchange implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExchange(n int) {
	b.Exchanged.Add(int64(n))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		IngestCount:    b.IngestCount.Load(),
		IngestErrors:   b.IngestErrors.Load(),
		IngestAvgNanos: b.getAvgIngestNanos(),
		Retained:       b.Retained.Load(),
		Moved:          b.Moved.Load(),
		Swapped:        b.Swapped.Load(),
		Reverted:       b.Reverted.Load(),
		Phases:         b.Phases.Load(),
		LastPhaseCost:  b.LastPhaseCost.Load(),
		MergeAttempts:  b.MergeAttempts.Load(),
		MergeCommitted: b.MergeCommitted.Load(),
		Exchanged:      b.Exchanged.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgIngestNanos() int64 {
	count := b.IngestCount.Load()
	if count == 0 {
		return 0
	}
	return b.IngestTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	IngestCount    int64
	IngestErrors   int64
	IngestAvgNanos int64
	Retained       int64
	Moved          int64
	Swapped        int64
	Reverted       int64
	Phases         int64
	LastPhaseCost  int64
	MergeAttempts  int64
	MergeCommitted int64
	Exchanged      int64
}
