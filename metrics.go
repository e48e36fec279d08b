package polyindex

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; package
// promcollector provides a Prometheus implementation.
//
// Collectors are called synchronously on the writer's goroutine. When the
// container is shared through Locked, the call happens under the write lock.
type MetricsCollector interface {
	// RecordInsert is called after each insert operation.
	// duration is the total time taken, err is nil if successful.
	RecordInsert(duration time.Duration, err error)

	// RecordErase is called after each erase operation.
	RecordErase(duration time.Duration, err error)

	// RecordModify is called after each modify operation with its outcome.
	RecordModify(duration time.Duration, outcome ModifyOutcome)

	// RecordReplace is called after each replace operation.
	RecordReplace(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(time.Duration, error)         {}
func (NoopMetricsCollector) RecordErase(time.Duration, error)          {}
func (NoopMetricsCollector) RecordModify(time.Duration, ModifyOutcome) {}
func (NoopMetricsCollector) RecordReplace(time.Duration, error)        {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount       atomic.Int64
	InsertErrors      atomic.Int64
	InsertTotalNanos  atomic.Int64
	EraseCount        atomic.Int64
	EraseErrors       atomic.Int64
	ModifyCount       atomic.Int64
	ModifyErased      atomic.Int64
	ModifyRolledBack  atomic.Int64
	ModifyNotFound    atomic.Int64
	ModifyTotalNanos  atomic.Int64
	ReplaceCount      atomic.Int64
	ReplaceErrors     atomic.Int64
	ReplaceTotalNanos atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(duration time.Duration, err error) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.InsertErrors.Add(1)
	}
}

// RecordErase implements MetricsCollector.
func (b *BasicMetricsCollector) RecordErase(duration time.Duration, err error) {
	b.EraseCount.Add(1)
	if err != nil {
		b.EraseErrors.Add(1)
	}
}

// RecordModify implements MetricsCollector.
func (b *BasicMetricsCollector) RecordModify(duration time.Duration, outcome ModifyOutcome) {
	b.ModifyCount.Add(1)
	b.ModifyTotalNanos.Add(duration.Nanoseconds())
	switch outcome {
	case OutcomeErased:
		b.ModifyErased.Add(1)
	case OutcomeRolledBack:
		b.ModifyRolledBack.Add(1)
	case OutcomeNotFound:
		b.ModifyNotFound.Add(1)
	}
}

// RecordReplace implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReplace(duration time.Duration, err error) {
	b.ReplaceCount.Add(1)
	b.ReplaceTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ReplaceErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InsertCount:      b.InsertCount.Load(),
		InsertErrors:     b.InsertErrors.Load(),
		InsertAvgNanos:   avg(b.InsertTotalNanos.Load(), b.InsertCount.Load()),
		EraseCount:       b.EraseCount.Load(),
		EraseErrors:      b.EraseErrors.Load(),
		ModifyCount:      b.ModifyCount.Load(),
		ModifyErased:     b.ModifyErased.Load(),
		ModifyRolledBack: b.ModifyRolledBack.Load(),
		ModifyNotFound:   b.ModifyNotFound.Load(),
		ModifyAvgNanos:   avg(b.ModifyTotalNanos.Load(), b.ModifyCount.Load()),
		ReplaceCount:     b.ReplaceCount.Load(),
		ReplaceErrors:    b.ReplaceErrors.Load(),
		ReplaceAvgNanos:  avg(b.ReplaceTotalNanos.Load(), b.ReplaceCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of metrics from BasicMetricsCollector.
type BasicMetricsStats struct {
	InsertCount      int64
	InsertErrors     int64
	InsertAvgNanos   int64
	EraseCount       int64
	EraseErrors      int64
	ModifyCount      int64
	ModifyErased     int64
	ModifyRolledBack int64
	ModifyNotFound   int64
	ModifyAvgNanos   int64
	ReplaceCount     int64
	ReplaceErrors    int64
	ReplaceAvgNanos  int64
}
