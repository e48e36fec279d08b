// Package promcollector exports polyindex container metrics to Prometheus.
//
//	collector := promcollector.New(prometheus.DefaultRegisterer)
//	c, _ := polyindex.New(specs, polyindex.WithMetricsCollector(collector))
package promcollector

import (
	"time"

	"github.com/hupe1980/polyindex"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector implements polyindex.MetricsCollector with Prometheus metrics.
type Collector struct {
	opLatency      *prometheus.HistogramVec
	writes         *prometheus.CounterVec
	modifyOutcomes *prometheus.CounterVec
}

var _ polyindex.MetricsCollector = (*Collector)(nil)

// Option configures a Collector.
type Option func(*options)

type options struct {
	namespace string
	buckets   []float64
	labels    prometheus.Labels
}

// WithNamespace prefixes every metric name. The default is "polyindex".
func WithNamespace(ns string) Option {
	return func(o *options) {
		o.namespace = ns
	}
}

// WithBuckets sets the latency histogram buckets in seconds.
func WithBuckets(buckets []float64) Option {
	return func(o *options) {
		o.buckets = buckets
	}
}

// WithConstLabels attaches constant labels, e.g. a container name, to every
// metric.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(o *options) {
		o.labels = labels
	}
}

// New creates a Collector and registers its metrics with reg. A nil reg
// leaves the metrics unregistered.
func New(reg prometheus.Registerer, optFns ...Option) *Collector {
	opts := options{
		namespace: "polyindex",
		buckets:   prometheus.ExponentialBuckets(1e-7, 4, 10), // 100ns .. ~26ms
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   opts.namespace,
			Name:        "operation_latency_seconds",
			Help:        "Latency of container write operations",
			Buckets:     opts.buckets,
			ConstLabels: opts.labels,
		}, []string{"op", "status"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   opts.namespace,
			Name:        "writes_total",
			Help:        "Total write operations by type",
			ConstLabels: opts.labels,
		}, []string{"op"}),
		modifyOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   opts.namespace,
			Name:        "modify_outcomes_total",
			Help:        "Modify operations by outcome; erased counts records lost to key collisions",
			ConstLabels: opts.labels,
		}, []string{"outcome"}),
	}

	if reg != nil {
		reg.MustRegister(c.opLatency, c.writes, c.modifyOutcomes)
	}
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (c *Collector) observe(op, status string, d time.Duration) {
	c.opLatency.WithLabelValues(op, status).Observe(d.Seconds())
	c.writes.WithLabelValues(op).Inc()
}

// RecordInsert implements polyindex.MetricsCollector.
func (c *Collector) RecordInsert(d time.Duration, err error) {
	c.observe("insert", status(err), d)
}

// RecordErase implements polyindex.MetricsCollector.
func (c *Collector) RecordErase(d time.Duration, err error) {
	c.observe("erase", status(err), d)
}

// RecordModify implements polyindex.MetricsCollector. Only OutcomeUpdated
// counts as success.
func (c *Collector) RecordModify(d time.Duration, outcome polyindex.ModifyOutcome) {
	s := "success"
	if outcome != polyindex.OutcomeUpdated {
		s = "error"
	}
	c.observe("modify", s, d)
	c.modifyOutcomes.WithLabelValues(outcome.String()).Inc()
}

// RecordReplace implements polyindex.MetricsCollector.
func (c *Collector) RecordReplace(d time.Duration, err error) {
	c.observe("replace", status(err), d)
}
