package polyindex

import (
	"log/slog"

	"github.com/hupe1980/polyindex/internal/hashed"
	"github.com/hupe1980/polyindex/internal/ordered"
)

type options struct {
	capacity         int
	btreeDegree      int
	hashLoadFactor   float64
	hashSeed         uint64
	metricsCollector MetricsCollector
	logger           *Logger
}

func defaultOptions() options {
	return options{
		btreeDegree:    ordered.DefaultDegree,
		hashLoadFactor: hashed.DefaultMaxLoad,
	}
}

// Option configures a Container.
type Option func(*options)

// WithCapacity presizes the arena, hash tables and sequence indexes for n
// records. It is a hint; containers grow past it.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithBTreeDegree sets the B-tree degree of every ordered index.
// Values <= 1 select the default.
func WithBTreeDegree(degree int) Option {
	return func(o *options) {
		if degree <= 1 {
			degree = ordered.DefaultDegree
		}
		o.btreeDegree = degree
	}
}

// WithHashLoadFactor sets the load factor at which hashed indexes grow.
// Values outside (0, 1) select the default.
func WithHashLoadFactor(f float64) Option {
	return func(o *options) {
		if f <= 0 || f >= 1 {
			f = hashed.DefaultMaxLoad
		}
		o.hashLoadFactor = f
	}
}

// WithHashSeed fixes the hash seed of every hashed index, making table
// layout and reseeding reproducible. By default each table draws a random
// seed, which is what keeps crafted key sets from degrading lookups.
//
// Use this for tests and benchmarks only.
func WithHashSeed(seed uint64) Option {
	return func(o *options) {
		o.hashSeed = seed
	}
}

// WithMetricsCollector configures a metrics collector for write operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &polyindex.BasicMetricsCollector{}
//	c, _ := polyindex.New(specs, polyindex.WithMetricsCollector(metrics))
//	// ... use c ...
//	stats := metrics.GetStats()
//	fmt.Printf("Inserts: %d, Modify erasures: %d\n", stats.InsertCount, stats.ModifyErased)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for write operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := polyindex.NewJSONLogger(slog.LevelDebug)
//	c, _ := polyindex.New(specs, polyindex.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}
