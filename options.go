package sparsim

import (
	"log/slog"

	"github.com/hupe1980/sparsim/blobstore"
	"github.com/hupe1980/sparsim/internal/baseline"
	"github.com/hupe1980/sparsim/internal/placement"
	"github.com/hupe1980/sparsim/report"
)

type options struct {
	algorithm        Algorithm
	engine           placement.Config
	nodes            int
	offlinePasses    int
	validate         bool
	dataset          string
	partitioner      Partitioner
	sinks            []report.Sink
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Simulator.
type Option func(*options)

// WithAlgorithm selects the placement algorithm. Default: Online.
func WithAlgorithm(a Algorithm) Option {
	return func(o *options) {
		o.algorithm = a
	}
}

// WithServers sets the number of servers. Default: 128.
func WithServers(n int) Option {
	return func(o *options) {
		o.engine.Servers = n
	}
}

// WithVirtualPrimaries sets the number of standby copies per vertex (k).
// Default: 3.
func WithVirtualPrimaries(k int) Option {
	return func(o *options) {
		o.engine.VirtualPrimaries = k
	}
}

// WithLoadConstraint bounds the load difference between the two servers
// of a committed move. Default: 1.
func WithLoadConstraint(lc int) Option {
	return func(o *options) {
		o.engine.LoadConstraint = lc
	}
}

// WithSeed seeds the random baseline and the cluster-merge pass.
// Default: 1.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.engine.Seed = seed
	}
}

// WithNodeLimit restricts the run to the subgraph induced by the first n
// vertices. Zero or a value above the vertex count means all vertices.
func WithNodeLimit(n int) Option {
	return func(o *options) {
		o.nodes = n
	}
}

// WithRefineRounds caps the rounds of each iterative refinement pass.
// Default: 10.
func WithRefineRounds(n int) Option {
	return func(o *options) {
		o.engine.RefineRounds = n
	}
}

// WithRefineMinGain stops a refinement pass once a round reduces the cost
// by less than this fraction. Default: 0.001.
func WithRefineMinGain(f float64) Option {
	return func(o *options) {
		o.engine.RefineMinGain = f
	}
}

// WithOfflinePasses caps the refine, merge and exchange passes of the
// Offline algorithm. Passes stop early once one fails to lower the cost.
// Default: 3.
func WithOfflinePasses(n int) Option {
	return func(o *options) {
		o.offlinePasses = n
	}
}

// WithMergePartnerLimit caps the partner groups tried per group in the
// merge pass. Zero means unlimited. Default: 32.
func WithMergePartnerLimit(n int) Option {
	return func(o *options) {
		o.engine.MergePartnerLimit = n
	}
}

// WithMergeRebalanceSteps caps the singleton moves that restore balance
// after a group swap. Default: 16.
func WithMergeRebalanceSteps(n int) Option {
	return func(o *options) {
		o.engine.MergeRebalanceSteps = n
	}
}

// WithValidation runs a full invariant scan after every phase.
func WithValidation(enabled bool) Option {
	return func(o *options) {
		o.validate = enabled
	}
}

// WithDatasetName sets the dataset name used in reports. Default: "graph".
func WithDatasetName(name string) Option {
	return func(o *options) {
		o.dataset = name
	}
}

// WithPartitioner replaces the partitioner used by the METIS algorithm.
// If nil is passed, the built-in label propagation partitioner is used.
func WithPartitioner(p Partitioner) Option {
	return func(o *options) {
		if p == nil {
			p = baseline.LabelPropagation{}
		}
		o.partitioner = p
	}
}

// WithSink adds a destination for the finished report.
func WithSink(s report.Sink) Option {
	return func(o *options) {
		if s != nil {
			o.sinks = append(o.sinks, s)
		}
	}
}

// WithReportStore stores the finished report as JSON in store.
// Convenience wrapper for WithSink(report.NewBlobSink(store, "")).
func WithReportStore(store blobstore.BlobStore) Option {
	return WithSink(report.NewBlobSink(store, ""))
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &sparsim.BasicMetricsCollector{}
//	sim, _ := sparsim.New(g, sparsim.WithMetricsCollector(metrics))
//	// ... run ...
//	stats := metrics.GetStats()
//	fmt.Printf("moved: %d, swapped: %d\n", stats.Moved, stats.Swapped)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
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

func applyOptions(optFns []Option) options {
	o := options{
		algorithm:        Online,
		engine:           placement.DefaultConfig(),
		offlinePasses:    3,
		dataset:          "graph",
		partitioner:      baseline.LabelPropagation{},
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
