package sparsim

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hupe1980/sparsim/graph"
	"github.com/hupe1980/sparsim/internal/baseline"
	"github.com/hupe1980/sparsim/internal/placement"
	"github.com/hupe1980/sparsim/report"
	"golang.org/x/time/rate"
)

// SampleEvery is the number of ingested vertices between cost samples.
const SampleEvery = 256

// Algorithm selects how vertices are placed.
type Algorithm uint8

const (
	// Random places every vertex and its standbys on random servers.
	Random Algorithm = iota
	// SPAR replays edges and co-locates endpoints when that is cheaper.
	SPAR
	// METIS places vertices by a static balanced partition.
	METIS
	// Online ingests vertices one by one and reallocates each by its best
	// SCB score.
	Online
	// Offline runs Online followed by refinement, merge and exchange passes.
	Offline
)

var algorithmNames = [...]string{
	Random:  "random",
	SPAR:    "spar",
	METIS:   "metis",
	Online:  "online",
	Offline: "offline",
}

func (a Algorithm) String() string {
	if int(a) < len(algorithmNames) {
		return algorithmNames[a]
	}
	return fmt.Sprintf("Algorithm(%d)", uint8(a))
}

// ParseAlgorithm parses an algorithm name, ignoring case.
func ParseAlgorithm(s string) (Algorithm, error) {
	for a, name := range algorithmNames {
		if strings.EqualFold(s, name) {
			return Algorithm(a), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownAlgorithm, "%q", s)
}

// Decision is the outcome of one placement decision.
type Decision = placement.Decision

// Placement decisions.
const (
	Retained = placement.Retained
	Moved    = placement.Moved
	Swapped  = placement.Swapped
	Reverted = placement.Reverted
)

// Partitioner splits a graph into balanced parts for the METIS algorithm.
type Partitioner = baseline.Partitioner

// PartitionerFunc adapts a function to Partitioner.
type PartitionerFunc = baseline.PartitionerFunc

// LabelPropagation is the built-in balanced partitioner.
type LabelPropagation = baseline.LabelPropagation

// Simulator runs one placement configuration over a graph.
type Simulator struct {
	g       *graph.Graph
	opts    options
	cluster *placement.Cluster
}

// New creates a simulator over g.
func New(g *graph.Graph, optFns ...Option) (*Simulator, error) {
	if g == nil {
		return nil, invalidConfig(errors.New("graph is nil"))
	}
	o := applyOptions(optFns)
	if int(o.algorithm) >= len(algorithmNames) {
		return nil, invalidConfig(errors.Wrapf(ErrUnknownAlgorithm, "%d", uint8(o.algorithm)))
	}
	if o.nodes < 0 {
		return nil, invalidConfig(errors.Newf("node limit must not be negative, got %d", o.nodes))
	}
	if o.offlinePasses < 0 {
		return nil, invalidConfig(errors.Newf("offline passes must not be negative, got %d", o.offlinePasses))
	}
	if err := o.engine.Validate(); err != nil {
		return nil, invalidConfig(err)
	}
	o.logger = o.logger.WithAlgorithm(o.algorithm).WithServers(o.engine.Servers, o.engine.VirtualPrimaries)
	o.engine.Logger = o.logger.Logger

	return &Simulator{g: g.Induced(o.nodes), opts: o}, nil
}

// Graph returns the graph the simulator runs on, after the node limit.
func (s *Simulator) Graph() *graph.Graph { return s.g }

// Assignment returns the primary server of every vertex after the last
// Run, or nil before the first one.
func (s *Simulator) Assignment() []int {
	if s.cluster == nil {
		return nil
	}
	return s.cluster.Assignment()
}

// Loads returns the server loads after the last Run.
func (s *Simulator) Loads() []int {
	if s.cluster == nil {
		return nil
	}
	return s.cluster.Loads()
}

// Run places every vertex with the configured algorithm on a fresh
// cluster and returns the report. The report is also written to every
// configured sink.
func (s *Simulator) Run(ctx context.Context) (*report.Report, error) {
	c, err := placement.New(s.g, s.opts.engine)
	if err != nil {
		return nil, invalidConfig(err)
	}
	s.cluster = c

	rep := &report.Report{
		Dataset:        s.opts.dataset,
		Algorithm:      s.opts.algorithm.String(),
		Servers:        s.opts.engine.Servers,
		Replicas:       s.opts.engine.VirtualPrimaries,
		LoadConstraint: s.opts.engine.LoadConstraint,
		Nodes:          s.g.NumVertices(),
		Edges:          s.g.NumEdges(),
		Seed:           s.opts.engine.Seed,
	}

	start := time.Now()
	if err := s.run(ctx, c, rep); err != nil {
		return nil, errors.Wrapf(err, "run %s", rep.Name())
	}
	rep.Elapsed = time.Since(start)
	rep.Cost = c.InterServerCost()
	if rep.Loads, err = report.SummarizeLoads(c.Loads()); err != nil {
		return nil, err
	}

	for _, sink := range s.opts.sinks {
		if err := sink.Write(ctx, rep); err != nil {
			return rep, err
		}
	}
	return rep, nil
}

func (s *Simulator) run(ctx context.Context, c *placement.Cluster, rep *report.Report) error {
	switch s.opts.algorithm {
	case Random:
		return s.phase(ctx, c, rep, "ingest", func() error {
			return baseline.Random(ctx, c, c.Rand())
		})
	case SPAR:
		return s.phase(ctx, c, rep, "ingest", func() error {
			return baseline.EdgeDriven(ctx, c)
		})
	case METIS:
		return s.phase(ctx, c, rep, "ingest", func() error {
			return baseline.Oracle(ctx, c, s.opts.partitioner)
		})
	case Online:
		return s.phase(ctx, c, rep, "ingest", func() error {
			return s.online(ctx, c, rep)
		})
	case Offline:
		if err := s.phase(ctx, c, rep, "ingest", func() error {
			return s.online(ctx, c, rep)
		}); err != nil {
			return err
		}
		return s.offline(ctx, c, rep)
	default:
		return errors.AssertionFailedf("unhandled algorithm %s", s.opts.algorithm)
	}
}

// phase runs fn, records its cost and duration, and validates the
// cluster if enabled.
func (s *Simulator) phase(ctx context.Context, c *placement.Cluster, rep *report.Report, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	cost := c.InterServerCost()
	s.opts.logger.LogPhase(ctx, name, cost, elapsed, err)
	if err != nil {
		return errors.Wrapf(err, "phase %s", name)
	}
	rep.AddPhase(name, cost, c.LoadSpread(), elapsed)
	s.opts.metricsCollector.RecordPhase(name, cost, elapsed)

	if s.opts.validate {
		err := c.Validate()
		s.opts.logger.LogValidation(ctx, name, err)
		if err != nil {
			return errors.Wrapf(err, "after phase %s", name)
		}
	}
	return nil
}

// online ingests vertices in enumeration order, each followed by one
// placement decision. The cost is sampled on the first vertex and every
// SampleEvery vertices after it, plus once at the end.
func (s *Simulator) online(ctx context.Context, c *placement.Cluster, rep *report.Report) error {
	total := s.g.NumVertices()
	progress := rate.Sometimes{Every: SampleEvery}
	ingested := 0

	for v := range s.g.Vertices() {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		d, err := s.ingest(c, v)
		s.opts.metricsCollector.RecordIngest(time.Since(start), err)
		s.opts.logger.LogDecision(ctx, v, d, err)
		if err != nil {
			return err
		}
		s.opts.metricsCollector.RecordDecision(d)
		ingested++

		progress.Do(func() {
			cost := c.InterServerCost()
			rep.AddSample(ingested, cost)
			s.opts.logger.LogIngestProgress(ctx, ingested, total, cost)
		})
	}
	if n := len(rep.Samples); ingested > 0 && rep.Samples[n-1].Vertices != ingested {
		rep.AddSample(ingested, c.InterServerCost())
	}
	return nil
}

func (s *Simulator) ingest(c *placement.Cluster, v uint32) (Decision, error) {
	if err := c.Ingest(v); err != nil {
		return Retained, err
	}
	return c.Place(v)
}

// offline runs refine, merge and exchange passes until a pass fails to
// lower the cost or the pass limit is reached.
func (s *Simulator) offline(ctx context.Context, c *placement.Cluster, rep *report.Report) error {
	for pass := 1; pass <= s.opts.offlinePasses; pass++ {
		before := c.InterServerCost()

		if err := s.phase(ctx, c, rep, fmt.Sprintf("refine-%d", pass), func() error {
			stats, err := c.IterativeRefine(ctx)
			s.opts.logger.DebugContext(ctx, "refine pass",
				"pass", pass,
				"rounds", stats.Rounds,
				"moved", stats.Moved,
				"swapped", stats.Swapped,
				"reverted", stats.Reverted,
				"rolled_back", stats.RolledBack,
			)
			return err
		}); err != nil {
			return err
		}

		if err := s.phase(ctx, c, rep, fmt.Sprintf("merge-%d", pass), func() error {
			stats, err := c.MergeRebalance(ctx)
			s.opts.metricsCollector.RecordMergeSwap(stats.Attempts, stats.Committed)
			s.opts.logger.DebugContext(ctx, "merge pass",
				"pass", pass,
				"groups", stats.Groups,
				"attempts", stats.Attempts,
				"committed", stats.Committed,
			)
			return err
		}); err != nil {
			return err
		}

		if err := s.phase(ctx, c, rep, fmt.Sprintf("exchange-%d", pass), func() error {
			n, err := c.ExchangeVirtualPrimaries(ctx)
			s.opts.metricsCollector.RecordExchange(n)
			return err
		}); err != nil {
			return err
		}

		if c.InterServerCost() >= before {
			break
		}
	}
	return nil
}
