package sparsim

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/hupe1980/sparsim/blobstore"
	"github.com/hupe1980/sparsim/graph"
	"github.com/hupe1980/sparsim/report"
	"github.com/hupe1980/sparsim/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlgorithm(t *testing.T) {
	for _, a := range []Algorithm{Random, SPAR, METIS, Online, Offline} {
		got, err := ParseAlgorithm(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}

	got, err := ParseAlgorithm("OFFLINE")
	require.NoError(t, err)
	assert.Equal(t, Offline, got)

	_, err = ParseAlgorithm("greedy")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
	assert.Equal(t, "Algorithm(9)", Algorithm(9).String())
}

func TestNew_InvalidConfig(t *testing.T) {
	g := testutil.Path(4)

	tests := []struct {
		name string
		g    *graph.Graph
		opts []Option
	}{
		{"nil graph", nil, nil},
		{"too few servers", g, []Option{WithServers(3), WithVirtualPrimaries(3)}},
		{"negative load constraint", g, []Option{WithLoadConstraint(-1)}},
		{"negative node limit", g, []Option{WithNodeLimit(-1)}},
		{"negative offline passes", g, []Option{WithOfflinePasses(-1)}},
		{"unknown algorithm", g, []Option{WithAlgorithm(Algorithm(42))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.g, tt.opts...)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.True(t, stderrors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestNew_InvalidConfigMessage(t *testing.T) {
	_, err := New(testutil.Path(4), WithServers(2), WithVirtualPrimaries(2))
	require.Error(t, err)

	assert.True(t, stderrors.Is(err, ErrInvalidConfig))
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "server")
	assert.False(t, IsInvariantViolation(err))
}

func TestRun_AllAlgorithms(t *testing.T) {
	g := testutil.NewRNG(3).Clustered(4, 25, 0.3, 0.02)

	for _, a := range []Algorithm{Random, SPAR, METIS, Online, Offline} {
		t.Run(a.String(), func(t *testing.T) {
			sim, err := New(g,
				WithAlgorithm(a),
				WithServers(4),
				WithVirtualPrimaries(1),
				WithValidation(true),
				WithDatasetName("planted"),
			)
			require.NoError(t, err)

			rep, err := sim.Run(context.Background())
			require.NoError(t, err)

			assert.Equal(t, "planted", rep.Dataset)
			assert.Equal(t, a.String(), rep.Algorithm)
			assert.Equal(t, 100, rep.Nodes)
			assert.Equal(t, g.NumEdges(), rep.Edges)
			assert.NotEmpty(t, rep.Phases)
			assert.Equal(t, rep.Cost, rep.Phases[len(rep.Phases)-1].Cost)

			// Every vertex has one primary and one standby.
			assert.Equal(t, 200, sumInts(sim.Loads()))
			assert.Len(t, sim.Assignment(), 100)
			assert.Equal(t, rep.Loads.Max-rep.Loads.Min, rep.Loads.Spread)
		})
	}
}

func TestRun_OfflineNeverRaisesCost(t *testing.T) {
	g := testutil.NewRNG(11).Clustered(5, 20, 0.35, 0.03)
	opts := []Option{WithServers(5), WithVirtualPrimaries(1), WithSeed(7)}

	online, err := New(g, append(opts, WithAlgorithm(Online))...)
	require.NoError(t, err)
	onRep, err := online.Run(context.Background())
	require.NoError(t, err)

	offline, err := New(g, append(opts, WithAlgorithm(Offline))...)
	require.NoError(t, err)
	offRep, err := offline.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, "ingest", offRep.Phases[0].Name)
	assert.Equal(t, onRep.Cost, offRep.Phases[0].Cost)
	for i := 1; i < len(offRep.Phases); i++ {
		assert.LessOrEqual(t, offRep.Phases[i].Cost, offRep.Phases[i-1].Cost, offRep.Phases[i].Name)
	}
	assert.LessOrEqual(t, offRep.Cost, onRep.Cost)
}

func TestRun_OfflineAfterOnlinePath(t *testing.T) {
	sim, err := New(testutil.Path(6),
		WithAlgorithm(Offline),
		WithServers(3),
		WithVirtualPrimaries(1),
		WithLoadConstraint(1),
		WithValidation(true),
	)
	require.NoError(t, err)

	rep, err := sim.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, "ingest", rep.Phases[0].Name)
	assert.Equal(t, 10, rep.Phases[0].Cost)
	assert.Zero(t, rep.Phases[0].Spread)
	assert.LessOrEqual(t, rep.Cost, rep.Phases[0].Cost)
}

func TestRun_SamplesAndMetrics(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	sim, err := New(testutil.Path(600),
		WithServers(4),
		WithVirtualPrimaries(1),
		WithMetricsCollector(metrics),
	)
	require.NoError(t, err)

	rep, err := sim.Run(context.Background())
	require.NoError(t, err)

	var at []int
	for _, s := range rep.Samples {
		at = append(at, s.Vertices)
	}
	assert.Equal(t, []int{1, 257, 513, 600}, at)
	assert.Equal(t, rep.Cost, rep.Samples[len(rep.Samples)-1].Cost)

	stats := metrics.GetStats()
	assert.Equal(t, int64(600), stats.IngestCount)
	assert.Zero(t, stats.IngestErrors)
	assert.Equal(t, int64(600), stats.Retained+stats.Moved+stats.Swapped+stats.Reverted)
	assert.Equal(t, int64(1), stats.Phases)
	assert.Equal(t, int64(rep.Cost), stats.LastPhaseCost)
}

func TestRun_NodeLimit(t *testing.T) {
	sim, err := New(testutil.Cycle(50), WithServers(3), WithVirtualPrimaries(1), WithNodeLimit(10))
	require.NoError(t, err)

	rep, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, rep.Nodes)
	assert.Equal(t, 9, rep.Edges)
	assert.Equal(t, "graph-online-3-1-10", rep.Name())
}

func TestRun_CustomPartitioner(t *testing.T) {
	g := testutil.Path(12)
	byBlock := PartitionerFunc(func(_ context.Context, g *graph.Graph, parts int) ([]int, error) {
		out := make([]int, g.NumVertices())
		for v := range out {
			out[v] = v / 3
		}
		return out, nil
	})

	sim, err := New(g,
		WithAlgorithm(METIS),
		WithServers(4),
		WithVirtualPrimaries(1),
		WithPartitioner(byBlock),
	)
	require.NoError(t, err)

	rep, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1, 2, 2, 2, 3, 3, 3}, sim.Assignment())
	// 12 standbys plus 4 caches: the last two cut edges each find a
	// standby already on one side.
	assert.Equal(t, 16, rep.Cost)
}

func TestRun_ReportStore(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	sim, err := New(testutil.Cliques(3, 4), WithServers(3), WithVirtualPrimaries(1), WithReportStore(store))
	require.NoError(t, err)
	rep, err := sim.Run(ctx)
	require.NoError(t, err)

	got, err := report.NewBlobSink(store, "").Load(ctx, rep.Name())
	require.NoError(t, err)
	assert.Equal(t, rep.Cost, got.Cost)
	assert.Equal(t, rep.Samples, got.Samples)
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim, err := New(testutil.Path(10), WithServers(3), WithVirtualPrimaries(1))
	require.NoError(t, err)
	_, err = sim.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsInvariantViolation(err))
}

func TestIsInvariantViolation(t *testing.T) {
	assert.True(t, IsInvariantViolation(errors.Wrap(errors.AssertionFailedf("broken"), "run")))
	assert.False(t, IsInvariantViolation(errors.New("plain")))
	assert.False(t, IsInvariantViolation(nil))
}

func sumInts(xs []int) int {
	n := 0
	for _, x := range xs {
		n += x
	}
	return n
}
