package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/sparsim"
	"github.com/hupe1980/sparsim/blobstore"
	"github.com/hupe1980/sparsim/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	cfg, err := parseFlags([]string{"-d", "fb.txt.gz", "-a", "random, offline", "-s", "16", "-k", "0,2", "-j", "3", "-log-level", "debug"})
	require.NoError(t, err)
	assert.Equal(t, []sparsim.Algorithm{sparsim.Random, sparsim.Offline}, cfg.algorithms)
	assert.Equal(t, []int{0, 2}, cfg.replicas)
	assert.Equal(t, 16, cfg.servers)
	assert.Equal(t, 1, cfg.load)
	assert.Equal(t, 3, cfg.parallel)
	assert.Equal(t, slog.LevelDebug, cfg.logLevel)

	for _, args := range [][]string{
		{},
		{"-d", "x", "-a", "greedy"},
		{"-d", "x", "-k", "two"},
		{"-d", "x", "-j", "0"},
		{"-d", "x", "-log-format", "xml"},
	} {
		_, err := parseFlags(args)
		assert.Error(t, err, "%v", args)
	}
}

func TestParseFlags_LongNames(t *testing.T) {
	cfg, err := parseFlags([]string{
		"-data", "s3://bucket/fb.txt.zst",
		"-algorithm", "spar,metis",
		"-server", "8",
		"-replica", "1,3",
		"-load", "2",
		"-node", "500",
	})
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/fb.txt.zst", cfg.data)
	assert.Equal(t, []sparsim.Algorithm{sparsim.SPAR, sparsim.METIS}, cfg.algorithms)
	assert.Equal(t, 8, cfg.servers)
	assert.Equal(t, []int{1, 3}, cfg.replicas)
	assert.Equal(t, 2, cfg.load)
	assert.Equal(t, 500, cfg.nodes)

	// Short and long names share one variable; the last one wins.
	cfg, err = parseFlags([]string{"-d", "a.txt", "-s", "4", "-server", "6", "-data", "b.txt"})
	require.NoError(t, err)
	assert.Equal(t, "b.txt", cfg.data)
	assert.Equal(t, 6, cfg.servers)
	assert.Equal(t, []sparsim.Algorithm{sparsim.Online}, cfg.algorithms)
}

func TestParseLocation(t *testing.T) {
	loc, err := parseLocation("data/fb.txt")
	require.NoError(t, err)
	assert.Equal(t, location{key: "data/fb.txt"}, loc)

	loc, err = parseLocation("s3://bucket/datasets/fb.txt.zst")
	require.NoError(t, err)
	assert.Equal(t, location{scheme: "s3", bucket: "bucket", key: "datasets/fb.txt.zst"}, loc)

	loc, err = parseLocation("minio://localhost:9000/bucket/runs")
	require.NoError(t, err)
	assert.Equal(t, location{scheme: "minio", host: "localhost:9000", bucket: "bucket", key: "runs"}, loc)

	_, err = parseLocation("gs://bucket/x")
	assert.Error(t, err)
	_, err = parseLocation("minio://localhost:9000")
	assert.Error(t, err)
}

func TestDatasetName(t *testing.T) {
	assert.Equal(t, "facebook_combined", datasetName("s3://b/facebook_combined.txt.gz"))
	assert.Equal(t, "edges", datasetName("edges"))
}

func TestRun_LocalDataset(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "triangles.txt")
	require.NoError(t, os.WriteFile(data, []byte("0 1\n1 2\n2 0\n3 4\n4 5\n5 3\n2 3\n"), 0o644))
	out := filepath.Join(dir, "out")

	cfg, err := parseFlags([]string{"-d", data, "-a", "online,spar", "-s", "3", "-k", "1", "-j", "2", "-out", out, "-validate", "-log-level", "error"})
	require.NoError(t, err)
	require.NoError(t, run(context.Background(), cfg))

	ctx := context.Background()
	sink := report.NewBlobSink(blobstore.NewLocalStore(out), "")
	runs, err := sink.Runs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"triangles-online-3-1-6", "triangles-spar-3-1-6"}, runs)

	summary, err := blobstore.ReadAll(ctx, blobstore.NewLocalStore(out), "summary.csv")
	require.NoError(t, err)
	reports, err := report.ReadCSV(bytes.NewReader(summary))
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}
