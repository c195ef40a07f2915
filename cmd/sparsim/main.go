// Command sparsim runs replica placement simulations over edge-list
// datasets.
//
//	sparsim -d facebook_combined.txt.gz -a online,offline -s 16 -k 0,1,2,3 -j 4
//
// One run is started per algorithm and replica factor. Results are
// printed as CSV; with -out the JSON reports and a summary.csv go to a
// local directory, s3://bucket/prefix or minio://host/bucket/prefix.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"strconv"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/hupe1980/sparsim"
	"github.com/hupe1980/sparsim/report"
	"golang.org/x/sync/errgroup"
)

type runConfig struct {
	data       string
	algorithms []sparsim.Algorithm
	servers    int
	replicas   []int
	load       int
	nodes      int
	seed       int64
	parallel   int
	out        string
	ddbTable   string
	plot       bool
	validate   bool
	logLevel   slog.Level
	logFormat  string
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		if sparsim.IsInvariantViolation(err) {
			fmt.Fprintf(os.Stderr, "invariant violated: %+v\n", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string) (runConfig, error) {
	var (
		cfg        runConfig
		algorithms string
		replicas   string
		logLevel   string
	)
	fs := flag.NewFlagSet("sparsim", flag.ContinueOnError)
	fs.StringVar(&cfg.data, "d", "", "edge-list dataset (path, s3:// or minio:// URI; .gz, .zst, .lz4 are decompressed)")
	fs.StringVar(&algorithms, "a", "online", "comma-separated algorithms: random, spar, metis, online, offline")
	fs.IntVar(&cfg.servers, "s", 128, "number of servers")
	fs.StringVar(&replicas, "k", "3", "comma-separated virtual primaries per vertex")
	fs.IntVar(&cfg.load, "l", 1, "load constraint")
	fs.IntVar(&cfg.nodes, "n", 0, "use only the first n vertices (0 = all)")
	fs.StringVar(&cfg.data, "data", "", "alias for -d")
	fs.StringVar(&algorithms, "algorithm", "online", "alias for -a")
	fs.IntVar(&cfg.servers, "server", 128, "alias for -s")
	fs.StringVar(&replicas, "replica", "3", "alias for -k")
	fs.IntVar(&cfg.load, "load", 1, "alias for -l")
	fs.IntVar(&cfg.nodes, "node", 0, "alias for -n")
	fs.Int64Var(&cfg.seed, "seed", 1, "random seed")
	fs.IntVar(&cfg.parallel, "j", 1, "configurations run in parallel")
	fs.StringVar(&cfg.out, "out", "", "report destination (directory, s3:// or minio:// URI)")
	fs.StringVar(&cfg.ddbTable, "ddb-table", "", "DynamoDB table receiving one item per run")
	fs.BoolVar(&cfg.plot, "plot", false, "print an ASCII plot of the cost trajectory")
	fs.BoolVar(&cfg.validate, "validate", false, "check all invariants after every phase")
	fs.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.StringVar(&cfg.logFormat, "log-format", "text", "log format: text or json")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if cfg.data == "" {
		return cfg, errors.New("missing dataset (-d)")
	}
	for _, name := range splitList(algorithms) {
		a, err := sparsim.ParseAlgorithm(name)
		if err != nil {
			return cfg, err
		}
		cfg.algorithms = append(cfg.algorithms, a)
	}
	for _, s := range splitList(replicas) {
		k, err := strconv.Atoi(s)
		if err != nil {
			return cfg, errors.Wrapf(err, "replica factor %q", s)
		}
		cfg.replicas = append(cfg.replicas, k)
	}
	if len(cfg.algorithms) == 0 || len(cfg.replicas) == 0 {
		return cfg, errors.New("need at least one algorithm and one replica factor")
	}
	if cfg.parallel < 1 {
		return cfg, errors.Newf("-j must be positive, got %d", cfg.parallel)
	}
	if err := cfg.logLevel.UnmarshalText([]byte(logLevel)); err != nil {
		return cfg, errors.Wrap(err, "log level")
	}
	if cfg.logFormat != "text" && cfg.logFormat != "json" {
		return cfg, errors.Newf("unknown log format %q", cfg.logFormat)
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func datasetName(uri string) string {
	name := path.Base(uri)
	for _, ext := range []string{".gz", ".zst", ".lz4", ".txt", ".csv"} {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

func run(ctx context.Context, cfg runConfig) error {
	logger := sparsim.NewTextLogger(cfg.logLevel)
	if cfg.logFormat == "json" {
		logger = sparsim.NewJSONLogger(cfg.logLevel)
	}

	g, err := loadGraph(ctx, cfg.data)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "dataset loaded", "data", cfg.data, "vertices", g.NumVertices(), "edges", g.NumEdges())

	var (
		sinks    []report.Sink
		blobSink *report.BlobSink
	)
	if cfg.out != "" {
		store, prefix, err := openStore(ctx, cfg.out)
		if err != nil {
			return err
		}
		blobSink = report.NewBlobSink(store, prefix)
		sinks = append(sinks, blobSink)
	}
	if cfg.ddbTable != "" {
		client, err := newDynamoClient(ctx)
		if err != nil {
			return err
		}
		sinks = append(sinks, report.NewDynamoSink(client, cfg.ddbTable))
	}

	type job struct {
		algorithm sparsim.Algorithm
		replicas  int
	}
	var jobs []job
	for _, a := range cfg.algorithms {
		for _, k := range cfg.replicas {
			jobs = append(jobs, job{a, k})
		}
	}

	reports := make([]*report.Report, len(jobs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.parallel)
	for i, j := range jobs {
		opts := []sparsim.Option{
			sparsim.WithAlgorithm(j.algorithm),
			sparsim.WithServers(cfg.servers),
			sparsim.WithVirtualPrimaries(j.replicas),
			sparsim.WithLoadConstraint(cfg.load),
			sparsim.WithNodeLimit(cfg.nodes),
			sparsim.WithSeed(cfg.seed),
			sparsim.WithValidation(cfg.validate),
			sparsim.WithDatasetName(datasetName(cfg.data)),
			sparsim.WithLogger(logger),
		}
		if len(sinks) > 0 {
			opts = append(opts, sparsim.WithSink(report.Tee(sinks...)))
		}
		eg.Go(func() error {
			sim, err := sparsim.New(g, opts...)
			if err != nil {
				return err
			}
			rep, err := sim.Run(egCtx)
			if err != nil {
				return err
			}
			reports[i] = rep
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	if err := report.WriteCSV(os.Stdout, reports...); err != nil {
		return err
	}
	if blobSink != nil {
		if err := blobSink.WriteSummary(ctx, "summary.csv", reports); err != nil {
			return err
		}
	}
	if cfg.plot {
		fmt.Println(report.Plot(reports, 72, 16))
	}
	return nil
}
