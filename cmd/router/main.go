// Command router is the CLI entry point for the cooperative time-dependent
// router core (spec.md §6). It loads a graph dump and a query dump, builds
// a CCH and one customization/potential pair, then drives every query
// through internal/server, periodically recustomizing from the mutated
// graph and writing a structured result batch via internal/report.
//
// Required positional parameters, per spec.md §6:
//
//	router <graph_dir> <query_dir> <num_buckets> [num_metrics] [update_frequency] [interval_count]
//
// Everything else is an optional flag layered on top of internal/config's
// defaults/file/env precedence; positional arguments always win over all
// three, matching the teacher's config-precedence convention.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/google/uuid"

	"roadrouter/internal/apperror"
	"roadrouter/internal/capgraph"
	"roadrouter/internal/cch"
	"roadrouter/internal/config"
	"roadrouter/internal/customize"
	"roadrouter/internal/ioformat"
	"roadrouter/internal/logger"
	"roadrouter/internal/obsmetrics"
	"roadrouter/internal/potential"
	"roadrouter/internal/report"
	"roadrouter/internal/resultcache"
	"roadrouter/internal/resultstore"
	"roadrouter/internal/server"
	"roadrouter/internal/tracing"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		logger.Log.Error("router run failed", "error", err)
		os.Exit(apperror.ExitCode(err))
	}
}

// cliArgs holds the parsed positional and optional parameters of spec.md §6.
type cliArgs struct {
	graphDir        string
	queryDir        string
	numBuckets      int
	numMetrics      int
	updateFrequency int
	intervalCount   int

	potFlavor string
	update    bool
	fixOrder  bool
	format    string
	out       string
	storeDSN  string
	cache     string
	configYML string
}

func parseArgs(argv []string) (*cliArgs, error) {
	fs := flag.NewFlagSet("router", flag.ContinueOnError)
	potFlavor := fs.String("potential", "cchpot", "potential flavour: cchpot, bounded, multimetric, corridor")
	update := fs.Bool("update", true, "write answered paths back into the graph (cooperative routing)")
	fixOrder := fs.Bool("fix-order", false, "run fix_order_and_build before customization")
	format := fs.String("format", "", "report format: csv, json, xlsx (overrides config)")
	out := fs.String("out", "", "report output path (default: stdout-adjacent report.<ext> in query_dir)")
	storeDSN := fs.String("store-dsn", "", "Postgres DSN for the optional result store")
	cacheFlag := fs.String("cache", "", "optional result cache: memory or redis://host:port")
	configYML := fs.String("config", "", "additional config file path")
	if err := fs.Parse(argv); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidArgument, "parsing flags")
	}

	pos := fs.Args()
	if len(pos) < 3 {
		return nil, apperror.New(apperror.CodeInvalidArgument,
			"usage: router <graph_dir> <query_dir> <num_buckets> [num_metrics] [update_frequency] [interval_count]")
	}

	a := &cliArgs{
		graphDir:  pos[0],
		queryDir:  pos[1],
		potFlavor: *potFlavor,
		update:    *update,
		fixOrder:  *fixOrder,
		format:    *format,
		out:       *out,
		storeDSN:  *storeDSN,
		cache:     *cacheFlag,
		configYML: *configYML,
	}

	var err error
	if a.numBuckets, err = strconv.Atoi(pos[2]); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidArgument, "num_buckets must be an integer")
	}
	a.numMetrics = 8
	a.updateFrequency = 1000
	a.intervalCount = 24
	if len(pos) > 3 {
		if a.numMetrics, err = strconv.Atoi(pos[3]); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInvalidArgument, "num_metrics must be an integer")
		}
	}
	if len(pos) > 4 {
		if a.updateFrequency, err = strconv.Atoi(pos[4]); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInvalidArgument, "update_frequency must be an integer")
		}
	}
	if len(pos) > 5 {
		if a.intervalCount, err = strconv.Atoi(pos[5]); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInvalidArgument, "interval_count must be an integer")
		}
	}
	return a, nil
}

func run(argv []string) error {
	args, err := parseArgs(argv)
	if err != nil {
		return err
	}

	loaderOpts := []config.LoaderOption{}
	if args.configYML != "" {
		loaderOpts = append(loaderOpts, config.WithConfigPaths(args.configYML))
	}
	cfg, err := config.NewLoader(loaderOpts...).Load()
	if err != nil {
		return err
	}

	// Positional arguments always override file/env configuration
	// (SPEC_FULL.md §6).
	cfg.Graph.NumBuckets = args.numBuckets
	cfg.Graph.NumMetrics = args.numMetrics
	cfg.Graph.UpdateFrequency = args.updateFrequency
	cfg.Graph.IntervalCount = args.intervalCount
	if args.format != "" {
		cfg.Report.Format = args.format
	}
	if args.storeDSN != "" {
		cfg.Store.Enabled = true
		cfg.Store.DSN = args.storeDSN
	}
	if args.cache != "" {
		cfg.Cache.Driver = args.cache
		if len(args.cache) > len("redis://") && args.cache[:len("redis://")] == "redis://" {
			cfg.Cache.Driver = "redis"
			cfg.Cache.Addr = args.cache[len("redis://"):]
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.InitWithConfig(logger.Config{
		Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output,
		FilePath: cfg.Log.FilePath, MaxSize: cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups, MaxAge: cfg.Log.MaxAge, Compress: cfg.Log.Compress,
	})
	log := logger.WithComponent("cmd/router")

	ctx := context.Background()

	tp, err := tracing.Init(cfg.Tracing)
	if err != nil {
		log.Warn("tracing init failed, continuing without spans", "error", err)
	} else if cfg.Tracing.Enabled {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(shutdownCtx)
		}()
	}

	var observer server.Observer
	if cfg.Metrics.Enabled {
		observer = obsmetrics.Init()
	}

	var qcache *resultcache.QueryCache
	if cfg.Cache.Driver != "" {
		c, err := resultcache.New(&resultcache.Options{
			Backend: cfg.Cache.Driver, DefaultTTL: cfg.Cache.DefaultTTL, RedisAddr: cfg.Cache.Addr,
		})
		if err != nil {
			log.Warn("result cache init failed, continuing without cache", "error", err)
		} else {
			qcache = resultcache.NewQueryCache(c, cfg.Cache.DefaultTTL)
			defer qcache.Close()
		}
	}

	var store *resultstore.Repository
	if cfg.Store.Enabled {
		db, err := resultstore.NewPostgresDB(ctx, cfg.Store.DSN)
		if err != nil {
			log.Warn("result store unavailable, continuing without persistence", "error", err)
		} else {
			defer db.Close()
			if err := resultstore.NewMigrator(db.Pool()).Up(ctx); err != nil {
				log.Warn("result store migrations failed, continuing without persistence", "error", err)
			} else {
				store = resultstore.NewRepository(db)
			}
		}
	}

	dump, err := ioformat.LoadGraph(args.graphDir)
	if err != nil {
		return err
	}
	net, err := dump.ToNetwork(cfg.Graph.NumBuckets, capgraph.DefaultSpeedModel)
	if err != nil {
		return err
	}

	var c *cch.CCH
	if args.fixOrder {
		c, err = cch.FixOrderAndBuild(net.NumNodes(), dump.ToArcs(), dump.ToOrder())
	} else {
		c, err = cch.Build(net.NumNodes(), dump.ToArcs(), dump.ToOrder())
	}
	if err != nil {
		return err
	}

	minCellSize := net.NumNodes() / (32 * runtime.GOMAXPROCS(0))
	if minCellSize < 1 {
		minCellSize = 1
	}
	tree := cch.BuildSeparatorTree(c.NumNodes(), minCellSize, 0.1)

	queries, err := loadQueries(args.queryDir)
	if err != nil {
		return err
	}

	var batch report.Batch
	switch args.potFlavor {
	case "cchpot":
		batch, err = runQueries(net, c, tree, queries, args, observer, qcache, buildCCHPot)
	case "bounded":
		batch, err = runQueries(net, c, tree, queries, args, observer, qcache, buildBounded)
	case "multimetric":
		batch, err = runQueries(net, c, tree, queries, args, observer, qcache, buildMultiMetric)
	case "corridor":
		batch, err = runQueries(net, c, tree, queries, args, observer, qcache, buildCorridor)
	default:
		return apperror.New(apperror.CodeInvalidArgument, fmt.Sprintf("unknown potential flavour %q", args.potFlavor))
	}
	if err != nil {
		return err
	}

	if err := writeReport(cfg, args, batch); err != nil {
		return err
	}
	if store != nil {
		if err := store.SaveBatch(ctx, uuid.New(), batch); err != nil {
			log.Warn("failed to persist result batch", "error", err)
		}
	}
	return nil
}

func loadQueries(queryDir string) ([]ioformat.QueryRecord, error) {
	info, err := os.Stat(queryDir)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeDumpIO, "stat query_dir")
	}
	path := queryDir
	if info.IsDir() {
		path = filepath.Join(queryDir, "queries")
	}
	return ioformat.LoadQueries(path)
}

func writeReport(cfg *config.Config, args *cliArgs, batch report.Batch) error {
	format := cfg.Report.Format
	if format == "" {
		format = "csv"
	}
	gen, err := report.NewRegistry().Get(format)
	if err != nil {
		return err
	}
	data, err := gen.Generate(batch)
	if err != nil {
		return err
	}
	out := args.out
	if out == "" {
		out = filepath.Join(args.queryDir, "report."+format)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return apperror.Wrap(err, apperror.CodeDumpIO, "writing report").WithField(out)
	}
	return nil
}

// potentialBuild constructs a fresh potential of one flavour from the
// current state of net, rebuilding the customization it needs. Each
// Server.Query retry and each periodic recustomization calls this again.
type potentialBuild[P potential.Potential] func(net *capgraph.Network, c *cch.CCH, tree *cch.SeparatorTree, args *cliArgs) (P, error)

func buildCCHPot(net *capgraph.Network, c *cch.CCH, tree *cch.SeparatorTree, _ *cliArgs) (*potential.CCHPot, error) {
	d := customize.NewDriver()
	metric := d.CustomizeScalarParallel(c, customize.ScalarLowerBoundView(net), tree)
	return potential.NewCCHPot(c, metric), nil
}

func buildBounded(net *capgraph.Network, c *cch.CCH, tree *cch.SeparatorTree, _ *cliArgs) (*potential.Bounded, error) {
	d := customize.NewDriver()
	bm := d.CustomizeBoundsParallel(c, customize.BoundViewFromGraph(net), tree)
	return potential.NewBounded(c, bm), nil
}

func buildMultiMetric(net *capgraph.Network, c *cch.CCH, tree *cch.SeparatorTree, args *cliArgs) (*potential.MultiMetricPot, error) {
	d := customize.NewDriver()
	bm := d.CustomizeBoundsParallel(c, customize.BoundViewFromGraph(net), tree)
	entries := customize.BuildEqualIntervalEntries(args.numMetrics)
	views := customize.IntervalViewsFromGraph(net, entries)
	intervals := customize.CustomizeIntervals(c, views, entries)
	return potential.NewMultiMetricPot(c, intervals, bm), nil
}

func buildCorridor(net *capgraph.Network, c *cch.CCH, tree *cch.SeparatorTree, args *cliArgs) (*potential.CorridorLowerboundPot, error) {
	d := customize.NewDriver()
	bm := d.CustomizeBoundsParallel(c, customize.BoundViewFromGraph(net), tree)
	entries := customize.BuildEqualIntervalEntries(args.intervalCount)
	views := customize.IntervalViewsFromGraph(net, entries)
	intervals := customize.CustomizeIntervals(c, views, entries)
	return potential.NewCorridorLowerboundPot(c, intervals, bm), nil
}

// runQueries drives every query through a Server[P], rebuilding the
// customization every args.updateFrequency queries or whenever the server
// itself reports requires_pot_update (spec.md §2 "Periodically, or on
// potential invalidation, Server rebuilds a customization").
func runQueries[P potential.Potential](
	net *capgraph.Network, c *cch.CCH, tree *cch.SeparatorTree,
	queries []ioformat.QueryRecord, args *cliArgs, observer server.Observer,
	qcache *resultcache.QueryCache, build potentialBuild[P],
) (report.Batch, error) {
	log := logger.WithComponent("cmd/router")
	var graphRevision uint64

	custStart := time.Now()
	_, custSpan := tracing.StartSpan(context.Background(), "Customization.Run")
	pot, err := build(net, c, tree, args)
	custSpan.End()
	if err != nil {
		return report.Batch{}, err
	}
	custTime := time.Since(custStart)

	recustomize := func() (P, error) {
		graphRevision++
		t0 := time.Now()
		_, span := tracing.StartSpan(context.Background(), "Customization.Run")
		p, err := build(net, c, tree, args)
		span.End()
		custTime += time.Since(t0)
		return p, err
	}

	opts := []server.Option[P]{server.WithRecustomize[P](recustomize)}
	if observer != nil {
		opts = append(opts, server.WithObserver[P](observer))
	}
	s := server.New[P](net, c, pot, opts...)

	var numRuns, numValid int
	var totalDist float64
	var queryTime time.Duration

	for i, q := range queries {
		if args.updateFrequency > 0 && i > 0 && i%args.updateFrequency == 0 {
			p, err := recustomize()
			if err != nil {
				return report.Batch{}, err
			}
			s = server.New[P](net, c, p, opts...)
		}

		ctx, span := tracing.StartSpan(context.Background(), "Server.Query")
		numRuns++

		key := ""
		if qcache != nil && !args.update {
			key = resultcache.BuildKey(q.From, q.To, int64(q.DepartureMs), graphRevision)
			if cached, err := qcache.Get(ctx, key); err == nil {
				span.End()
				if cached.Found {
					numValid++
					totalDist += float64(cached.DistanceMs)
				}
				continue
			}
		}

		res, err := s.Query(q.From, q.To, server.Timestamp(q.DepartureMs), args.update)
		if err != nil {
			tracing.SetError(ctx, err)
			span.End()
			if apperror.Code(err) == apperror.CodeDoubleStale {
				return report.Batch{}, err
			}
			log.Error("query failed", "from", q.From, "to", q.To, "error", err)
			continue
		}
		span.End()

		queryTime += res.Diagnostics.QueryTime
		if args.update {
			graphRevision++
		}
		if res.Found {
			numValid++
			totalDist += float64(res.Distance)
		}
		if qcache != nil && !args.update {
			_ = qcache.Set(ctx, key, &resultcache.CachedResult{
				Found: res.Found, DistanceMs: int64(res.Distance),
				Nodes: res.Nodes, Edges: res.Edges,
			})
		}
	}

	avgDist := 0.0
	if numValid > 0 {
		avgDist = totalDist / float64(numValid)
	}

	batch := report.Batch{
		QueryResults: []report.QueryResultRecord{{
			Type:       args.potFlavor,
			QueryTimeS: queryTime.Seconds(),
			CustTimeS:  custTime.Seconds(),
			NumRuns:    numRuns,
			NumValid:   numValid,
			TotalDist:  totalDist,
			AvgDist:    avgDist,
		}},
		PotentialQuality: []report.PotentialQualityRecord{
			{Name: args.potFlavor, QueryCount: numRuns, TimeType: "query", TimeS: queryTime.Seconds()},
			{Name: args.potFlavor, QueryCount: numRuns, TimeType: "customization", TimeS: custTime.Seconds()},
		},
	}
	return batch, nil
}
