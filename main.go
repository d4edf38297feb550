package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tsdata-bench/bench"
	"tsdata-bench/kv"
	"tsdata-bench/mg"
	"tsdata-bench/ms"
	"tsdata-bench/my"
	"tsdata-bench/pg"

	log "github.com/sirupsen/logrus"
)

func main() {
	os.Exit(start(os.Args[1:]))
}

// start runs the benchmark and returns the process exit code, so deferred
// cleanup finishes before main exits.
func start(args []string) int {
	cfg, err := bench.ParseArgs("tsdata-bench", args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	if err := bench.ConfigureLogging(cfg.LogFormat, cfg.Debug); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	params := cfg.Params()
	if err := bench.ValidateParams(params); err != nil {
		log.WithError(err).Errorln("Can't start benchmark")
		return 2
	}

	if cfg.MetricsAddr != "" {
		server, err := bench.ServeMetrics(cfg.MetricsAddr)
		if err != nil {
			log.WithError(err).Errorln("Can't start metrics server")
			return 1
		}
		defer server.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, params); err != nil {
		log.WithError(err).WithField("db", cfg.DB).Errorln("Benchmark failed")
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg bench.Config, params bench.BenchParams) error {
	w, err := connect(cfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer w.Close()

	fmt.Println("═══════════════════════════════════════════")
	fmt.Printf("  %s insert / update / select benchmark\n", w.Name())
	fmt.Println("═══════════════════════════════════════════")
	fmt.Printf("  Rows: %d | Trials: %d | Warm-up: %d\n\n", params.Rows, params.Trials, params.Warmup)

	report, err := bench.RunTrials(ctx, w, params)
	if err != nil {
		return err
	}

	policy := params.Policy()
	summaries := bench.Summarize(report, policy)
	bench.PrintSummary(os.Stdout, report, policy, summaries)
	bench.PrintDetail(os.Stdout, summaries)
	return nil
}

func connect(cfg bench.Config) (bench.Workload, error) {
	conn := cfg.Conn()
	switch cfg.DB {
	case bench.Postgres:
		pool, err := pg.Connect(conn)
		if err != nil {
			return nil, err
		}
		return pg.New(pool), nil
	case bench.MySQL:
		db, err := my.Connect(conn)
		if err != nil {
			return nil, err
		}
		return my.New(db), nil
	case bench.MSSQL:
		db, err := ms.Connect(conn)
		if err != nil {
			return nil, err
		}
		return ms.New(db), nil
	case bench.MongoDB:
		client, err := mg.Connect(conn)
		if err != nil {
			return nil, err
		}
		return mg.New(client, conn.Database), nil
	case bench.Bolt:
		db, err := kv.Open(conn.Database)
		if err != nil {
			return nil, err
		}
		return kv.New(db), nil
	default:
		return nil, fmt.Errorf("database type '%s' not implemented", cfg.DB)
	}
}
