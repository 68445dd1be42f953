// lcabench 在同一棵树上对比各 LCA 策略的预处理与查询耗时。
//
//	lcabench -config configs/lca.toml
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/wyfcoding/lca/algorithm/lca"
	"github.com/wyfcoding/lca/bench"
	"github.com/wyfcoding/lca/bootstrap"
	"github.com/wyfcoding/lca/config"
	"github.com/wyfcoding/lca/engine"
	"github.com/wyfcoding/lca/metrics"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "lcabench:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := bootstrap.New("lcabench", version)
	var cfg config.Config
	if err := b.Initialize(args, &cfg); err != nil {
		return err
	}
	shutdown := b.SetupTracing(ctx, cfg.Tracing)
	defer shutdown()

	strategies, err := lca.ParseStrategies(cfg.Engine.Strategies)
	if err != nil {
		return err
	}
	t, err := b.LoadTree(cfg.Tree)
	if err != nil {
		return err
	}

	m := metrics.NewMetrics(cfg.Server.Name)
	m.RegisterBuildInfo("lcabench", version)
	registry, err := engine.NewRegistry(t,
		engine.WithLogger(b.Logger.Named("engine")),
		engine.WithMetrics(m),
		engine.WithMaxDepth(cfg.Engine.MaxDepth),
	)
	if err != nil {
		return err
	}

	runner := bench.NewRunner(registry,
		bench.WithStrategies(strategies...),
		bench.WithWorkers(cfg.Engine.Workers),
		bench.WithVerify(cfg.Bench.Verify),
		bench.WithSeed(cfg.Bench.Seed),
		bench.WithLogger(b.Logger.Named("bench")),
		bench.WithMetrics(m),
	)
	results, err := runner.Run(ctx, cfg.Bench.QueryCounts)
	// 出错时仍输出已完成的部分。
	if werr := writeTable(out, t.Size(), results); werr != nil && err == nil {
		err = werr
	}
	return err
}

func writeTable(out io.Writer, nodes int, results []bench.Result) error {
	fmt.Fprintf(out, "tree nodes: %d\n\n", nodes)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "strategy\tqueries\tpreprocess(ms)\tquery(ms)\tcached\t")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%t\t\n",
			r.Strategy, r.Queries, millis(r.Preprocess), millis(r.Query), r.Cached)
	}
	return w.Flush()
}

func millis(d time.Duration) string {
	return fmt.Sprintf("%.3f", float64(d)/float64(time.Millisecond))
}
