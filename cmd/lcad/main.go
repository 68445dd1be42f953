// lcad 以 HTTP 服务的形式对外提供 LCA 查询，并暴露 Prometheus 指标。
//
//	lcad -config configs/lca.toml
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/wyfcoding/lca/algorithm/lca"
	"github.com/wyfcoding/lca/app"
	"github.com/wyfcoding/lca/bootstrap"
	"github.com/wyfcoding/lca/config"
	"github.com/wyfcoding/lca/engine"
	"github.com/wyfcoding/lca/limiter"
	"github.com/wyfcoding/lca/metrics"
	"github.com/wyfcoding/lca/server"
)

var version = "dev"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "lcad:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	b := bootstrap.New("lcad", version)
	var cfg config.Config
	if err := b.Initialize(args, &cfg); err != nil {
		return err
	}

	strategies, err := lca.ParseStrategies(cfg.Engine.Strategies)
	if err != nil {
		return err
	}
	t, err := b.LoadTree(cfg.Tree)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics(cfg.Server.Name)
		m.RegisterBuildInfo(cfg.Server.Name, version)
	}

	registry, err := engine.NewRegistry(t,
		engine.WithLogger(b.Logger.Named("engine")),
		engine.WithMetrics(m),
		engine.WithMaxDepth(cfg.Engine.MaxDepth),
	)
	if err != nil {
		return err
	}

	rl := newLimiter(cfg.RateLimit)
	config.RegisterReloadHook(func(c *config.Config) {
		applyRateLimit(rl, c.RateLimit)
		b.Logger.Info("rate limit reloaded", "enabled", c.RateLimit.Enabled, "rate", c.RateLimit.Rate, "burst", c.RateLimit.Burst)
	})
	b.Watch(&cfg)

	serviceName := ""
	if cfg.Tracing.Enabled {
		serviceName = cfg.Server.Name
	}
	router := server.NewRouter(
		server.NewHandler(registry, m, strategies, cfg.Engine.Workers),
		server.RouterOptions{
			Logger:         b.Logger.Named("http").Logger,
			Metrics:        m,
			Limiter:        rl,
			ServiceName:    serviceName,
			MetricsPath:    cfg.Metrics.Path,
			MaxBodyBytes:   cfg.Server.HTTP.MaxBodyBytes,
			RequestTimeout: cfg.Server.HTTP.RequestTimeout,
			SlowThreshold:  cfg.Log.SlowThreshold,
		},
	)

	httpServer := server.NewGinServer(router, cfg.Server.HTTP.Addr, b.Logger.Logger, server.HTTPOptions{
		ReadTimeout:     cfg.Server.HTTP.ReadTimeout,
		WriteTimeout:    cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:     cfg.Server.HTTP.IdleTimeout,
		ShutdownTimeout: cfg.Server.HTTP.ShutdownTimeout,
	})

	b.Logger.Info("lcad ready", "addr", cfg.Server.HTTP.Addr, "nodes", t.Size(), "strategies", cfg.Engine.Strategies)
	return app.New(cfg.Server.Name, b.Logger.Logger,
		app.WithServer(httpServer),
		app.WithCleanup(b.SetupTracing(ctx, cfg.Tracing)),
	).Run(ctx)
}

// newLimiter 总是返回可热更新的限流器，未启用时放行所有请求。
func newLimiter(cfg config.RateLimitConfig) *limiter.DynamicLimiter {
	rl := limiter.NewDynamicLimiter(nil)
	applyRateLimit(rl, cfg)
	return rl
}

func applyRateLimit(rl *limiter.DynamicLimiter, cfg config.RateLimitConfig) {
	if !cfg.Enabled {
		rl.Update(nil)
		return
	}
	rl.UpdateLocal(cfg.Rate, cfg.Burst)
}
