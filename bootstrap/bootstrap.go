// Package bootstrap 负责两个可执行程序共享的启动流程：解析参数、加载配置、初始化日志/追踪/ID 生成器并准备树。
package bootstrap

import (
	"context"
	"flag"
	"math/rand/v2"

	"github.com/wyfcoding/lca/algorithm/tree"
	"github.com/wyfcoding/lca/bench"
	"github.com/wyfcoding/lca/config"
	"github.com/wyfcoding/lca/idgen"
	"github.com/wyfcoding/lca/logging"
	"github.com/wyfcoding/lca/tracing"
)

// Bootstrapper 处理通用基础设施的初始化
type Bootstrapper struct {
	ServiceName string
	Version     string
	ConfigPath  string
	Logger      *logging.Logger
}

// New 创建一个新的引导器实例
func New(serviceName, version string) *Bootstrapper {
	return &Bootstrapper{
		ServiceName: serviceName,
		Version:     version,
	}
}

// Initialize 解析命令行参数、加载配置，并按配置初始化日志与 ID 生成器。
// args 不含程序名；-config 为空时仅使用默认值与 APP_ 环境变量。
func (b *Bootstrapper) Initialize(args []string, cfg *config.Config) error {
	fs := flag.NewFlagSet(b.ServiceName, flag.ContinueOnError)
	fs.StringVar(&b.ConfigPath, "config", "", "path to config file (toml)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// 配置加载前先用默认 Logger 记录可能的错误。
	logging.InitLogger(b.ServiceName, "bootstrap")
	b.Logger = logging.Default()

	if err := config.Load(b.ConfigPath, cfg); err != nil {
		b.Logger.Error("failed to load config", "path", b.ConfigPath, "error", err)
		return err
	}

	b.Logger = logging.NewFromConfig(logging.Config{
		Service:    cfg.Server.Name,
		Module:     b.ServiceName,
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})
	logging.SetDefault(b.Logger)

	if err := idgen.Init(cfg.IDGen); err != nil {
		b.Logger.Error("failed to init id generator", "error", err)
		return err
	}

	config.PrintWithMask(cfg)
	b.Logger.Info("bootstrap complete", "version", b.Version, "config", b.ConfigPath)
	return nil
}

// Watch 在配置文件存在时开启热更新。
func (b *Bootstrapper) Watch(cfg *config.Config) {
	if b.ConfigPath == "" {
		return
	}
	config.Watch(cfg)
}

// SetupTracing 初始化 OpenTelemetry 追踪器，返回的函数用于关闭。
func (b *Bootstrapper) SetupTracing(ctx context.Context, cfg config.TracingConfig) func() {
	if cfg.ServiceName == "" {
		cfg.ServiceName = b.ServiceName
	}
	shutdown, err := tracing.InitTracer(ctx, cfg)
	if err != nil {
		b.Logger.Error("failed to init tracer", "error", err)
		return func() {}
	}
	return func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			b.Logger.Error("failed to shutdown tracer", "error", err)
		}
	}
}

// LoadTree 按配置准备树：配置了文件时读取 JSON，否则按 generate 参数随机生成（根为 1）。
func (b *Bootstrapper) LoadTree(cfg config.TreeConfig) (*tree.Tree, error) {
	if cfg.File != "" {
		t, err := tree.LoadFile(cfg.File)
		if err != nil {
			return nil, err
		}
		b.Logger.Info("tree loaded", "file", cfg.File, "root", t.Root(), "nodes", t.Size())
		return t, nil
	}

	g := cfg.Generate
	rng := rand.New(rand.NewPCG(g.Seed, g.Seed^0x5851f42d4c957f2d))
	adj, n := bench.GenerateTree(rng, g.MaxDepth, g.MaxChildren)
	t, err := tree.New(1, adj)
	if err != nil {
		return nil, err
	}
	b.Logger.Info("tree generated", "max_depth", g.MaxDepth, "max_children", g.MaxChildren, "seed", g.Seed, "nodes", n)
	return t, nil
}
