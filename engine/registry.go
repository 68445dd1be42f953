// Package engine 维护一棵树上已构建的在线 LCA 引擎。
//
// Registry 是调用方持有的显式缓存：每种在线策略只构建一次，
// 并发的首次请求通过 singleflight 共享同一次构建。
package engine

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wyfcoding/lca/algorithm/lca"
	"github.com/wyfcoding/lca/algorithm/tree"
	"github.com/wyfcoding/lca/logging"
	"github.com/wyfcoding/lca/metrics"
	"github.com/wyfcoding/lca/tracing"
	"github.com/wyfcoding/lca/xerrors"
)

// BuildFunc 根据策略构建在线引擎。
type BuildFunc func(strategy lca.Strategy, t *tree.Tree) (lca.Engine, error)

// Option 定义 Registry 构造参数。
type Option func(*Registry)

// WithLogger 注入日志记录器。
func WithLogger(logger *logging.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics 注入指标采集器。
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithMaxDepth 设置倍增表宽度下限，<= 0 表示由树深推导。
func WithMaxDepth(maxDepth int) Option {
	return func(r *Registry) {
		r.maxDepth = maxDepth
	}
}

// WithBuildFunc 替换引擎构建函数。
func WithBuildFunc(fn BuildFunc) Option {
	return func(r *Registry) {
		if fn != nil {
			r.build = fn
		}
	}
}

// Registry 缓存一棵树上各在线策略的引擎，可被多个 goroutine 并发使用。
type Registry struct {
	tree     *tree.Tree
	logger   *logging.Logger
	metrics  *metrics.Metrics
	build    BuildFunc
	flight   singleflight.Group
	mu       sync.RWMutex
	engines  map[lca.Strategy]lca.Engine
	maxDepth int
}

// NewRegistry 创建 Registry。t 为 nil 时返回 ErrInvalidInput。
func NewRegistry(t *tree.Tree, opts ...Option) (*Registry, error) {
	if t == nil {
		return nil, xerrors.ErrInvalidInput.WithDetail("registry requires a tree")
	}
	r := &Registry{
		tree:    t,
		logger:  logging.Default(),
		engines: make(map[lca.Strategy]lca.Engine),
	}
	r.build = r.defaultBuild
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Registry) defaultBuild(strategy lca.Strategy, t *tree.Tree) (lca.Engine, error) {
	if strategy == lca.StrategyBinaryLifting {
		return lca.NewBinaryLifting(t, r.maxDepth)
	}
	return lca.New(strategy, t)
}

// Tree 返回 Registry 绑定的树。
func (r *Registry) Tree() *tree.Tree {
	return r.tree
}

// Get 返回策略对应的在线引擎，首次请求时构建。
// Tarjan 为离线策略，应使用 Tarjan()。
func (r *Registry) Get(ctx context.Context, strategy lca.Strategy) (lca.Engine, error) {
	if !strategy.Online() {
		if _, err := lca.ParseStrategy(string(strategy)); err != nil {
			return nil, err
		}
		return nil, xerrors.ErrInvalidStrategy.WithDetail("%s is offline and is not cached", strategy)
	}

	if e, ok := r.cached(strategy); ok {
		return e, nil
	}

	v, err, _ := r.flight.Do(string(strategy), func() (any, error) {
		if e, ok := r.cached(strategy); ok {
			return e, nil
		}
		e, err := r.buildTimed(ctx, strategy)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.engines[strategy] = e
		r.mu.Unlock()
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(lca.Engine), nil
}

func (r *Registry) cached(strategy lca.Strategy) (lca.Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[strategy]
	return e, ok
}

func (r *Registry) buildTimed(ctx context.Context, strategy lca.Strategy) (lca.Engine, error) {
	ctx, span := tracing.StartPreprocess(ctx, string(strategy), r.tree.Size())
	defer span.End()

	start := time.Now()
	e, err := r.build(strategy, r.tree)
	elapsed := time.Since(start)
	if err != nil {
		tracing.SetError(ctx, err)
		r.logger.ErrorContext(ctx, "engine build failed", "strategy", strategy, "error", err)
		return nil, err
	}

	r.metrics.ObservePreprocess(string(strategy), elapsed)
	r.logger.InfoContext(ctx, "engine built", "strategy", strategy, "nodes", r.tree.Size(), "duration", elapsed)
	return e, nil
}

// Strategies 返回已构建的策略，按 lca.Strategies 的顺序。
func (r *Registry) Strategies() []lca.Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]lca.Strategy, 0, len(r.engines))
	for _, s := range lca.Strategies() {
		if _, ok := r.engines[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Tarjan 返回一个新的一次性离线引擎。
func (r *Registry) Tarjan() *lca.Tarjan {
	return lca.NewTarjan(r.tree)
}

// Reset 丢弃全部已构建的引擎，之后的 Get 会重新构建。
func (r *Registry) Reset() {
	r.mu.Lock()
	clear(r.engines)
	r.mu.Unlock()
}
