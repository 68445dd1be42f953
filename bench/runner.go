package bench

import (
	"context"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/wyfcoding/lca/algorithm/lca"
	"github.com/wyfcoding/lca/algorithm/tree"
	"github.com/wyfcoding/lca/engine"
	"github.com/wyfcoding/lca/logging"
	"github.com/wyfcoding/lca/metrics"
	"github.com/wyfcoding/lca/tracing"
	"github.com/wyfcoding/lca/xerrors"
)

// Result 是单个策略在一组查询上的计时结果。
type Result struct {
	Strategy   lca.Strategy
	Queries    int
	Preprocess time.Duration // 在线策略命中缓存时为 0
	Query      time.Duration
	Cached     bool
}

// Option 定义 Runner 构造参数。
type Option func(*Runner)

// WithStrategies 指定参与对比的策略，默认全部。
func WithStrategies(strategies ...lca.Strategy) Option {
	return func(r *Runner) {
		if len(strategies) > 0 {
			r.strategies = strategies
		}
	}
}

// WithWorkers 设置在线批量查询的并发度，1 表示顺序执行。
func WithWorkers(workers int) Option {
	return func(r *Runner) {
		r.workers = workers
	}
}

// WithVerify 开启或关闭跨策略结果校验。
func WithVerify(verify bool) Option {
	return func(r *Runner) {
		r.verify = verify
	}
}

// WithSeed 设置查询生成的随机种子。
func WithSeed(seed uint64) Option {
	return func(r *Runner) {
		r.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithLogger 注入日志记录器。
func WithLogger(logger *logging.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics 注入指标采集器。
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// Runner 在同一棵树上依次对比各策略的预处理与查询耗时。
// 在线引擎经 Registry 缓存，跨查询规模复用；Tarjan 每轮重新构建。
type Runner struct {
	registry   *engine.Registry
	rng        *rand.Rand
	logger     *logging.Logger
	metrics    *metrics.Metrics
	strategies []lca.Strategy
	workers    int
	verify     bool
}

// NewRunner 创建 Runner。
func NewRunner(registry *engine.Registry, opts ...Option) *Runner {
	r := &Runner{
		registry:   registry,
		logger:     logging.Default(),
		strategies: lca.Strategies(),
		workers:    1,
		verify:     true,
	}
	WithSeed(1)(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run 对每个查询规模生成一批查询，并让每个策略各跑一遍。
// 开启校验时，任何策略与第一个策略的答案不一致都会返回 ErrResultMismatch。
func (r *Runner) Run(ctx context.Context, queryCounts []int) ([]Result, error) {
	t := r.registry.Tree()
	ctx, span := tracing.StartBench(ctx, t.Size(), queryCounts)
	defer span.End()

	results := make([]Result, 0, len(queryCounts)*len(r.strategies))
	for _, count := range queryCounts {
		pairs := queryPairs(r.rng, t, count)
		r.logger.InfoContext(ctx, "test cases generated", "queries", len(pairs), "nodes", t.Size())

		var baseline []int
		var baseStrategy lca.Strategy
		for _, s := range r.strategies {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			res, answers, err := r.runOne(ctx, s, pairs)
			if err != nil {
				tracing.SetError(ctx, err)
				return results, err
			}
			results = append(results, res)
			r.metrics.SetBench(string(s), res.Queries, res.Query)
			r.logger.InfoContext(ctx, "strategy measured",
				"strategy", s, "queries", res.Queries,
				"preprocess", res.Preprocess, "query", res.Query, "cached", res.Cached)

			if !r.verify {
				continue
			}
			if baseline == nil {
				baseline, baseStrategy = answers, s
				continue
			}
			if i := firstDiff(baseline, answers); i >= 0 {
				err := xerrors.ErrResultMismatch.WithDetail("%s and %s disagree on (%d, %d): %d vs %d",
					baseStrategy, s, pairs[i].U, pairs[i].V, baseline[i], answers[i])
				tracing.SetError(ctx, err)
				return results, err
			}
		}
	}
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, s lca.Strategy, pairs []lca.Pair) (Result, []int, error) {
	res := Result{Strategy: s, Queries: len(pairs)}

	if s == lca.StrategyTarjan {
		tj, elapsed, err := Measure(func() (*lca.Tarjan, error) {
			return r.registry.Tarjan(), nil
		})
		if err != nil {
			return res, nil, err
		}
		res.Preprocess = elapsed
		for _, p := range pairs {
			if err := tj.Submit(p.U, p.V); err != nil {
				return res, nil, err
			}
		}
		answers, elapsed, err := Measure(tj.ResolveAll)
		r.metrics.ObserveBatch(string(s), len(pairs), elapsed, err)
		if err != nil {
			return res, nil, err
		}
		res.Query = elapsed
		out := make([]int, len(answers))
		for i, a := range answers {
			out[i] = a.LCA
		}
		return res, out, nil
	}

	res.Cached = slices.Contains(r.registry.Strategies(), s)
	e, elapsed, err := Measure(func() (lca.Engine, error) {
		return r.registry.Get(ctx, s)
	})
	if err != nil {
		return res, nil, err
	}
	if !res.Cached {
		res.Preprocess = elapsed
	}

	out, elapsed, err := Measure(func() ([]int, error) {
		return lca.QueryAll(ctx, e, pairs, r.workers)
	})
	r.metrics.ObserveBatch(string(s), len(pairs), elapsed, err)
	if err != nil {
		return res, nil, err
	}
	res.Query = elapsed
	return res, out, nil
}

// queryPairs 为树生成查询。节点恰为 [1, n] 时直接按标识取值，
// 否则把生成的序号映射到先序节点列表上。
func queryPairs(rng *rand.Rand, t *tree.Tree, count int) []lca.Pair {
	n := t.Size()
	pairs := GenerateQueries(rng, n, count)
	nodes := t.Nodes()
	if slices.Min(nodes) == 1 && slices.Max(nodes) == n {
		return pairs
	}
	for i := range pairs {
		pairs[i] = lca.Pair{U: nodes[pairs[i].U-1], V: nodes[pairs[i].V-1]}
	}
	return pairs
}

func firstDiff(a, b []int) int {
	for i := range a {
		if a[i] != b[i] {
			return i
		}
	}
	return -1
}
