package server

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/lca/algorithm/lca"
	"github.com/wyfcoding/lca/contextx"
	"github.com/wyfcoding/lca/engine"
	"github.com/wyfcoding/lca/health"
	"github.com/wyfcoding/lca/metrics"
	"github.com/wyfcoding/lca/response"
	"github.com/wyfcoding/lca/tracing"
	"github.com/wyfcoding/lca/xerrors"
)

// Handler 承载 LCA 查询接口。
type Handler struct {
	registry   *engine.Registry
	metrics    *metrics.Metrics
	strategies []lca.Strategy // 允许对外提供的策略，第一个在线策略为默认值
	workers    int
	checks     *health.Registry
}

// NewHandler 创建 Handler。strategies 为空时开放全部策略。
func NewHandler(registry *engine.Registry, m *metrics.Metrics, strategies []lca.Strategy, workers int) *Handler {
	if len(strategies) == 0 {
		strategies = lca.Strategies()
	}
	h := &Handler{registry: registry, metrics: m, strategies: strategies, workers: workers}
	h.checks = health.NewRegistry(0)
	h.checks.Register("engine", health.EngineChecker(registry, h.defaultStrategy()))
	return h
}

// Checks 返回就绪检查注册表，调用方可追加自己的依赖检查。
func (h *Handler) Checks() *health.Registry {
	return h.checks
}

// TreeInfo 是 GET /v1/tree 的响应数据。
type TreeInfo struct {
	Root       int            `json:"root"`
	Size       int            `json:"size"`
	Strategies []lca.Strategy `json:"strategies"`
	Built      []lca.Strategy `json:"built"`
}

// QueryRequest 是单次查询参数。节点 0 合法，因此使用指针区分缺省。
type QueryRequest struct {
	U        *int   `form:"u"        binding:"required"`
	V        *int   `form:"v"        binding:"required"`
	Strategy string `form:"strategy"`
}

// QueryResult 是单次查询的响应数据。
type QueryResult struct {
	U        int          `json:"u"`
	V        int          `json:"v"`
	LCA      int          `json:"lca"`
	Strategy lca.Strategy `json:"strategy"`
}

// BatchRequest 是批量查询请求体：{"strategy": "tarjan", "pairs": [[4, 5], [4, 6]]}。
type BatchRequest struct {
	Strategy string  `json:"strategy"`
	Pairs    [][]int `json:"pairs" binding:"required,min=1,dive,len=2"`
}

// BatchResult 是批量查询的响应数据，answers 与 pairs 一一对应。
type BatchResult struct {
	Strategy  lca.Strategy `json:"strategy"`
	Answers   []int        `json:"answers"`
	ElapsedMS float64      `json:"elapsed_ms"`
}

// Healthz 存活探针。
func (h *Handler) Healthz(c *gin.Context) {
	response.SuccessWithRawData(c, gin.H{"status": "ok"})
}

// Readyz 就绪探针：默认策略的引擎可用后才返回 200。
func (h *Handler) Readyz(c *gin.Context) {
	results, err := h.checks.Check(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": results})
		return
	}
	response.SuccessWithRawData(c, gin.H{"status": "ready", "checks": results})
}

// Tree 返回树的基本信息与已构建的策略。
func (h *Handler) Tree(c *gin.Context) {
	t := h.registry.Tree()
	response.Success(c, TreeInfo{
		Root:       t.Root(),
		Size:       t.Size(),
		Strategies: h.strategies,
		Built:      h.registry.Strategies(),
	})
}

// Query 处理 GET /v1/lca。
func (h *Handler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, xerrors.ErrInvalidInput.WithDetail("%v", err))
		return
	}
	strategy, err := h.resolveStrategy(c, req.Strategy)
	if err != nil {
		response.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	e, err := h.registry.Get(ctx, strategy)
	if err != nil {
		response.Error(c, err)
		return
	}

	start := time.Now()
	w, err := e.LCA(*req.U, *req.V)
	h.metrics.ObserveBatch(string(strategy), 1, time.Since(start), err)
	if err != nil {
		tracing.SetError(ctx, err)
		response.Error(c, err)
		return
	}
	response.Success(c, QueryResult{U: *req.U, V: *req.V, LCA: w, Strategy: strategy})
}

// Batch 处理 POST /v1/lca/batch。Tarjan 走离线批次，其余策略并发查询。
func (h *Handler) Batch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, xerrors.ErrInvalidInput.WithDetail("%v", err))
		return
	}
	strategy, err := h.resolveStrategy(c, req.Strategy)
	if err != nil {
		response.Error(c, err)
		return
	}

	pairs := make([]lca.Pair, len(req.Pairs))
	for i, p := range req.Pairs {
		pairs[i] = lca.Pair{U: p[0], V: p[1]}
	}

	ctx, span := tracing.StartBatch(c.Request.Context(), string(strategy), len(pairs))
	defer span.End()

	start := time.Now()
	answers, err := h.resolve(ctx, strategy, pairs)
	elapsed := time.Since(start)
	h.metrics.ObserveBatch(string(strategy), len(pairs), elapsed, err)
	if err != nil {
		tracing.SetError(ctx, err)
		response.Error(c, err)
		return
	}

	response.Success(c, BatchResult{
		Strategy:  strategy,
		Answers:   answers,
		ElapsedMS: float64(elapsed.Microseconds()) / 1000,
	})
}

func (h *Handler) resolve(ctx context.Context, strategy lca.Strategy, pairs []lca.Pair) ([]int, error) {
	if strategy == lca.StrategyTarjan {
		tj := h.registry.Tarjan()
		for _, p := range pairs {
			if err := tj.Submit(p.U, p.V); err != nil {
				return nil, err
			}
		}
		answers, err := tj.ResolveAll()
		if err != nil {
			return nil, err
		}
		out := make([]int, len(answers))
		for i, a := range answers {
			out[i] = a.LCA
		}
		return out, nil
	}

	e, err := h.registry.Get(ctx, strategy)
	if err != nil {
		return nil, err
	}
	return lca.QueryAll(ctx, e, pairs, h.workers)
}

// resolveStrategy 解析请求中的策略名并校验是否开放，空串取默认在线策略。
// 解析结果写入请求上下文，供访问日志使用。
func (h *Handler) resolveStrategy(c *gin.Context, name string) (lca.Strategy, error) {
	var strategy lca.Strategy
	if name == "" {
		strategy = h.defaultStrategy()
	} else {
		s, err := lca.ParseStrategy(name)
		if err != nil {
			return "", err
		}
		strategy = s
	}
	if !slices.Contains(h.strategies, strategy) {
		return "", xerrors.ErrInvalidStrategy.WithDetail("strategy %q is not enabled", strategy)
	}
	c.Request = c.Request.WithContext(contextx.WithStrategy(c.Request.Context(), string(strategy)))
	return strategy, nil
}

func (h *Handler) defaultStrategy() lca.Strategy {
	for _, s := range h.strategies {
		if s.Online() {
			return s
		}
	}
	return h.strategies[0]
}
