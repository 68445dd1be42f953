package server

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/lca/limiter"
	"github.com/wyfcoding/lca/metrics"
	"github.com/wyfcoding/lca/middleware"
)

// RouterOptions 定义路由与中间件装配参数，零值字段对应的中间件不启用。
type RouterOptions struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Limiter        limiter.Limiter
	ServiceName    string // 非空时启用 otelgin 追踪
	MetricsPath    string
	MaxBodyBytes   int64
	RequestTimeout time.Duration
	SlowThreshold  time.Duration
}

// NewRouter 装配中间件并注册路由：
//
//	GET  /healthz
//	GET  /readyz
//	GET  /metrics（路径可配置）
//	GET  /v1/tree
//	GET  /v1/lca?u=&v=&strategy=
//	POST /v1/lca/batch
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metricsPath := opts.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	mws := []gin.HandlerFunc{
		middleware.Recovery(logger),
		middleware.RequestID(),
	}
	if opts.ServiceName != "" {
		mws = append(mws, middleware.TracingMiddleware(opts.ServiceName), middleware.TraceIDHeader())
	}
	mws = append(mws,
		middleware.Logger(logger, opts.SlowThreshold),
		middleware.HTTPMetricsMiddlewareWithOptions(opts.Metrics, middleware.MetricsOptions{
			SkipPaths: []string{metricsPath, "/healthz", "/readyz"},
		}),
	)
	if opts.Limiter != nil {
		mws = append(mws, middleware.RateLimitMiddleware(opts.Limiter))
	}
	mws = append(mws,
		middleware.MaxBodyBytes(opts.MaxBodyBytes),
		middleware.TimeoutMiddleware(opts.RequestTimeout),
	)

	r := NewDefaultGinEngine(mws...)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	if opts.Metrics != nil {
		r.GET(metricsPath, gin.WrapH(opts.Metrics.Handler()))
	}

	v1 := r.Group("/v1")
	v1.GET("/tree", h.Tree)
	v1.GET("/lca", h.Query)
	v1.POST("/lca/batch", h.Batch)
	return r
}
