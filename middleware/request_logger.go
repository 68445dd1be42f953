package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/lca/contextx"
	"github.com/wyfcoding/lca/tracing"
)

// Logger 访问日志中间件。耗时超过 slowThreshold（> 0 时生效）的请求以 Warn 级别记录。
func Logger(logger *slog.Logger, slowThreshold time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		cost := time.Since(start)
		ctx := c.Request.Context()

		level := slog.LevelInfo
		msg := "http request"
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		} else if slowThreshold > 0 && cost > slowThreshold {
			level = slog.LevelWarn
			msg = "slow http request"
		}

		logger.Log(ctx, level, msg,
			"trace_id", tracing.GetTraceID(ctx),
			"request_id", contextx.GetRequestID(ctx),
			"strategy", contextx.GetStrategy(ctx),
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"ip", c.ClientIP(),
			"cost", cost,
			"user_agent", c.Request.UserAgent(),
		)
	}
}
