// Package contextx 提供在 context.Context 中注入与提取请求级信息的工具函数。
// 它通过使用私有类型作为 Key，有效防止了跨包的 Key 冲突。
package contextx

import "context"

type contextKey int

const (
	requestIDKey contextKey = iota // 请求唯一标识 Key。
	strategyKey                    // 本次请求使用的 LCA 策略 Key。
)

// WithRequestID 将请求 ID 注入到 Context 中。
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID 从 Context 中提取请求 ID。
func GetRequestID(ctx context.Context) string {
	if val, ok := ctx.Value(requestIDKey).(string); ok {
		return val
	}
	return ""
}

// WithStrategy 将策略名称注入到 Context 中，供访问日志使用。
func WithStrategy(ctx context.Context, strategy string) context.Context {
	return context.WithValue(ctx, strategyKey, strategy)
}

// GetStrategy 从 Context 中提取策略名称。
func GetStrategy(ctx context.Context) string {
	if val, ok := ctx.Value(strategyKey).(string); ok {
		return val
	}
	return ""
}
