package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// LCA 相关 Span 名称与属性键。
const (
	SpanPreprocess = "lca.preprocess"
	SpanBatch      = "lca.batch"
	SpanBench      = "lca.bench"

	AttrStrategy    = attribute.Key("lca.strategy")
	AttrNodes       = attribute.Key("lca.nodes")
	AttrPairs       = attribute.Key("lca.pairs")
	AttrQueryCounts = attribute.Key("lca.query_counts")
)

// StartPreprocess 为一次引擎预处理开启 Span。
func StartPreprocess(ctx context.Context, strategy string, nodes int) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanPreprocess, trace.WithAttributes(
		AttrStrategy.String(strategy),
		AttrNodes.Int(nodes),
	))
}

// StartBatch 为一次批量查询开启 Span。
func StartBatch(ctx context.Context, strategy string, pairs int) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanBatch, trace.WithAttributes(
		AttrStrategy.String(strategy),
		AttrPairs.Int(pairs),
	))
}

// StartBench 为一轮基准测试开启 Span。
func StartBench(ctx context.Context, nodes int, queryCounts []int) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanBench, trace.WithAttributes(
		AttrNodes.Int(nodes),
		AttrQueryCounts.IntSlice(queryCounts),
	))
}
