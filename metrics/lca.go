package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func (m *Metrics) registerLCA() {
	m.PreprocessSeconds = m.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lca_preprocess_seconds",
		Help:    "Time spent building an LCA engine",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"strategy"})

	m.QueriesTotal = m.NewCounterVec(prometheus.CounterOpts{
		Name: "lca_queries_total",
		Help: "Total number of LCA queries answered",
	}, []string{"strategy", "result"})

	m.BatchSeconds = m.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lca_query_batch_seconds",
		Help:    "Time spent resolving a batch of LCA queries",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"strategy"})

	m.BenchSeconds = m.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lca_bench_seconds",
		Help: "Elapsed time of the latest benchmark run per strategy and query count",
	}, []string{"strategy", "queries"})
}

// ObservePreprocess 记录一次引擎构建耗时。m 为 nil 时不做任何事。
func (m *Metrics) ObservePreprocess(strategy string, d time.Duration) {
	if m == nil {
		return
	}
	m.PreprocessSeconds.WithLabelValues(strategy).Observe(d.Seconds())
}

// ObserveBatch 记录一批查询的耗时与数量，err 非 nil 时计入失败。
func (m *Metrics) ObserveBatch(strategy string, queries int, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.QueriesTotal.WithLabelValues(strategy, result).Add(float64(queries))
	m.BatchSeconds.WithLabelValues(strategy).Observe(d.Seconds())
}

// SetBench 记录基准测试的单项耗时。
func (m *Metrics) SetBench(strategy string, queries int, d time.Duration) {
	if m == nil {
		return
	}
	m.BenchSeconds.WithLabelValues(strategy, strconv.Itoa(queries)).Set(d.Seconds())
}
