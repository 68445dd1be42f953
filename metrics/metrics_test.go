package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLCAMetrics(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")
	m.ObservePreprocess("euler_rmq", 3*time.Millisecond)
	m.ObserveBatch("euler_rmq", 10, time.Millisecond, nil)
	m.ObserveBatch("euler_rmq", 2, time.Millisecond, errors.New("boom"))
	m.SetBench("tarjan", 1000, 250*time.Millisecond)

	assert.InDelta(t, 10, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("euler_rmq", "ok")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("euler_rmq", "error")), 0)
	assert.InDelta(t, 0.25, testutil.ToFloat64(m.BenchSeconds.WithLabelValues("tarjan", "1000")), 1e-9)
	assert.Equal(t, 1, testutil.CollectAndCount(m.PreprocessSeconds))
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObservePreprocess("naive", time.Second)
		m.ObserveBatch("naive", 1, time.Second, nil)
		m.SetBench("naive", 1, time.Second)
		m.RegisterBuildInfo("svc", "v1")
	})
}

func TestHandlerExposesRegistry(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")
	m.RegisterBuildInfo("lcad", "")
	m.RegisterBuildInfo("ignored", "again")
	m.ObserveBatch("naive", 1, time.Millisecond, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `build_info{service="lcad",version="unknown"} 1`)
	assert.Contains(t, body, `lca_queries_total{result="ok",strategy="naive"} 1`)
	assert.Contains(t, body, "go_goroutines")
}
