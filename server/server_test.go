package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/wyfcoding/lca/algorithm/lca"
	"github.com/wyfcoding/lca/algorithm/tree"
	"github.com/wyfcoding/lca/engine"
	"github.com/wyfcoding/lca/limiter"
	"github.com/wyfcoding/lca/metrics"
	"github.com/wyfcoding/lca/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code   int             `json:"code"`
	Msg    string          `json:"msg"`
	Data   json.RawMessage `json:"data"`
	Detail string          `json:"detail"`
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHandler(t *testing.T, m *metrics.Metrics, strategies ...lca.Strategy) *Handler {
	t.Helper()
	tr, err := tree.New(1, map[int][]int{1: {2, 3}, 2: {4, 5}, 3: {6}, 4: {}, 5: {}, 6: {}})
	require.NoError(t, err)
	reg, err := engine.NewRegistry(tr, engine.WithMetrics(m))
	require.NoError(t, err)
	return NewHandler(reg, m, strategies, 2)
}

func do(t *testing.T, r http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestQueryEndpoints(t *testing.T) {
	t.Parallel()

	m := metrics.NewMetrics("test")
	r := NewRouter(newHandler(t, m), RouterOptions{Logger: quietLogger(), Metrics: m})

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantCode   int
		wantLCA    int
		wantStrat  lca.Strategy
	}{
		{"default strategy", "/v1/lca?u=4&v=5", http.StatusOK, 0, 2, lca.StrategyNaive},
		{"euler", "/v1/lca?u=4&v=6&strategy=euler_rmq", http.StatusOK, 0, 1, lca.StrategyEulerRMQ},
		{"binary lifting ancestor", "/v1/lca?u=2&v=5&strategy=binary_lifting", http.StatusOK, 0, 2, lca.StrategyBinaryLifting},
		{"unknown node", "/v1/lca?u=4&v=99", http.StatusNotFound, 404101, 0, ""},
		{"missing v", "/v1/lca?u=4", http.StatusBadRequest, 400103, 0, ""},
		{"not a number", "/v1/lca?u=4&v=x", http.StatusBadRequest, 400103, 0, ""},
		{"offline strategy", "/v1/lca?u=4&v=5&strategy=tarjan", http.StatusBadRequest, 400102, 0, ""},
		{"unknown strategy", "/v1/lca?u=4&v=5&strategy=fastest", http.StatusBadRequest, 400102, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, r, http.MethodGet, tt.target, "")
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, env.Code)
			if tt.wantStatus != http.StatusOK {
				assert.NotEmpty(t, env.Msg)
				return
			}
			var got QueryResult
			require.NoError(t, json.Unmarshal(env.Data, &got))
			assert.Equal(t, tt.wantLCA, got.LCA)
			assert.Equal(t, tt.wantStrat, got.Strategy)
		})
	}
}

func TestBatchEndpoint(t *testing.T) {
	t.Parallel()

	m := metrics.NewMetrics("test")
	r := NewRouter(newHandler(t, m), RouterOptions{Logger: quietLogger(), Metrics: m})

	for _, s := range lca.Strategies() {
		body := `{"strategy":"` + string(s) + `","pairs":[[4,5],[4,6],[6,6],[5,4],[4,5]]}`
		rec, env := do(t, r, http.MethodPost, "/v1/lca/batch", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got BatchResult
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, s, got.Strategy)
		assert.Equal(t, []int{2, 1, 6, 2, 2}, got.Answers, s)
	}

	bad := []struct {
		name, body string
		status     int
	}{
		{"short pair", `{"pairs":[[1]]}`, http.StatusBadRequest},
		{"no pairs", `{"strategy":"naive","pairs":[]}`, http.StatusBadRequest},
		{"malformed json", `{"pairs":`, http.StatusBadRequest},
		{"unknown node offline", `{"strategy":"tarjan","pairs":[[1,42]]}`, http.StatusNotFound},
		{"unknown node online", `{"strategy":"euler_rmq","pairs":[[42,1]]}`, http.StatusNotFound},
	}
	for _, tt := range bad {
		rec, _ := do(t, r, http.MethodPost, "/v1/lca/batch", tt.body)
		assert.Equal(t, tt.status, rec.Code, tt.name)
	}

	rec, _ := do(t, r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `lca_queries_total{result="ok",strategy="tarjan"} 5`)
	assert.Contains(t, rec.Body.String(), `http_server_requests_total{method="POST",path="/v1/lca/batch",status="200"} 4`)
}

func TestStrategyAllowList(t *testing.T) {
	t.Parallel()

	r := NewRouter(newHandler(t, nil, lca.StrategyTarjan, lca.StrategyEulerRMQ), RouterOptions{Logger: quietLogger()})

	rec, env := do(t, r, http.MethodGet, "/v1/lca?u=5&v=6", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got QueryResult
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, lca.StrategyEulerRMQ, got.Strategy)

	rec, env = do(t, r, http.MethodGet, "/v1/lca?u=5&v=6&strategy=naive", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 400102, env.Code)

	rec, env = do(t, r, http.MethodGet, "/v1/tree", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var info TreeInfo
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, 1, info.Root)
	assert.Equal(t, 6, info.Size)
	assert.Equal(t, []lca.Strategy{lca.StrategyTarjan, lca.StrategyEulerRMQ}, info.Strategies)
	assert.Equal(t, []lca.Strategy{lca.StrategyEulerRMQ}, info.Built)

	rec, _ = do(t, r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMiddlewareChain(t *testing.T) {
	t.Parallel()

	h := newHandler(t, nil)
	r := NewRouter(h, RouterOptions{
		Logger:       quietLogger(),
		Limiter:      limiter.NewLocalLimiter(rate.Every(time.Hour), 2),
		MaxBodyBytes: 64,
	})
	r.GET("/panic", func(*gin.Context) { panic("boom") })

	rec, _ := do(t, r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.HeaderXRequestID))

	rec, env := do(t, r, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, http.StatusInternalServerError, env.Code)

	rec, env = do(t, r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, http.StatusTooManyRequests, env.Code)
}

func TestBodyLimitAndRequestID(t *testing.T) {
	t.Parallel()

	r := NewRouter(newHandler(t, nil), RouterOptions{Logger: quietLogger(), MaxBodyBytes: 32})

	big := `{"strategy":"naive","pairs":[` + strings.Repeat("[4,5],", 20) + `[4,5]]}`
	rec, _ := do(t, r, http.MethodPost, "/v1/lca/batch", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(middleware.HeaderXRequestID, "req-123")
	out := httptest.NewRecorder()
	r.ServeHTTP(out, req)
	assert.Equal(t, "req-123", out.Header().Get(middleware.HeaderXRequestID))
}

func TestGinServerGracefulShutdown(t *testing.T) {
	t.Parallel()

	r := NewRouter(newHandler(t, nil), RouterOptions{Logger: quietLogger()})
	srv := NewGinServer(r, "127.0.0.1:0", quietLogger(), HTTPOptions{ShutdownTimeout: time.Second})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	body := bytes.NewBufferString(`{"strategy":"tarjan","pairs":[[4,6]]}`)
	resp, err := http.Post("http://"+ln.Addr().String()+"/v1/lca/batch", "application/json", body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"strategy":"tarjan","answers":[1],"elapsed_ms":0}`, replaceElapsed(t, env.Data))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func replaceElapsed(t *testing.T, data json.RawMessage) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	m["elapsed_ms"] = 0
	out, err := json.Marshal(m)
	require.NoError(t, err)
	return string(out)
}

func TestReadyz(t *testing.T) {
	t.Parallel()

	h := newHandler(t, nil, lca.StrategyTarjan, lca.StrategyBinaryLifting)
	r := NewRouter(h, RouterOptions{Logger: quietLogger()})

	rec, _ := do(t, r, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ready"`)
	assert.Contains(t, h.registry.Strategies(), lca.StrategyBinaryLifting, "readiness warms the default engine")

	h.Checks().Register("tree-store", func(context.Context) error { return io.ErrUnexpectedEOF })
	rec, _ = do(t, r, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unexpected EOF")
}
