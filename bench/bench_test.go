package bench

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/lca/algorithm/lca"
	"github.com/wyfcoding/lca/algorithm/tree"
	"github.com/wyfcoding/lca/engine"
	"github.com/wyfcoding/lca/metrics"
	"github.com/wyfcoding/lca/xerrors"
)

func TestGenerateTree(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	adj, n := GenerateTree(rng, 5, 3)
	require.Len(t, adj, n)

	tr, err := tree.New(1, adj)
	require.NoError(t, err)
	assert.Equal(t, n, tr.Size())

	bl, err := lca.NewBinaryLifting(tr, 0)
	require.NoError(t, err)
	deepest := 0
	for v := 1; v <= n; v++ {
		d, err := bl.Depth(v)
		require.NoError(t, err)
		deepest = max(deepest, d)
		kids := len(adj[v])
		if d < 4 {
			assert.True(t, kids >= 1 && kids <= 3, "node %d at depth %d has %d children", v, d, kids)
		} else {
			assert.Zero(t, kids)
		}
	}
	assert.Equal(t, 4, deepest)
}

func TestGenerateTreeDegenerate(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	adj, n := GenerateTree(rng, 0, 5)
	assert.Equal(t, 1, n)
	assert.Equal(t, map[int][]int{1: {}}, adj)

	adj, n = GenerateTree(rng, 4, 1)
	assert.Equal(t, 4, n)
	assert.Equal(t, []int{2}, adj[1])
}

func TestGenerateQueries(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(3, 4))
	pairs := GenerateQueries(rng, 100, 1000)
	require.Len(t, pairs, 1000)
	for _, p := range pairs {
		assert.True(t, p.U >= 50 && p.U <= 100)
		assert.True(t, p.V >= 50 && p.V <= 100)
	}

	single := GenerateQueries(rng, 1, 3)
	assert.Equal(t, []lca.Pair{{U: 1, V: 1}, {U: 1, V: 1}, {U: 1, V: 1}}, single)
	assert.Nil(t, GenerateQueries(rng, 0, 3))
	assert.Nil(t, GenerateQueries(rng, 10, 0))
}

func TestMeasure(t *testing.T) {
	t.Parallel()

	v, d, err := Measure(func() (int, error) {
		time.Sleep(5 * time.Millisecond)
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.GreaterOrEqual(t, d, 5*time.Millisecond)

	boom := errors.New("boom")
	_, _, err = Measure(func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
}

func newRegistry(t *testing.T, maxDepth, maxChildren int) *engine.Registry {
	t.Helper()
	adj, _ := GenerateTree(rand.New(rand.NewPCG(5, 6)), maxDepth, maxChildren)
	tr, err := tree.New(1, adj)
	require.NoError(t, err)
	reg, err := engine.NewRegistry(tr)
	require.NoError(t, err)
	return reg
}

func TestRunnerRun(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t, 6, 4)
	m := metrics.NewMetrics("test")
	r := NewRunner(reg, WithSeed(9), WithWorkers(4), WithMetrics(m))

	results, err := r.Run(context.Background(), []int{100, 1000})
	require.NoError(t, err)
	require.Len(t, results, 8)

	for i, res := range results {
		assert.Equal(t, lca.Strategies()[i%4], res.Strategy)
		assert.Equal(t, []int{100, 1000}[i/4], res.Queries)
	}
	// 第二轮在线策略命中缓存，Tarjan 每轮重建。
	for _, res := range results[4:] {
		if res.Strategy.Online() {
			assert.True(t, res.Cached, res.Strategy)
			assert.Zero(t, res.Preprocess, res.Strategy)
		} else {
			assert.False(t, res.Cached)
		}
	}
	assert.Len(t, reg.Strategies(), 3)
}

func TestRunnerSubsetAndCancel(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t, 4, 3)
	r := NewRunner(reg, WithStrategies(lca.StrategyTarjan, lca.StrategyEulerRMQ), WithVerify(false))
	results, err := r.Run(context.Background(), []int{10})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, lca.StrategyTarjan, results[0].Strategy)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(ctx, []int{10})
	assert.ErrorIs(t, err, context.Canceled)
}

type wrongEngine struct{ lca.Engine }

func (w wrongEngine) LCA(u, v int) (int, error) { return u, nil }

func TestRunnerDetectsMismatch(t *testing.T) {
	t.Parallel()

	adj, _ := GenerateTree(rand.New(rand.NewPCG(5, 6)), 6, 3)
	tr, err := tree.New(1, adj)
	require.NoError(t, err)
	reg, err := engine.NewRegistry(tr, engine.WithBuildFunc(func(s lca.Strategy, t *tree.Tree) (lca.Engine, error) {
		e, err := lca.New(s, t)
		if s == lca.StrategyNaive || err != nil {
			return e, err
		}
		return wrongEngine{e}, nil
	}))
	require.NoError(t, err)

	r := NewRunner(reg, WithStrategies(lca.StrategyNaive, lca.StrategyBinaryLifting))
	_, err = r.Run(context.Background(), []int{500})
	assert.ErrorIs(t, err, xerrors.ErrResultMismatch)
}

func TestQueryPairsSparseIdentifiers(t *testing.T) {
	t.Parallel()

	tr, err := tree.New(10, map[int][]int{10: {20, 30}, 20: {}, 30: {}})
	require.NoError(t, err)
	pairs := queryPairs(rand.New(rand.NewPCG(1, 1)), tr, 50)
	for _, p := range pairs {
		assert.True(t, tr.Contains(p.U) && tr.Contains(p.V), "%v", p)
	}
}
