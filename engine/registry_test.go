package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/lca/algorithm/lca"
	"github.com/wyfcoding/lca/algorithm/tree"
	"github.com/wyfcoding/lca/metrics"
	"github.com/wyfcoding/lca/xerrors"
)

func sampleTree(t *testing.T) *tree.Tree {
	t.Helper()
	tr, err := tree.New(1, map[int][]int{1: {2, 3}, 2: {4, 5}, 3: {6}, 4: {}, 5: {}, 6: {}})
	require.NoError(t, err)
	return tr
}

func TestRegistryBuildsOnceUnderConcurrency(t *testing.T) {
	t.Parallel()

	var builds atomic.Int32
	slowBuild := func(s lca.Strategy, tr *tree.Tree) (lca.Engine, error) {
		builds.Add(1)
		time.Sleep(20 * time.Millisecond)
		return lca.New(s, tr)
	}
	r, err := NewRegistry(sampleTree(t), WithBuildFunc(slowBuild), WithMetrics(metrics.NewMetrics("test")))
	require.NoError(t, err)

	const callers = 32
	got := make([]lca.Engine, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, err := r.Get(context.Background(), lca.StrategyEulerRMQ)
			assert.NoError(t, err)
			got[i] = e
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load())
	for _, e := range got {
		assert.Same(t, got[0], e)
	}

	w, err := got[0].LCA(4, 6)
	require.NoError(t, err)
	assert.Equal(t, 1, w)
}

func TestRegistryStrategiesAndReset(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(sampleTree(t), WithMaxDepth(1))
	require.NoError(t, err)
	assert.Empty(t, r.Strategies())

	bl, err := r.Get(context.Background(), lca.StrategyBinaryLifting)
	require.NoError(t, err)
	_, err = r.Get(context.Background(), lca.StrategyNaive)
	require.NoError(t, err)
	assert.Equal(t, []lca.Strategy{lca.StrategyNaive, lca.StrategyBinaryLifting}, r.Strategies())

	w, err := bl.LCA(5, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, w)

	r.Reset()
	assert.Empty(t, r.Strategies())
	again, err := r.Get(context.Background(), lca.StrategyBinaryLifting)
	require.NoError(t, err)
	assert.NotSame(t, bl, again)
}

func TestRegistryRejectsOfflineAndUnknown(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(sampleTree(t))
	require.NoError(t, err)

	_, err = r.Get(context.Background(), lca.StrategyTarjan)
	assert.ErrorIs(t, err, xerrors.ErrInvalidStrategy)
	_, err = r.Get(context.Background(), "fastest")
	assert.ErrorIs(t, err, xerrors.ErrInvalidStrategy)

	_, err = NewRegistry(nil)
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestRegistryBuildErrorNotCached(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	failing := func(lca.Strategy, *tree.Tree) (lca.Engine, error) {
		calls.Add(1)
		return nil, xerrors.ErrInvalidInput.WithDetail("boom")
	}
	r, err := NewRegistry(sampleTree(t), WithBuildFunc(failing))
	require.NoError(t, err)

	for range 2 {
		_, err = r.Get(context.Background(), lca.StrategyNaive)
		assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
	}
	assert.Equal(t, int32(2), calls.Load())
	assert.Empty(t, r.Strategies())
}

func TestRegistryTarjanIsFresh(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(sampleTree(t))
	require.NoError(t, err)

	first := r.Tarjan()
	require.NoError(t, first.Submit(4, 5))
	answers, err := first.ResolveAll()
	require.NoError(t, err)
	assert.Equal(t, 2, answers[0].LCA)

	second := r.Tarjan()
	assert.NotSame(t, first, second)
	assert.Equal(t, 0, second.Pending())
	assert.Equal(t, 6, r.Tree().Size())
}
