package lca

import (
	"math/bits"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/lca/xerrors"
)

func TestBinaryLiftingWidensTooSmallTable(t *testing.T) {
	t.Parallel()

	const n = 1000
	tr := mustTree(t, 1, pathAdjacency(n))

	// 深度 999 至少需要 10 层，调用方给的 2 层会被放宽。
	bl, err := NewBinaryLifting(tr, 2)
	require.NoError(t, err)
	assert.Equal(t, 10, bl.Levels())

	got, err := bl.LCA(n, 500)
	require.NoError(t, err)
	assert.Equal(t, 500, got)

	wide, err := NewBinaryLifting(tr, 16)
	require.NoError(t, err)
	assert.Equal(t, 16, wide.Levels())
	got, err = wide.LCA(n, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestBinaryLiftingClampsOversizedTable(t *testing.T) {
	t.Parallel()

	tr := mustTree(t, 1, map[int][]int{1: {2, 3}, 2: {}, 3: {}})

	for _, width := range []int{1 << 62, 1000, bits.UintSize + 1} {
		var bl *BinaryLifting
		var err error
		require.NotPanics(t, func() { bl, err = NewBinaryLifting(tr, width) }, "width %d", width)
		require.NoError(t, err)
		assert.Equal(t, bits.UintSize, bl.Levels(), "width %d", width)

		got, err := bl.LCA(2, 3)
		require.NoError(t, err)
		assert.Equal(t, 1, got)
	}

	exact, err := NewBinaryLifting(tr, bits.UintSize)
	require.NoError(t, err)
	assert.Equal(t, bits.UintSize, exact.Levels())
}

func TestBinaryLiftingDepthDistanceAncestor(t *testing.T) {
	t.Parallel()

	tr := mustTree(t, 1, map[int][]int{1: {2, 3}, 2: {4, 5}, 3: {6}, 4: {7}, 5: {}, 6: {}, 7: {}})
	bl, err := NewBinaryLifting(tr, 0)
	require.NoError(t, err)

	d, err := bl.Depth(7)
	require.NoError(t, err)
	assert.Equal(t, 3, d)

	dist, err := bl.Distance(7, 6)
	require.NoError(t, err)
	assert.Equal(t, 5, dist)

	dist, err = bl.Distance(5, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, dist)

	for k, want := range []int{7, 4, 2, 1} {
		got, err := bl.KthAncestor(7, k)
		require.NoError(t, err)
		assert.Equal(t, want, got, "k=%d", k)
	}

	_, err = bl.KthAncestor(7, 4)
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
	_, err = bl.KthAncestor(7, -1)
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
	_, err = bl.KthAncestor(70, 1)
	assert.ErrorIs(t, err, xerrors.ErrUnknownNode)
	_, err = bl.Depth(70)
	assert.ErrorIs(t, err, xerrors.ErrUnknownNode)
	_, err = bl.Distance(1, 70)
	assert.ErrorIs(t, err, xerrors.ErrUnknownNode)
}

func TestBinaryLiftingDistanceMatchesEuler(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(3, 5))
	tr := mustTree(t, 1, randomAdjacency(rng, 500))
	bl, err := NewBinaryLifting(tr, 0)
	require.NoError(t, err)
	er, err := NewEulerRMQ(tr)
	require.NoError(t, err)

	for range 2000 {
		u, v := 1+rng.IntN(500), 1+rng.IntN(500)
		a, err := bl.Distance(u, v)
		require.NoError(t, err)
		b, err := er.Distance(u, v)
		require.NoError(t, err)
		assert.Equal(t, a, b, "distance(%d,%d)", u, v)
	}
}
