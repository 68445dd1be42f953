package lca

import (
	"math/bits"

	"github.com/wyfcoding/lca/algorithm/tree"
	"github.com/wyfcoding/lca/xerrors"
)

// BinaryLifting 实现了倍增法求最近公共祖先。
// 预处理复杂度 O(N log N)，单次查询复杂度 O(log N)。
type BinaryLifting struct {
	tree  *tree.Tree
	up    []int // 扁平化数组: up[i*logN+j] 表示节点 i 的第 2^j 个祖先，不存在时为 none。
	depth []int
	logN  int
}

// NewBinaryLifting 构造倍增引擎。
// maxDepth 为倍增表宽度（层数），<= 0 时按实际树深推导；
// 小于实际所需宽度时会被放宽，否则向深处跳跃会静默得到错误结果；
// 大于所需宽度时最多取 bits.UintSize 层，更多的层永远不会被访问。
func NewBinaryLifting(t *tree.Tree, maxDepth int) (*BinaryLifting, error) {
	if err := checkTree(t); err != nil {
		return nil, err
	}

	n := t.Size()
	lca := &BinaryLifting{
		tree:  t,
		depth: make([]int, n),
	}
	parent := make([]int, n)
	deepest := lca.iterativeDFS(parent)

	// 跳跃距离最多为 deepest，需要 bits.Len(deepest) 层。
	logN := max(bits.Len(uint(deepest)), 1)
	logN = max(logN, min(maxDepth, bits.UintSize))
	lca.logN = logN
	lca.up = make([]int, n*logN)

	for v := range n {
		lca.up[v*logN] = parent[v]
	}
	// 构建倍增表核心逻辑: up[v][i] = up[up[v][i-1]][i-1]。
	for i := 1; i < logN; i++ {
		for v := range n {
			mid := lca.up[v*logN+i-1]
			if mid == none {
				lca.up[v*logN+i] = none
				continue
			}
			lca.up[v*logN+i] = lca.up[mid*logN+i-1]
		}
	}

	return lca, nil
}

type stackItem struct {
	v, p, d int
}

// iterativeDFS 使用迭代方式遍历树，记录父节点与深度，返回最大深度。
func (lca *BinaryLifting) iterativeDFS(parent []int) int {
	deepest := 0
	stack := []stackItem{{v: 0, p: none, d: 0}}

	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		lca.depth[curr.v] = curr.d
		parent[curr.v] = curr.p
		deepest = max(deepest, curr.d)

		for _, c := range lca.tree.ChildIndices(curr.v) {
			stack = append(stack, stackItem{v: c, p: curr.v, d: curr.d + 1})
		}
	}
	return deepest
}

// Name 实现 Engine。
func (lca *BinaryLifting) Name() Strategy {
	return StrategyBinaryLifting
}

// Levels 返回倍增表宽度。
func (lca *BinaryLifting) Levels() int {
	return lca.logN
}

// LCA 查询两个节点的最近公共祖先。
func (lca *BinaryLifting) LCA(u, v int) (int, error) {
	if err := lca.ready(); err != nil {
		return 0, err
	}
	iu, iv, err := lookup(lca.tree, u, v)
	if err != nil {
		return 0, err
	}
	return lca.tree.ID(lca.lcaIndex(iu, iv)), nil
}

func (lca *BinaryLifting) lcaIndex(u, v int) int {
	if lca.depth[u] < lca.depth[v] {
		u, v = v, u
	}

	// 1. 将 u 提升到与 v 同一深度，从最高位开始。
	u = lca.lift(u, lca.depth[u]-lca.depth[v])
	if u == v {
		return u
	}

	// 2. 同时提升 u 和 v，直到它们的父节点相同，不越过真正的 LCA。
	for i := lca.logN - 1; i >= 0; i-- {
		au := lca.up[u*lca.logN+i]
		av := lca.up[v*lca.logN+i]
		if au != av {
			u, v = au, av
		}
	}

	return lca.up[u*lca.logN]
}

// lift 返回 v 的第 k 个祖先，调用方保证 k <= depth[v]。
func (lca *BinaryLifting) lift(v, k int) int {
	for i := bits.Len(uint(k)) - 1; i >= 0; i-- {
		if k&(1<<i) != 0 {
			v = lca.up[v*lca.logN+i]
		}
	}
	return v
}

// Depth 返回节点深度，根为 0。
func (lca *BinaryLifting) Depth(node int) (int, error) {
	if err := lca.ready(); err != nil {
		return 0, err
	}
	i, ok := lca.tree.Index(node)
	if !ok {
		return 0, xerrors.ErrUnknownNode.WithDetail("node %d", node)
	}
	return lca.depth[i], nil
}

// Distance 计算两个节点之间的距离（边数）。
func (lca *BinaryLifting) Distance(u, v int) (int, error) {
	if err := lca.ready(); err != nil {
		return 0, err
	}
	iu, iv, err := lookup(lca.tree, u, v)
	if err != nil {
		return 0, err
	}
	w := lca.lcaIndex(iu, iv)
	return lca.depth[iu] + lca.depth[iv] - 2*lca.depth[w], nil
}

// KthAncestor 返回节点的第 k 个祖先，k 为 0 时返回节点本身。
func (lca *BinaryLifting) KthAncestor(node, k int) (int, error) {
	if err := lca.ready(); err != nil {
		return 0, err
	}
	i, ok := lca.tree.Index(node)
	if !ok {
		return 0, xerrors.ErrUnknownNode.WithDetail("node %d", node)
	}
	if k < 0 || k > lca.depth[i] {
		return 0, xerrors.ErrInvalidInput.WithDetail("node %d at depth %d has no ancestor %d levels up", node, lca.depth[i], k)
	}
	return lca.tree.ID(lca.lift(i, k)), nil
}

func (lca *BinaryLifting) ready() error {
	if lca == nil || lca.up == nil {
		return xerrors.ErrNotPreprocessed.WithDetail("%s", StrategyBinaryLifting)
	}
	return nil
}
