package lca

import (
	"slices"

	"github.com/wyfcoding/lca/algorithm/tree"
	"github.com/wyfcoding/lca/xerrors"
)

// EulerRMQ 将 LCA 归约为欧拉序深度序列上的区间最小值查询。
// 预处理 O(n log n) 时间与空间，单次查询 O(1)。
type EulerRMQ struct {
	tree  *tree.Tree
	tour  []int // 欧拉序中的节点下标，长度 2n-1
	depth []int // depth[i] 为 tour[i] 的深度
	first []int // first[v] 为下标 v 在 tour 中首次出现的位置
	rmq   *sparseTable
}

// tourFrame 是欧拉序遍历栈帧：next 为下一个待访问子节点在子列表中的位置。
type tourFrame struct {
	v, d, next int
}

// NewEulerRMQ 构造欧拉序 + 稀疏表引擎。
func NewEulerRMQ(t *tree.Tree) (*EulerRMQ, error) {
	if err := checkTree(t); err != nil {
		return nil, err
	}

	n := t.Size()
	e := &EulerRMQ{
		tree:  t,
		tour:  make([]int, 0, 2*n-1),
		depth: make([]int, 0, 2*n-1),
		first: make([]int, n),
	}
	for i := range e.first {
		e.first[i] = none
	}

	stack := []tourFrame{{v: 0}}
	e.visit(0, 0)
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		kids := t.ChildIndices(top.v)
		if top.next == len(kids) {
			stack = stack[:len(stack)-1]
			// 子树结束后回到父节点，父节点再次出现在序列中。
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				e.visit(parent.v, parent.d)
			}
			continue
		}
		c := kids[top.next]
		top.next++
		d := top.d + 1
		stack = append(stack, tourFrame{v: c, d: d})
		e.visit(c, d)
	}

	e.rmq = newSparseTable(e.depth)
	return e, nil
}

func (e *EulerRMQ) visit(v, d int) {
	if e.first[v] == none {
		e.first[v] = len(e.tour)
	}
	e.tour = append(e.tour, v)
	e.depth = append(e.depth, d)
}

// Name 实现 Engine。
func (e *EulerRMQ) Name() Strategy {
	return StrategyEulerRMQ
}

// LCA 返回 u 与 v 首次出现位置之间深度最小的节点。
func (e *EulerRMQ) LCA(u, v int) (int, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	iu, iv, err := lookup(e.tree, u, v)
	if err != nil {
		return 0, err
	}
	return e.tree.ID(e.lcaIndex(iu, iv)), nil
}

func (e *EulerRMQ) lcaIndex(u, v int) int {
	lo, hi := e.first[u], e.first[v]
	if lo > hi {
		lo, hi = hi, lo
	}
	return e.tour[e.rmq.argMin(lo, hi)]
}

// Depth 返回节点深度，根为 0。
func (e *EulerRMQ) Depth(node int) (int, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	i, ok := e.tree.Index(node)
	if !ok {
		return 0, xerrors.ErrUnknownNode.WithDetail("node %d", node)
	}
	return e.depth[e.first[i]], nil
}

// Distance 计算两个节点之间的距离（边数）。
func (e *EulerRMQ) Distance(u, v int) (int, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	iu, iv, err := lookup(e.tree, u, v)
	if err != nil {
		return 0, err
	}
	w := e.lcaIndex(iu, iv)
	return e.depth[e.first[iu]] + e.depth[e.first[iv]] - 2*e.depth[e.first[w]], nil
}

// Tour 返回欧拉序节点标识副本。
func (e *EulerRMQ) Tour() []int {
	if e == nil {
		return nil
	}
	out := slices.Grow([]int(nil), len(e.tour))
	for _, v := range e.tour {
		out = append(out, e.tree.ID(v))
	}
	return out
}

func (e *EulerRMQ) ready() error {
	if e == nil || e.rmq == nil {
		return xerrors.ErrNotPreprocessed.WithDetail("%s", StrategyEulerRMQ)
	}
	return nil
}
