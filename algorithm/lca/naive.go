package lca

import (
	"github.com/wyfcoding/lca/algorithm/tree"
	"github.com/wyfcoding/lca/xerrors"
)

// Naive 通过比较两条到根路径求 LCA。
// 预处理 O(n)，单次查询 O(depth(u)+depth(v))，链状树上退化为 O(n)。
type Naive struct {
	tree   *tree.Tree
	parent []int // parent[i] 为下标 i 的父节点下标，根为 none。
}

// NewNaive 构造朴素引擎并建立父节点表。
func NewNaive(t *tree.Tree) (*Naive, error) {
	if err := checkTree(t); err != nil {
		return nil, err
	}

	n := &Naive{
		tree:   t,
		parent: make([]int, t.Size()),
	}
	n.parent[0] = none

	stack := []int{0}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range t.ChildIndices(v) {
			n.parent[c] = v
			stack = append(stack, c)
		}
	}
	return n, nil
}

// Name 实现 Engine。
func (n *Naive) Name() Strategy {
	return StrategyNaive
}

// LCA 返回 u 与 v 的最近公共祖先。
func (n *Naive) LCA(u, v int) (int, error) {
	if n == nil || n.parent == nil {
		return 0, xerrors.ErrNotPreprocessed.WithDetail("%s", StrategyNaive)
	}
	iu, iv, err := lookup(n.tree, u, v)
	if err != nil {
		return 0, err
	}

	pathU := n.pathToRoot(iu)
	pathV := n.pathToRoot(iv)

	// 两条路径都以根结尾，从根端向内扫描直到分叉。
	i, j := len(pathU)-1, len(pathV)-1
	common := pathU[i]
	for i >= 0 && j >= 0 && pathU[i] == pathV[j] {
		common = pathU[i]
		i--
		j--
	}
	return n.tree.ID(common), nil
}

func (n *Naive) pathToRoot(v int) []int {
	var path []int
	for ; v != none; v = n.parent[v] {
		path = append(path, v)
	}
	return path
}
