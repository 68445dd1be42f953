// Package tree 提供经过校验的只读有根树模型，供各 LCA 策略共享。
//
// 节点标识为非负整数，推荐使用稠密区间 [1, n]。构造时节点按先序被映射到
// 稠密下标 [0, n)，下标 0 恒为根，引擎内部以下标为键建立各自的派生结构。
package tree

import (
	"slices"

	"github.com/wyfcoding/lca/xerrors"
)

// Tree 是一棵不可变的有根树。构造完成后可被任意多个 goroutine 并发读取。
type Tree struct {
	index    map[int]int // 节点标识 -> 稠密下标
	ids      []int       // 稠密下标 -> 节点标识（先序）
	children [][]int     // 稠密下标 -> 子节点下标（保持输入顺序）
	root     int
}

// New 校验邻接表并构造 Tree。
// adjacency 中每个节点（包括叶子）都必须有一个条目，叶子映射到空切片。
func New(root int, adjacency map[int][]int) (*Tree, error) {
	if root < 0 {
		return nil, xerrors.ErrMalformedTree.WithDetail("negative root %d", root)
	}
	if _, ok := adjacency[root]; !ok {
		return nil, xerrors.ErrMalformedTree.WithDetail("root %d has no entry", root)
	}

	parent := make(map[int]int, len(adjacency))
	for node, kids := range adjacency {
		if node < 0 {
			return nil, xerrors.ErrMalformedTree.WithDetail("negative node %d", node)
		}
		for _, child := range kids {
			if child == node {
				return nil, xerrors.ErrMalformedTree.WithDetail("self-loop on node %d", node)
			}
			if _, ok := adjacency[child]; !ok {
				return nil, xerrors.ErrMalformedTree.WithDetail("node %d references missing child %d", node, child)
			}
			if child == root {
				return nil, xerrors.ErrMalformedTree.WithDetail("root %d appears as child of %d", root, node)
			}
			if p, seen := parent[child]; seen {
				return nil, xerrors.ErrMalformedTree.WithDetail("node %d has parents %d and %d", child, p, node)
			}
			parent[child] = node
		}
	}

	t := &Tree{
		index:    make(map[int]int, len(adjacency)),
		ids:      make([]int, 0, len(adjacency)),
		children: make([][]int, 0, len(adjacency)),
		root:     root,
	}

	// 先序分配下标。每个节点至多一个父节点，因此栈上不会出现重复节点。
	stack := []int{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		t.index[node] = len(t.ids)
		t.ids = append(t.ids, node)
		t.children = append(t.children, nil)

		kids := adjacency[node]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}

	if len(t.ids) != len(adjacency) {
		for node := range adjacency {
			if _, ok := t.index[node]; ok {
				continue
			}
			if _, hasParent := parent[node]; !hasParent {
				return nil, xerrors.ErrMalformedTree.WithDetail("node %d is a second root", node)
			}
			return nil, xerrors.ErrMalformedTree.WithDetail("node %d is on a cycle unreachable from root %d", node, root)
		}
	}

	for i, node := range t.ids {
		kids := adjacency[node]
		if len(kids) == 0 {
			continue
		}
		idx := make([]int, len(kids))
		for j, child := range kids {
			idx[j] = t.index[child]
		}
		t.children[i] = idx
	}

	return t, nil
}

// Root 返回根节点标识。
func (t *Tree) Root() int {
	return t.root
}

// Size 返回节点总数。
func (t *Tree) Size() int {
	return len(t.ids)
}

// Contains 判断节点是否属于这棵树。
func (t *Tree) Contains(node int) bool {
	_, ok := t.index[node]
	return ok
}

// Children 返回节点的有序子节点标识副本；未知节点返回 nil。
func (t *Tree) Children(node int) []int {
	i, ok := t.index[node]
	if !ok {
		return nil
	}
	out := make([]int, len(t.children[i]))
	for j, c := range t.children[i] {
		out[j] = t.ids[c]
	}
	return out
}

// Nodes 返回先序排列的全部节点标识副本。
func (t *Tree) Nodes() []int {
	return slices.Clone(t.ids)
}

// Index 返回节点的稠密下标。
func (t *Tree) Index(node int) (int, bool) {
	i, ok := t.index[node]
	return i, ok
}

// ID 返回稠密下标对应的节点标识。
func (t *Tree) ID(index int) int {
	return t.ids[index]
}

// ChildIndices 返回下标 index 的子节点下标。返回值为内部切片，调用方不得修改。
func (t *Tree) ChildIndices(index int) []int {
	return t.children[index]
}
