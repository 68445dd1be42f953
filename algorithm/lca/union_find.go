package lca

// unionFind 是定长下标并查集，带路径压缩。
// 合并时总是把子集合的根挂到父集合的根下，Tarjan 依赖这一方向保持代表元稳定。
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	return &unionFind{parent: make([]int, n)}
}

// makeSet 将 v 置为单元素集合。
func (f *unionFind) makeSet(v int) {
	f.parent[v] = v
}

// find 返回 v 所在集合的代表元，并将路径上的节点直接挂到代表元下。
func (f *unionFind) find(v int) int {
	root := v
	for f.parent[root] != root {
		root = f.parent[root]
	}
	for v != root {
		v, f.parent[v] = f.parent[v], root
	}
	return root
}

// attach 将 child 所在集合并入 parent 所在集合，返回合并后的代表元。
func (f *unionFind) attach(child, parent int) int {
	rc, rp := f.find(child), f.find(parent)
	if rc != rp {
		f.parent[rc] = rp
	}
	return rp
}
