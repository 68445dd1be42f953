// Package bench 提供 LCA 策略的基准测试工具：随机树与查询生成、计时以及跨策略对比。
package bench

import (
	"math/rand/v2"

	"github.com/wyfcoding/lca/algorithm/lca"
)

// GenerateTree 逐层生成一棵以 1 为根的随机树，返回邻接表与节点数。
// 根位于第 1 层，第 maxDepth 层的节点为叶子，其余节点各有 [1, maxChildren] 个子节点。
// 节点标识按广度优先顺序连续分配，因此节点集合恰为 [1, n]。
func GenerateTree(rng *rand.Rand, maxDepth, maxChildren int) (map[int][]int, int) {
	maxDepth = max(maxDepth, 1)
	maxChildren = max(maxChildren, 1)

	type item struct{ node, depth int }

	next := 1
	adj := map[int][]int{next: {}}
	queue := []item{{node: next, depth: 1}}
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		if cur.depth == maxDepth {
			continue
		}
		k := 1 + rng.IntN(maxChildren)
		kids := make([]int, 0, k)
		for range k {
			next++
			kids = append(kids, next)
			adj[next] = []int{}
			queue = append(queue, item{node: next, depth: cur.depth + 1})
		}
		adj[cur.node] = kids
	}
	return adj, next
}

// GenerateQueries 生成 num 对查询，两端均匀取自 [nodeCount/2, nodeCount]。
// 下界至少为 1，保证查询落在 GenerateTree 产生的节点集合内。
func GenerateQueries(rng *rand.Rand, nodeCount, num int) []lca.Pair {
	if nodeCount < 1 || num <= 0 {
		return nil
	}
	lo := max(nodeCount/2, 1)
	span := nodeCount - lo + 1
	pairs := make([]lca.Pair, num)
	for i := range pairs {
		pairs[i] = lca.Pair{U: lo + rng.IntN(span), V: lo + rng.IntN(span)}
	}
	return pairs
}
