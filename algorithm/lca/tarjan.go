package lca

import (
	"sync"

	"github.com/wyfcoding/lca/algorithm/tree"
	"github.com/wyfcoding/lca/xerrors"
)

// Answer 是离线批次中一对查询的结果。
type Answer struct {
	Pair
	LCA int
}

type visitState uint8

const (
	unvisited visitState = iota
	inProgress
	finished
)

// Tarjan 实现离线最近公共祖先：先提交整批查询，再通过单次 DFS + 并查集一次性解析。
// 复杂度近似 O((n+q) α(n))。引擎为一次性对象，解析开始后不再接受新查询。
type Tarjan struct {
	tree     *tree.Tree
	pairs    []Pair     // 按提交顺序保存的原始节点对
	indexed  [][2]int   // 对应的稠密下标
	pending  [][]int    // pending[v] 为涉及下标 v 的查询序号
	mu       sync.Mutex // 串行化提交与解析
	resolved bool
}

// NewTarjan 创建离线引擎。
func NewTarjan(t *tree.Tree) *Tarjan {
	tj := &Tarjan{tree: t}
	if t != nil {
		tj.pending = make([][]int, t.Size())
	}
	return tj
}

// Name 返回策略标识。
func (tj *Tarjan) Name() Strategy {
	return StrategyTarjan
}

// Submit 登记一对查询。查询对称：无论哪一端先在 DFS 中完成，都能被解析。
func (tj *Tarjan) Submit(u, v int) error {
	tj.mu.Lock()
	defer tj.mu.Unlock()

	if tj.resolved {
		return xerrors.ErrBatchAlreadyResolved.WithDetail("pair (%d, %d) submitted after resolution", u, v)
	}
	if tj.tree == nil {
		return xerrors.ErrNotPreprocessed.WithDetail("%s has no tree", StrategyTarjan)
	}
	iu, iv, err := lookup(tj.tree, u, v)
	if err != nil {
		return err
	}

	q := len(tj.pairs)
	tj.pairs = append(tj.pairs, Pair{U: u, V: v})
	tj.indexed = append(tj.indexed, [2]int{iu, iv})
	tj.pending[iu] = append(tj.pending[iu], q)
	if iv != iu {
		tj.pending[iv] = append(tj.pending[iv], q)
	}
	return nil
}

// Pending 返回已提交的查询数量。
func (tj *Tarjan) Pending() int {
	tj.mu.Lock()
	defer tj.mu.Unlock()
	return len(tj.pairs)
}

type tarjanFrame struct {
	v, next int
}

// ResolveAll 从树根执行一次 DFS，按提交顺序返回全部 q 个结果。
func (tj *Tarjan) ResolveAll() ([]Answer, error) {
	tj.mu.Lock()
	defer tj.mu.Unlock()

	if tj.resolved {
		return nil, xerrors.ErrBatchAlreadyResolved.WithDetail("%s batch is one-shot", StrategyTarjan)
	}
	if tj.tree == nil {
		return nil, xerrors.ErrNotPreprocessed.WithDetail("%s has no tree", StrategyTarjan)
	}
	tj.resolved = true

	answers := make([]Answer, len(tj.pairs))
	if len(tj.pairs) == 0 {
		return answers, nil
	}
	answered := make([]bool, len(tj.pairs))

	n := tj.tree.Size()
	uf := newUnionFind(n)
	ancestor := make([]int, n)
	state := make([]visitState, n)

	enter := func(v int) {
		uf.makeSet(v)
		ancestor[v] = v
		state[v] = inProgress
	}

	stack := []tarjanFrame{{v: 0}}
	enter(0)
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		kids := tj.tree.ChildIndices(top.v)
		if top.next < len(kids) {
			c := kids[top.next]
			top.next++
			if state[c] != unvisited {
				continue
			}
			enter(c)
			stack = append(stack, tarjanFrame{v: c})
			continue
		}

		v := top.v
		state[v] = finished
		for _, q := range tj.pending[v] {
			if answered[q] {
				continue
			}
			other := tj.indexed[q][0]
			if other == v {
				other = tj.indexed[q][1]
			}
			if state[other] != finished {
				continue
			}
			answers[q] = Answer{Pair: tj.pairs[q], LCA: tj.tree.ID(ancestor[uf.find(other)])}
			answered[q] = true
		}

		stack = stack[:len(stack)-1]
		if len(stack) > 0 {
			p := stack[len(stack)-1].v
			ancestor[uf.attach(v, p)] = p
		}
	}

	for q, ok := range answered {
		if !ok {
			p := tj.pairs[q]
			return nil, xerrors.ErrIncompleteBatch.WithDetail("pair (%d, %d) was never resolved", p.U, p.V)
		}
	}
	return answers, nil
}
