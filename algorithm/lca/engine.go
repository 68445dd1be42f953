// Package lca 提供可互换的最近公共祖先（Lowest Common Ancestor）查询策略。
//
// 四种策略在预处理代价、查询代价以及在线/离线能力上各有取舍：
//   - Naive：父节点表 + 到根路径比较，O(n) 预处理，O(depth) 查询。
//   - BinaryLifting：倍增祖先表，O(n log n) 预处理，O(log n) 查询。
//   - EulerRMQ：欧拉序 + 稀疏表区间最小值，O(n log n) 预处理，O(1) 查询。
//   - Tarjan：离线并查集，一次 DFS 解析整批查询，近似 O((n+q) α(n))。
//
// 所有遍历均使用显式栈，深度接近 n 的链状树也不会耗尽调用栈。
// 在线引擎在构造完成后只读，可被多个 goroutine 并发查询；Tarjan 引擎为一次性对象。
package lca

import (
	"github.com/wyfcoding/lca/algorithm/tree"
	"github.com/wyfcoding/lca/xerrors"
)

// Strategy 标识一种 LCA 策略。
type Strategy string

const (
	StrategyNaive         Strategy = "naive"
	StrategyBinaryLifting Strategy = "binary_lifting"
	StrategyEulerRMQ      Strategy = "euler_rmq"
	StrategyTarjan        Strategy = "tarjan"
)

// none 是"不存在父节点/祖先"的哨兵下标。
const none = -1

// Strategies 返回全部策略，在线策略在前。
func Strategies() []Strategy {
	return []Strategy{StrategyNaive, StrategyBinaryLifting, StrategyEulerRMQ, StrategyTarjan}
}

// ParseStrategy 解析策略名称。
func ParseStrategy(s string) (Strategy, error) {
	for _, st := range Strategies() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", xerrors.ErrInvalidStrategy.WithDetail("unknown strategy %q", s)
}

// ParseStrategies 按顺序解析一组策略名称，遇到未知名称立即返回错误。
func ParseStrategies(names []string) ([]Strategy, error) {
	out := make([]Strategy, 0, len(names))
	for _, name := range names {
		s, err := ParseStrategy(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Online 报告策略是否支持任意顺序的单次查询。
func (s Strategy) Online() bool {
	return s == StrategyNaive || s == StrategyBinaryLifting || s == StrategyEulerRMQ
}

// Engine 是在线 LCA 引擎的统一契约。
type Engine interface {
	// Name 返回引擎对应的策略。
	Name() Strategy
	// LCA 返回 u 与 v 的最近公共祖先标识。
	LCA(u, v int) (int, error)
}

// Pair 是一次查询的节点对。
type Pair struct {
	U, V int
}

// New 按策略构造在线引擎。Tarjan 是离线策略，需使用 NewTarjan。
func New(strategy Strategy, t *tree.Tree) (Engine, error) {
	switch strategy {
	case StrategyNaive:
		return NewNaive(t)
	case StrategyBinaryLifting:
		return NewBinaryLifting(t, 0)
	case StrategyEulerRMQ:
		return NewEulerRMQ(t)
	case StrategyTarjan:
		return nil, xerrors.ErrInvalidStrategy.WithDetail("%s is offline, submit pairs through NewTarjan", strategy)
	default:
		return nil, xerrors.ErrInvalidStrategy.WithDetail("unknown strategy %q", strategy)
	}
}

// Resolve 依次执行一批在线查询，遇到第一个错误即返回。
func Resolve(e Engine, pairs []Pair) ([]int, error) {
	out := make([]int, len(pairs))
	for i, p := range pairs {
		w, err := e.LCA(p.U, p.V)
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}

// lookup 将一对节点标识转换为稠密下标。
func lookup(t *tree.Tree, u, v int) (int, int, error) {
	iu, ok := t.Index(u)
	if !ok {
		return 0, 0, xerrors.ErrUnknownNode.WithDetail("node %d", u)
	}
	iv, ok := t.Index(v)
	if !ok {
		return 0, 0, xerrors.ErrUnknownNode.WithDetail("node %d", v)
	}
	return iu, iv, nil
}

func checkTree(t *tree.Tree) error {
	if t == nil || t.Size() == 0 {
		return xerrors.ErrInvalidInput.WithDetail("nil or empty tree")
	}
	return nil
}
