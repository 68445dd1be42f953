package lca

import "math/bits"

// sparseTable 支持静态序列上的 O(1) 区间最小值位置查询。
// levels[j][i] 保存区间 [i, i+2^j) 内最小值的位置，相等时取左侧。
type sparseTable struct {
	values []int
	levels [][]int32
}

func newSparseTable(values []int) *sparseTable {
	m := len(values)
	st := &sparseTable{values: values}
	if m == 0 {
		return st
	}

	base := make([]int32, m)
	for i := range base {
		base[i] = int32(i) //nolint:gosec // 欧拉序长度远小于 int32 上限。
	}
	st.levels = append(st.levels, base)

	for j, s := 1, 2; s <= m; j, s = j+1, s*2 {
		prev := st.levels[j-1]
		half := s / 2
		cur := make([]int32, m-s+1)
		for i := range cur {
			cur[i] = st.pick(prev[i], prev[i+half])
		}
		st.levels = append(st.levels, cur)
	}
	return st
}

// pick 返回较小值的位置，相等时保留左侧位置以保证输出确定。
func (st *sparseTable) pick(left, right int32) int32 {
	if st.values[right] < st.values[left] {
		return right
	}
	return left
}

// argMin 返回闭区间 [lo, hi] 内最小值的位置，要求 0 <= lo <= hi < len(values)。
func (st *sparseTable) argMin(lo, hi int) int {
	j := bits.Len(uint(hi-lo+1)) - 1
	level := st.levels[j]
	return int(st.pick(level[lo], level[hi-(1<<j)+1]))
}
