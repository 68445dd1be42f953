package lca

import (
	"context"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// minChunk 是每个 goroutine 处理的最少查询数，避免小批次的调度开销压过查询本身。
const minChunk = 256

// QueryAll 在只读在线引擎上并发执行一批查询，结果顺序与 pairs 一致。
// workers <= 0 时使用 GOMAXPROCS。任一查询失败或 ctx 取消都会终止剩余分片并返回首个错误。
func QueryAll(ctx context.Context, e Engine, pairs []Pair, workers int) ([]int, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if len(pairs) <= minChunk || workers == 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return Resolve(e, pairs)
	}

	chunk := max((len(pairs)+workers-1)/workers, minChunk)
	out := make([]int, len(pairs))

	p := pool.New().WithContext(ctx).WithMaxGoroutines(workers).WithCancelOnError().WithFirstError()
	for lo := 0; lo < len(pairs); lo += chunk {
		hi := min(lo+chunk, len(pairs))
		p.Go(func(ctx context.Context) error {
			for i := lo; i < hi; i++ {
				if i%minChunk == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				w, err := e.LCA(pairs[i].U, pairs[i].V)
				if err != nil {
					return err
				}
				out[i] = w
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
