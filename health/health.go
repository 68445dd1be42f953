// Package health 汇总就绪检查：每个依赖注册一个命名的 Checker，/readyz 依次执行。
package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wyfcoding/lca/algorithm/lca"
	"github.com/wyfcoding/lca/engine"
)

const defaultCheckTimeout = 2 * time.Second

// Checker 定义健康检查函数原型。
type Checker func(ctx context.Context) error

// Result 是一次检查的结论。
type Result struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Registry 保存按注册顺序执行的检查项。
type Registry struct {
	mu      sync.RWMutex
	names   []string
	checks  map[string]Checker
	timeout time.Duration
}

// NewRegistry 创建检查注册表，timeout <= 0 时使用 2s。
func NewRegistry(timeout time.Duration) *Registry {
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	return &Registry{checks: make(map[string]Checker), timeout: timeout}
}

// Register 添加或替换一个检查项。
func (r *Registry) Register(name string, c Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.checks[name]; !ok {
		r.names = append(r.names, name)
	}
	r.checks[name] = c
}

// Check 执行全部检查，任一失败时返回的 error 汇总所有失败项。
func (r *Registry) Check(ctx context.Context) ([]Result, error) {
	r.mu.RLock()
	names := append([]string(nil), r.names...)
	checks := make([]Checker, len(names))
	for i, name := range names {
		checks[i] = r.checks[name]
	}
	r.mu.RUnlock()

	results := make([]Result, len(names))
	var errs []error
	for i, c := range checks {
		cctx, cancel := context.WithTimeout(ctx, r.timeout)
		err := c(cctx)
		cancel()

		results[i] = Result{Name: names[i], OK: err == nil}
		if err != nil {
			results[i].Error = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", names[i], err))
		}
	}
	return results, errors.Join(errs...)
}

// EngineChecker 确认指定策略的引擎可用；首次调用会触发预处理，相当于预热。
func EngineChecker(registry *engine.Registry, strategy lca.Strategy) Checker {
	return func(ctx context.Context) error {
		if registry == nil {
			return errors.New("engine registry is nil")
		}
		if !strategy.Online() {
			return nil
		}
		e, err := registry.Get(ctx, strategy)
		if err != nil {
			return err
		}
		root := registry.Tree().Root()
		got, err := e.LCA(root, root)
		if err != nil {
			return err
		}
		if got != root {
			return fmt.Errorf("lca(root, root) = %d, want %d", got, root)
		}
		return nil
	}
}
