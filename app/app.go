// Package app 管理进程级生命周期：启动服务器、响应退出信号并按序清理资源。
package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/wyfcoding/lca/server"
)

// App 是应用程序的核心容器。
type App struct {
	name            string
	logger          *slog.Logger
	opts            options
	shutdownTimeout time.Duration
}

// New 创建一个新的应用程序实例。
func New(name string, logger *slog.Logger, opts ...Option) *App {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return &App{
		name:            name,
		logger:          logger,
		opts:            o,
		shutdownTimeout: 10 * time.Second,
	}
}

// Run 启动所有服务器并阻塞，直到 ctx 取消、收到 SIGINT/SIGTERM 或任一服务器异常退出。
// 退出时先等待服务器完成优雅关闭，再逆序执行清理函数。
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("application starting", "name", a.name, "pid", os.Getpid())

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var wg sync.WaitGroup
	for _, srv := range a.opts.servers {
		wg.Add(1)
		go func(s server.Server) {
			defer wg.Done()
			// Start 在 ctx 取消时自行执行优雅关闭。
			if err := s.Start(ctx); err != nil {
				a.logger.Error("server exited with error", "error", err)
				cancel(err)
			}
		}(srv)
	}

	<-ctx.Done()
	a.logger.Info("shutting down application", "name", a.name)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(a.shutdownTimeout):
		a.logger.Warn("servers did not stop in time", "timeout", a.shutdownTimeout)
	}

	for i := len(a.opts.cleanups) - 1; i >= 0; i-- {
		a.opts.cleanups[i]()
	}

	// 信号、调用方取消或超时都视为正常退出，只有服务器异常才返回错误。
	err := context.Cause(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		a.logger.Info("application shut down gracefully")
		return nil
	}
	return err
}
