package app

import "github.com/wyfcoding/lca/server"

// Option 用于配置应用程序选项。
type Option func(*options)

type options struct {
	servers  []server.Server // 随应用启动与停止的服务器
	cleanups []func()        // 关闭时按注册的逆序执行
}

// WithServer 添加一个或多个服务器，应用启动时启动，关闭时优雅停止。
func WithServer(servers ...server.Server) Option {
	return func(o *options) {
		o.servers = append(o.servers, servers...)
	}
}

// WithCleanup 添加一个关闭时执行的清理函数。
func WithCleanup(cleanup func()) Option {
	return func(o *options) {
		if cleanup != nil {
			o.cleanups = append(o.cleanups, cleanup)
		}
	}
}
