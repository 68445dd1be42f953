package server

import "context"

// Server 是可被统一管理生命周期的服务器。
type Server interface {
	// Start 阻塞运行直到 ctx 取消或出现致命错误。
	Start(ctx context.Context) error
	// Stop 优雅停止，等待进行中的请求完成。
	Stop(ctx context.Context) error
}

var _ Server = (*GinServer)(nil)
