package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// HTTPService 不设置写超时，进度流连接会持续到同步结束
type HTTPService struct {
	server *http.Server
}

func NewHTTPService(host, port string, handler http.Handler) *HTTPService {
	return &HTTPService{server: &http.Server{
		Addr:              net.JoinHostPort(host, port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}}
}

func (s *HTTPService) Name() string { return "http" }

func (s *HTTPService) Addr() string { return s.server.Addr }

// Start 监听失败立即返回错误；正常关闭返回 nil
func (s *HTTPService) Start(context.Context) error {
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop 超时后强制断开未结束的进度流
func (s *HTTPService) Stop(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return s.server.Close()
	}
	return err
}
