// Package http 提供HTTP服务器功能
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const maxRequestBody = 64 << 10

// Server HTTP服务器
type Server struct {
	server *http.Server
	config ServerConfig
	logger *zap.Logger
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port           int
	Timeout        time.Duration
	AllowedOrigins []string
	// Metrics 挂载在 /metrics，可为空
	Metrics http.Handler
}

// DefaultServerConfig 默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:           8501,
		Timeout:        30 * time.Second,
		AllowedOrigins: []string{"*"},
	}
}

// NewHandler 注册所有路由并包装中间件
func NewHandler(config ServerConfig, l *zap.Logger) http.Handler {
	if l == nil {
		l = zap.NewNop()
	}
	SetLogger(l)
	if len(config.AllowedOrigins) > 0 {
		allowedOrigins = config.AllowedOrigins
	}

	mux := http.NewServeMux()
	RegisterHandlers(mux)
	RegisterPredictHandlers(mux)
	RegisterWebSocketHandlers(mux)
	if config.Metrics != nil {
		mux.Handle("GET /metrics", config.Metrics)
	}

	chain := Chain(
		RecoveryMiddleware(l),                 // 1. 恢复中间件（最先执行，捕获panic）
		LoggerMiddleware(l),                   // 2. 日志中间件
		SecurityHeadersMiddleware,             // 3. 安全头中间件
		CORSMiddleware(config.AllowedOrigins), // 4. CORS中间件
		TimeoutMiddleware(config.Timeout),     // 5. 超时中间件
		RequestSizeMiddleware(maxRequestBody), // 6. 请求大小限制
	)
	return chain(mux)
}

// NewServer 创建HTTP服务器
func NewServer(config ServerConfig, l *zap.Logger) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.Port),
			Handler:           NewHandler(config, l),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       config.Timeout,
			IdleTimeout:       120 * time.Second,
		},
		config: config,
		logger: l,
	}
}

// Start 启动服务器
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server",
		zap.String("addr", s.server.Addr),
		zap.String("websocket", fmt.Sprintf("ws://localhost%s/api/ws/predict", s.server.Addr)))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop 停止服务器
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	return nil
}

// Addr 返回服务器地址
func (s *Server) Addr() string {
	return s.server.Addr
}
