package chathttp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"tradepersona/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
)

// Server 提供 /api/chat 与画像查询接口。
type Server struct {
	addr    string
	router  *gin.Engine
	handler http.Handler
}

// ServerConfig 描述 chat HTTP 服务依赖。
type ServerConfig struct {
	Addr  string
	Agent Asker
	// ShutdownTimeout 默认 5s
	ShutdownTimeout time.Duration
}

// NewServer 构建 chat HTTP server。
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Agent == nil {
		return nil, errors.New("chat http server requires an agent")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	NewRouter(cfg.Agent).Register(router.Group("/api"))

	// 与原接口保持一致：任意来源、任意方法
	handler := cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{traceHeader},
		MaxAge:         300,
	})(router)

	return &Server{addr: cfg.Addr, router: router, handler: handler}, nil
}

// Handler 返回带 CORS 的完整 handler，测试与嵌入场景使用。
func (s *Server) Handler() http.Handler {
	return s.handler
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		client := c.ClientIP()
		c.Next()
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s", method, path, c.Writer.Status(), client, time.Since(start))
	}
}

// Addr 返回监听地址。
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start 启动 HTTP 服务，直到 ctx 取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Infof("HTTP 服务已启动 addr=%s", s.addr)

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
