package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"tradepersona/internal/agent"
	"tradepersona/internal/config"
	"tradepersona/internal/logger"
	"tradepersona/internal/trace"
	chathttp "tradepersona/internal/transport/http/chat"

	"golang.org/x/sync/errgroup"
)

// App 负责应用级编排：加载交易→构建画像与 agent→启动 HTTP 服务。
type App struct {
	cfg      *config.Config
	agent    *agent.Agent
	chatHTTP *chathttp.Server
	closers  []io.Closer
	Summary  *StartupSummary
}

// NewApp 根据配置构建应用对象（不启动）
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	return buildAppWithWire(ctx, cfg)
}

// Run 启动 HTTP 服务，ctx 取消后优雅退出。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.chatHTTP == nil {
		return fmt.Errorf("chat http server not initialized")
	}
	if a.Summary != nil {
		a.Summary.Print()
	}
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.chatHTTP.Start(ctx); err != nil {
			return fmt.Errorf("chat http server error: %w", err)
		}
		return nil
	})
	return group.Wait()
}

// Agent exposes the question-answering engine for the CLI.
func (a *App) Agent() *agent.Agent {
	if a == nil {
		return nil
	}
	return a.agent
}

// Close 刷出追踪并关闭日志文件。
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	errs := []error{trace.Shutdown(shCtx)}
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		logger.Warnf("关闭应用资源失败: %v", err)
		return err
	}
	return nil
}
