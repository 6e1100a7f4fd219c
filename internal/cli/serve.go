package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tradepersona/internal/app"
	"tradepersona/internal/logger"
)

func newServeCmd(st *rootState) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP chat API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				st.cfg.App.HTTPAddr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.NewApp(ctx, st.cfg)
			if err != nil {
				return fmt.Errorf("初始化应用失败: %w", err)
			}
			defer a.Close()
			logger.Infof("✓ 配置加载成功（环境=%s，provider=%s）", st.cfg.App.Env, st.cfg.AI.Provider)
			return a.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Override app.http_addr")
	return cmd
}

func buildQuietApp(ctx context.Context, st *rootState) (*app.App, error) {
	st.quietLogs()
	a, err := app.NewApp(ctx, st.cfg)
	if err != nil {
		return nil, fmt.Errorf("初始化应用失败: %w", err)
	}
	return a, nil
}
