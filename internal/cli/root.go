// Package cli 提供 tradepersona 的命令行入口：serve / ask / chat / persona / import。
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tradepersona/internal/config"
	"tradepersona/internal/logger"
)

const (
	defaultConfigPath = "configs/config.yaml"
	configEnv         = "TRADEPERSONA_CONFIG"
)

type rootState struct {
	configPath string
	debug      bool
	cfg        *config.Config
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	st := &rootState{}
	rootCmd := &cobra.Command{
		Use:   "tradepersona",
		Short: "Chat with your own trading history",
		Long: `tradepersona builds a trader persona from historical trades and answers
questions about them in the first person, backed by a text-generation model.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(resolveConfigPath(st.configPath, cmd.Flags().Changed("config")))
			if err != nil {
				return fmt.Errorf("读取配置失败: %w", err)
			}
			st.cfg = cfg
			return nil
		},
	}

	rootCmd.AddCommand(newServeCmd(st))
	rootCmd.AddCommand(newAskCmd(st))
	rootCmd.AddCommand(newChatCmd(st))
	rootCmd.AddCommand(newPersonaCmd(st))
	rootCmd.AddCommand(newImportCmd(st))

	rootCmd.PersistentFlags().StringVar(&st.configPath, "config", "", "Configuration file path (env "+configEnv+")")
	rootCmd.PersistentFlags().BoolVar(&st.debug, "debug", false, "Show debug logs on interactive commands")
	return rootCmd
}

// resolveConfigPath: flag > env > 默认路径；默认文件不存在时只用默认值与环境变量。
func resolveConfigPath(flagValue string, explicit bool) string {
	if explicit {
		return flagValue
	}
	if env := strings.TrimSpace(os.Getenv(configEnv)); env != "" {
		return env
	}
	if _, err := os.Stat(defaultConfigPath); errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	return defaultConfigPath
}

// quietLogs 交互命令默认只输出 warn 以上，避免日志与回答混在一起。
func (st *rootState) quietLogs() {
	logger.SetOutput(os.Stderr)
	if !st.debug {
		st.cfg.App.LogLevel = "warn"
	}
}
