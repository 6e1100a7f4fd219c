package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"tradepersona/internal/agent"
	"tradepersona/internal/config"
	"tradepersona/internal/gateway/provider"
	"tradepersona/internal/logger"
	"tradepersona/internal/persona"
	"tradepersona/internal/prompt"
	"tradepersona/internal/trace"
	"tradepersona/internal/trade"
	"tradepersona/internal/tradesource"
	chathttp "tradepersona/internal/transport/http/chat"
)

type AppBuilder struct {
	cfg *config.Config

	sourceFn   func(config.DataConfig) (tradesource.Source, error)
	promptsFn  func(string) (*prompt.Registry, error)
	providerFn func(context.Context, config.AIConfig) (provider.ModelProvider, error)
	chatHTTPFn func(config.AppConfig, chathttp.Asker) (*chathttp.Server, error)
	traceOut   io.Writer
}

type AppBuilderOption func(*AppBuilder)

// WithProvider 替换文本生成服务，测试与离线演示使用。
func WithProvider(p provider.ModelProvider) AppBuilderOption {
	return func(b *AppBuilder) {
		b.providerFn = func(context.Context, config.AIConfig) (provider.ModelProvider, error) { return p, nil }
	}
}

// WithSource 替换交易数据源。
func WithSource(src tradesource.Source) AppBuilderOption {
	return func(b *AppBuilder) {
		b.sourceFn = func(config.DataConfig) (tradesource.Source, error) { return src, nil }
	}
}

func WithTraceOutput(w io.Writer) AppBuilderOption {
	return func(b *AppBuilder) { b.traceOut = w }
}

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:        cfg,
		sourceFn:   tradesource.Open,
		promptsFn:  prompt.NewRegistry,
		providerFn: provider.Build,
		chatHTTPFn: buildChatHTTPServer,
		traceOut:   os.Stderr,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build(ctx context.Context) (_ *App, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg
	app := &App{cfg: cfg}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	if err := b.setupLogging(app); err != nil {
		return nil, err
	}
	if err := trace.Init(cfg.Trace.Enabled, b.traceOut); err != nil {
		return nil, fmt.Errorf("初始化追踪失败: %w", err)
	}

	store, err := b.loadStore(ctx)
	if err != nil {
		return nil, err
	}
	prompts, err := b.promptsFn(cfg.Prompt.TemplatesPath)
	if err != nil {
		return nil, fmt.Errorf("加载提示词失败: %w", err)
	}
	mp, err := b.providerFn(ctx, cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("初始化模型服务失败: %w", err)
	}
	logger.Infof("✓ 模型服务 %s (%s)", mp.ID(), cfg.AI.Model)

	ag, err := agent.New(agent.Deps{
		Store:          store,
		Provider:       mp,
		Prompts:        prompts,
		Holding:        persona.DefaultHolding(cfg.Persona.HoldingSeed),
		RetrievalLimit: cfg.Agent.RetrievalLimit,
		Timeout:        cfg.AI.Timeout(),
	})
	if err != nil {
		return nil, err
	}
	app.agent = ag

	srv, err := b.chatHTTPFn(cfg.App, ag)
	if err != nil {
		return nil, err
	}
	app.chatHTTP = srv
	app.Summary = newStartupSummary(cfg, store, ag.Persona(), prompts.Snapshot())
	return app, nil
}

func (b *AppBuilder) setupLogging(app *App) error {
	cfg := b.cfg.App
	logger.SetLevel(cfg.LogLevel)
	f, err := logger.SetupFile(cfg.LogPath)
	if err != nil {
		return fmt.Errorf("初始化日志文件失败: %w", err)
	}
	if f != nil {
		app.closers = append(app.closers, f)
	}
	logger.SetLLMWriter(nil)
	if cfg.LLMLog != "" {
		lf, err := logger.SetupLLMFile(cfg.LLMLog)
		if err != nil {
			return fmt.Errorf("初始化 LLM 日志失败: %w", err)
		}
		if lf != nil {
			app.closers = append(app.closers, lf)
		}
	}
	logger.EnableLLMPayloadDump(cfg.LLMDump)
	return nil
}

func (b *AppBuilder) loadStore(ctx context.Context) (*trade.Store, error) {
	src, err := b.sourceFn(b.cfg.Data)
	if err != nil {
		return nil, err
	}
	return tradesource.LoadStore(ctx, src)
}

func buildChatHTTPServer(cfg config.AppConfig, a chathttp.Asker) (*chathttp.Server, error) {
	return chathttp.NewServer(chathttp.ServerConfig{Addr: cfg.HTTPAddr, Agent: a})
}

// LoadProfile 只加载交易并构建画像，不需要模型凭证。
func LoadProfile(ctx context.Context, cfg *config.Config) (persona.Profile, error) {
	if cfg == nil {
		return persona.Profile{}, fmt.Errorf("nil config")
	}
	src, err := tradesource.Open(cfg.Data)
	if err != nil {
		return persona.Profile{}, err
	}
	store, err := tradesource.LoadStore(ctx, src)
	if err != nil {
		return persona.Profile{}, err
	}
	return persona.Builder{Holding: persona.DefaultHolding(cfg.Persona.HoldingSeed)}.Build(store.Trades())
}
