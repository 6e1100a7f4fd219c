package provider

import (
	"context"
	"fmt"
	"strings"

	"tradepersona/internal/config"
	"tradepersona/internal/logger"
	"tradepersona/internal/pkg/circuit"
)

// Build 按 ai 配置构建文本生成服务：基础客户端 → 日志 → 熔断。
// 没有凭证时直接返回 ErrMissingAPIKey，不做降级。
func Build(ctx context.Context, cfg config.AIConfig) (ModelProvider, error) {
	if !cfg.HasAPIKey() {
		return nil, ErrMissingAPIKey
	}
	base, err := buildBase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var p ModelProvider = NewLoggingProvider(base)
	if cfg.BreakerThreshold > 0 {
		p = NewBreakerProvider(p, circuit.New(base.ID(), cfg.BreakerThreshold, cfg.BreakerCooldown()))
	}
	logger.Infof("文本生成服务已就绪: %s (%s)", base.ID(), strings.TrimRight(cfg.APIURL, "/"))
	return p, nil
}

func buildBase(ctx context.Context, cfg config.AIConfig) (ModelProvider, error) {
	id := fmt.Sprintf("%s:%s", cfg.Provider, cfg.Model)
	switch cfg.Provider {
	case config.ProviderGemini, config.ProviderOpenAI:
		client := NewOpenAIChatClient(cfg.APIURL, cfg.APIKey, cfg.Model, cfg.Timeout(), cfg.MaxRetries, cfg.Headers)
		return NewOpenAIModelProvider(id, client), nil
	case config.ProviderEinoOpenAI, config.ProviderEinoDeepSeek:
		settings := einoSettings{BaseURL: cfg.APIURL, APIKey: cfg.APIKey, Model: cfg.Model, Timeout: cfg.Timeout()}
		build := newEinoOpenAI
		if cfg.Provider == config.ProviderEinoDeepSeek {
			build = newEinoDeepSeek
		}
		m, err := build(ctx, settings)
		if err != nil {
			return nil, fmt.Errorf("build %s chat model: %w", cfg.Provider, err)
		}
		return NewEinoProvider(id, m), nil
	default:
		return nil, fmt.Errorf("unsupported ai.provider %q", cfg.Provider)
	}
}
