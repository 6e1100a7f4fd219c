package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// EinoProvider 把 eino ChatModel 适配为 ModelProvider。
type EinoProvider struct {
	id    string
	model model.BaseChatModel
}

func NewEinoProvider(id string, m model.BaseChatModel) *EinoProvider {
	return &EinoProvider{id: id, model: m}
}

func (p *EinoProvider) ID() string { return p.id }

func (p *EinoProvider) Call(ctx context.Context, payload ChatPayload) (string, error) {
	msgs := make([]*schema.Message, 0, 2)
	if payload.System != "" {
		msgs = append(msgs, schema.SystemMessage(payload.System))
	}
	msgs = append(msgs, schema.UserMessage(payload.User))
	var opts []model.Option
	if payload.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(payload.MaxTokens))
	}
	out, err := p.model.Generate(ctx, msgs, opts...)
	if err != nil {
		return "", fmt.Errorf("eino generate: %w", err)
	}
	if out == nil {
		return "", ErrEmptyReply
	}
	return out.Content, nil
}

// einoSettings 是构建 eino 模型所需的连接参数。
type einoSettings struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func newEinoOpenAI(ctx context.Context, s einoSettings) (model.BaseChatModel, error) {
	temp := float32(0.2)
	return einoopenai.NewChatModel(ctx, &einoopenai.ChatModelConfig{
		BaseURL:     strings.TrimRight(s.BaseURL, "/"),
		APIKey:      s.APIKey,
		Model:       s.Model,
		Timeout:     s.Timeout,
		Temperature: &temp,
	})
}

func newEinoDeepSeek(ctx context.Context, s einoSettings) (model.BaseChatModel, error) {
	return deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
		BaseURL:     strings.TrimRight(s.BaseURL, "/"),
		APIKey:      s.APIKey,
		Model:       s.Model,
		Timeout:     s.Timeout,
		Temperature: 0.2,
	})
}
