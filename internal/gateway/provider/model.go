package provider

import (
	"context"
	"errors"
)

// ChatPayload 是一次文本生成请求。Purpose/TraceID 只用于日志与追踪。
type ChatPayload struct {
	System    string
	User      string
	Purpose   string
	TraceID   string
	MaxTokens int
}

// ModelProvider 是文本生成服务的最小抽象，各组件通过构造注入获得它。
type ModelProvider interface {
	ID() string
	Call(ctx context.Context, payload ChatPayload) (string, error)
}

var (
	// ErrMissingAPIKey 表示没有可用凭证，构建阶段直接失败。
	ErrMissingAPIKey = errors.New("provider: api key is not configured")
	// ErrCircuitOpen 表示熔断器处于打开状态，调用被直接拒绝。
	ErrCircuitOpen = errors.New("provider: circuit open")
	ErrEmptyReply  = errors.New("provider: empty reply")
)
