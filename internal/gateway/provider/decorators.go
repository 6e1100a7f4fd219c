package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"tradepersona/internal/logger"
	"tradepersona/internal/pkg/circuit"
	"tradepersona/internal/pkg/jsonutil"
)

// BreakerProvider 在熔断器打开时直接拒绝调用，由上层按步骤失败处理。
type BreakerProvider struct {
	inner   ModelProvider
	breaker *circuit.Breaker
}

func NewBreakerProvider(inner ModelProvider, breaker *circuit.Breaker) *BreakerProvider {
	return &BreakerProvider{inner: inner, breaker: breaker}
}

func (p *BreakerProvider) ID() string { return p.inner.ID() }

func (p *BreakerProvider) Call(ctx context.Context, payload ChatPayload) (string, error) {
	if !p.breaker.Allow() {
		return "", fmt.Errorf("%s: %w", p.inner.ID(), ErrCircuitOpen)
	}
	out, err := p.inner.Call(ctx, payload)
	if err != nil {
		// 调用方主动取消不计入失败
		if ctx.Err() == nil || ctx.Err() == context.DeadlineExceeded {
			p.breaker.RecordFailure()
		}
		return "", err
	}
	p.breaker.RecordSuccess()
	return out, nil
}

// LoggingProvider 把每次请求与回复写入 LLM 日志。
type LoggingProvider struct {
	inner ModelProvider
}

func NewLoggingProvider(inner ModelProvider) *LoggingProvider {
	return &LoggingProvider{inner: inner}
}

func (p *LoggingProvider) ID() string { return p.inner.ID() }

func (p *LoggingProvider) Call(ctx context.Context, payload ChatPayload) (string, error) {
	raw, _ := json.Marshal(payload)
	logger.LogLLMRequest(p.inner.ID(), payload.Purpose, payload.TraceID, payload.System, payload.User, jsonutil.Pretty(string(raw)))
	out, err := p.inner.Call(ctx, payload)
	logger.LogLLMResponse(p.inner.ID(), payload.Purpose, payload.TraceID, out, err)
	return out, err
}
