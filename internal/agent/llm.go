package agent

import (
	"context"
	"time"

	"tradepersona/internal/gateway/provider"
)

// Step 名称，同时用作 LLM 日志的 purpose 与 span 名后缀。
const (
	stepClassify           = "classify"
	stepTranslateFilter    = "translate-filter"
	stepTranslateAggregate = "translate-aggregate"
	stepCompose            = "compose"
)

// callModel 在单步超时内调用一次模型；超时视为该步骤失败。
func callModel(ctx context.Context, p provider.ModelProvider, timeout time.Duration, payload provider.ChatPayload) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return p.Call(ctx, payload)
}
