package agent

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"tradepersona/internal/gateway/provider"
	"tradepersona/internal/logger"
	"tradepersona/internal/pkg/text"
	"tradepersona/internal/prompt"
	"tradepersona/internal/trace"
)

// Intent 是问题的意图分类。
type Intent string

const (
	IntentRetrieval   Intent = "retrieval"
	IntentAggregation Intent = "aggregation"
)

// Classifier 把问题分到 retrieval / aggregation 两类之一，任何失败都回落到 retrieval。
type Classifier struct {
	provider provider.ModelProvider
	prompts  *prompt.Registry
	timeout  time.Duration
}

func NewClassifier(p provider.ModelProvider, prompts *prompt.Registry, timeout time.Duration) *Classifier {
	return &Classifier{provider: p, prompts: prompts, timeout: timeout}
}

// Classify 永远返回两个合法值之一，不会返回错误。
func (c *Classifier) Classify(ctx context.Context, question, traceID string) (intent Intent) {
	ctx, span := trace.StartSpan(ctx, "agent.classify", traceID)
	defer func() {
		span.SetAttributes(attribute.String("intent", string(intent)))
		trace.End(span, nil)
	}()
	log := logger.Trace(traceID)

	user, err := c.prompts.Render(prompt.Classifier, prompt.ClassifierData{Question: question})
	if err != nil {
		log.Error("classifier prompt render failed", "error", err)
		return IntentRetrieval
	}
	reply, err := callModel(ctx, c.provider, c.timeout, provider.ChatPayload{
		User:      user,
		Purpose:   stepClassify,
		TraceID:   traceID,
		MaxTokens: 8,
	})
	if err != nil {
		log.Warn("could not classify query, defaulting to retrieval", "error", err)
		return IntentRetrieval
	}
	label := normalizeLabel(reply)
	switch Intent(label) {
	case IntentRetrieval, IntentAggregation:
		log.Info("query classified", "intent", label)
		return Intent(label)
	default:
		log.Warn("unexpected classifier reply, defaulting to retrieval", "reply", text.Truncate(reply, 200))
		return IntentRetrieval
	}
}

// normalizeLabel 只去掉首尾空白并转小写，其余形式一律不接受。
func normalizeLabel(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
