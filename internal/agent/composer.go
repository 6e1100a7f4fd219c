package agent

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"tradepersona/internal/gateway/provider"
	"tradepersona/internal/logger"
	"tradepersona/internal/persona"
	"tradepersona/internal/prompt"
	"tradepersona/internal/trace"
)

const (
	// ApologyMessage 是回答生成失败时返回给用户的固定文本。
	ApologyMessage = "Sorry, I had a moment of brain-freeze. Could you ask me again?"
	NoDataText     = "No data available."

	LabelTrades     = "RELEVANT TRADE EXAMPLES"
	LabelCalculated = "CALCULATED DATA"
)

// Composer 把画像、上下文与原问题合成第一人称回答。
type Composer struct {
	provider provider.ModelProvider
	prompts  *prompt.Registry
	timeout  time.Duration
}

func NewComposer(p provider.ModelProvider, prompts *prompt.Registry, timeout time.Duration) *Composer {
	return &Composer{provider: p, prompts: prompts, timeout: timeout}
}

// Compose 不返回错误：服务失败时返回 ApologyMessage。
func (c *Composer) Compose(ctx context.Context, question string, profile persona.Profile, data any, label, traceID string) string {
	ctx, span := trace.StartSpan(ctx, "agent.compose", traceID)
	log := logger.Trace(traceID)

	personaJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		trace.End(span, err)
		log.Error("persona marshal failed", "error", err)
		return ApologyMessage
	}
	text, err := c.prompts.Render(prompt.Composer, prompt.ComposerData{
		Persona:  string(personaJSON),
		Label:    label,
		Context:  RenderContext(data),
		Question: question,
	})
	if err != nil {
		trace.End(span, err)
		log.Error("composer prompt render failed", "error", err)
		return ApologyMessage
	}
	reply, err := callModel(ctx, c.provider, c.timeout, provider.ChatPayload{
		User:    text,
		Purpose: stepCompose,
		TraceID: traceID,
	})
	trace.End(span, err)
	if err != nil {
		log.Error("narration failed", "error", err)
		return ApologyMessage
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		log.Warn("narration reply was empty")
		return ApologyMessage
	}
	return reply
}

// RenderContext 把上下文序列化为缩进 JSON；nil 或空集合写成 NoDataText。
func RenderContext(data any) string {
	if isEmpty(data) {
		return NoDataText
	}
	if s, ok := data.(string); ok {
		return s
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return NoDataText
	}
	return string(raw)
}

func isEmpty(data any) bool {
	if data == nil {
		return true
	}
	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	}
	return false
}
