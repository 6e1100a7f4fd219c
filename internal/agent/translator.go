package agent

import (
	"context"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"tradepersona/internal/gateway/provider"
	"tradepersona/internal/logger"
	"tradepersona/internal/pkg/jsonutil"
	"tradepersona/internal/prompt"
	"tradepersona/internal/trace"
	"tradepersona/internal/trade"
)

// TranslatorKind 区分两种翻译：行过滤与聚合。
type TranslatorKind int

const (
	TranslateFilter TranslatorKind = iota
	TranslateAggregate
)

func (k TranslatorKind) String() string {
	if k == TranslateAggregate {
		return stepTranslateAggregate
	}
	return stepTranslateFilter
}

func (k TranslatorKind) template() prompt.Name {
	if k == TranslateAggregate {
		return prompt.AggregateTranslator
	}
	return prompt.FilterTranslator
}

// Translator 把自然语言问题翻译成候选表达式。它不校验也不执行表达式。
type Translator struct {
	kind     TranslatorKind
	provider provider.ModelProvider
	prompts  *prompt.Registry
	schema   string
	timeout  time.Duration
}

func NewFilterTranslator(p provider.ModelProvider, prompts *prompt.Registry, schema trade.SchemaDescription, timeout time.Duration) *Translator {
	return newTranslator(TranslateFilter, p, prompts, schema, timeout)
}

func NewAggregateTranslator(p provider.ModelProvider, prompts *prompt.Registry, schema trade.SchemaDescription, timeout time.Duration) *Translator {
	return newTranslator(TranslateAggregate, p, prompts, schema, timeout)
}

func newTranslator(kind TranslatorKind, p provider.ModelProvider, prompts *prompt.Registry, schema trade.SchemaDescription, timeout time.Duration) *Translator {
	return &Translator{kind: kind, provider: p, prompts: prompts, schema: schema.Prompt(), timeout: timeout}
}

func (t *Translator) Kind() TranslatorKind { return t.kind }

// Translate 返回清洗后的候选表达式；服务失败时返回空串。
func (t *Translator) Translate(ctx context.Context, question, traceID string) string {
	ctx, span := trace.StartSpan(ctx, "agent.translate", traceID)
	log := logger.Trace(traceID)

	text, err := t.prompts.Render(t.kind.template(), prompt.TranslatorData{Schema: t.schema, Question: question})
	if err != nil {
		log.Error("translator prompt render failed", "kind", t.kind.String(), "error", err)
		trace.End(span, err)
		return ""
	}
	reply, err := callModel(ctx, t.provider, t.timeout, provider.ChatPayload{
		User:    text,
		Purpose: t.kind.String(),
		TraceID: traceID,
	})
	trace.End(span, err)
	if err != nil {
		log.Warn("translation failed", "kind", t.kind.String(), "error", err)
		return ""
	}
	expr := CleanExpression(reply)
	log.Info("translated expression", "kind", t.kind.String(), "expression", expr)
	return expr
}

// CleanExpression 去掉模型回复中的格式噪音：代码围栏、反引号、"Expression:" 前缀、
// {"expression": ...} 包装、换行与句末分号。
func CleanExpression(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if block, ok := jsonutil.CodeBlock(s); ok {
		s = block
	}
	if strings.HasPrefix(s, "{") {
		if js, ok := jsonutil.ExtractJSON(s); ok && gjson.Valid(js) {
			if v := gjson.Get(js, "expression"); v.Exists() {
				s = v.String()
			}
		}
	}
	s = strings.ReplaceAll(s, "`", "")
	s = strings.TrimSpace(s)
	for _, label := range []string{"expression:", "pandas code:", "answer:"} {
		if len(s) >= len(label) && strings.EqualFold(s[:len(label)], label) {
			s = strings.TrimSpace(s[len(label):])
		}
	}
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	s = strings.TrimRight(strings.TrimSpace(s), ";")
	return strings.TrimSpace(s)
}
