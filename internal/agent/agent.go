// Package agent 是问答核心：意图分类 → 查询翻译 → 受限解释执行（检索带关键词回落）
// → 结合交易画像生成第一人称回答。Ask 对调用方从不返回错误。
package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"tradepersona/internal/gateway/provider"
	"tradepersona/internal/logger"
	"tradepersona/internal/persona"
	"tradepersona/internal/pkg/text"
	"tradepersona/internal/prompt"
	"tradepersona/internal/trace"
	"tradepersona/internal/trade"
)

// ErrNotConfigured 表示缺少交易数据或文本生成服务，Agent 不会被构造。
var ErrNotConfigured = errors.New("agent: not configured")

// Deps 是构造 Agent 所需的全部依赖。Prompts 为空时使用内置模板。
type Deps struct {
	Store          *trade.Store
	Provider       provider.ModelProvider
	Prompts        *prompt.Registry
	Holding        persona.HoldingSource
	RetrievalLimit int
	Timeout        time.Duration
}

// Answer 是一次问答的结果。
type Answer struct {
	Question string       `json:"question"`
	Response string       `json:"response"`
	Intent   Intent       `json:"intent"`
	Source   ResultSource `json:"source,omitempty"`
	TraceID  string       `json:"trace_id"`
}

type Agent struct {
	profile    persona.Profile
	classifier *Classifier
	retriever  *Retriever
	aggregator *Aggregator
	composer   *Composer
}

// New 构建画像与各组件。画像只在这里计算一次。
func New(d Deps) (*Agent, error) {
	if d.Store == nil {
		return nil, errors.Join(ErrNotConfigured, errors.New("trade store is nil"))
	}
	if d.Provider == nil {
		return nil, errors.Join(ErrNotConfigured, errors.New("text generation provider is nil"))
	}
	prompts := d.Prompts
	if prompts == nil {
		prompts = prompt.Builtin()
	}
	profile, err := persona.Builder{Holding: d.Holding}.Build(d.Store.Trades())
	if err != nil {
		return nil, err
	}
	schema := d.Store.Schema()
	a := &Agent{
		profile:    profile,
		classifier: NewClassifier(d.Provider, prompts, d.Timeout),
		retriever:  NewRetriever(d.Store, NewFilterTranslator(d.Provider, prompts, schema, d.Timeout), d.RetrievalLimit),
		aggregator: NewAggregator(d.Store, NewAggregateTranslator(d.Provider, prompts, schema, d.Timeout)),
		composer:   NewComposer(d.Provider, prompts, d.Timeout),
	}
	if profile.NoData {
		logger.Warnf("agent: trade store is empty, persona has no data")
	} else {
		logger.Infof("Persona created: %s", profile.SummaryLine)
	}
	logger.Infof("agent initialized with %d trades, provider=%s", d.Store.Len(), d.Provider.ID())
	return a, nil
}

// Persona 返回启动时计算好的画像。
func (a *Agent) Persona() persona.Profile { return a.profile }

// Ask 回答一个问题。单个问题内各步骤严格串行；不同问题可以并发调用。
func (a *Agent) Ask(ctx context.Context, question string) Answer {
	question = strings.TrimSpace(question)
	traceID := uuid.NewString()
	ctx, span := trace.StartSpan(ctx, "agent.ask", traceID)
	defer trace.End(span, nil)
	log := logger.Trace(traceID)
	log.Info("received new query", "question", text.Truncate(question, 500))

	ans := Answer{Question: question, TraceID: traceID}
	ans.Intent = a.classifier.Classify(ctx, question, traceID)
	span.SetAttributes(attribute.String("intent", string(ans.Intent)))

	var data any
	var label string
	if ans.Intent == IntentAggregation {
		log.Info("[RAG-Step 1/2] AGGREGATION: calculating data")
		res := a.aggregator.Aggregate(ctx, question, traceID)
		data, label = res.ContextValue(), LabelCalculated
	} else {
		log.Info("[RAG-Step 1/2] RETRIEVAL: finding relevant trades")
		res := a.retriever.Retrieve(ctx, question, traceID, 0)
		data, label = res.Trades, LabelTrades
		ans.Source = res.Source
	}

	log.Info("[RAG-Step 2/2] AUGMENTATION & GENERATION: composing response")
	ans.Response = a.composer.Compose(ctx, question, a.profile, data, label, traceID)
	return ans
}
