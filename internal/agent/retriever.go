package agent

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"tradepersona/internal/expr"
	"tradepersona/internal/logger"
	"tradepersona/internal/trace"
	"tradepersona/internal/trade"
)

// DefaultRetrievalLimit 是检索结果的默认条数上限。
const DefaultRetrievalLimit = 5

// ResultSource 标记检索结果来自哪条路径。
type ResultSource string

const (
	SourceQuery    ResultSource = "query"
	SourceFallback ResultSource = "fallback"
)

var errEmptyCandidate = errors.New("no candidate expression")

// RetrievalResult 是按日期升序、截断到最近 limit 条的交易。
type RetrievalResult struct {
	Trades     []trade.Trade
	Source     ResultSource
	Expression string
	// Reason 记录回落到关键词检索的原因。
	Reason string
}

type Retriever struct {
	store      *trade.Store
	translator *Translator
	limit      int
}

func NewRetriever(store *trade.Store, translator *Translator, limit int) *Retriever {
	if limit <= 0 {
		limit = DefaultRetrievalLimit
	}
	return &Retriever{store: store, translator: translator, limit: limit}
}

// Retrieve 先走翻译后的过滤表达式，表达式为空、被拒或执行出错时回落到关键词检索。
// limit <= 0 时使用构造时的上限。
func (r *Retriever) Retrieve(ctx context.Context, question, traceID string, limit int) RetrievalResult {
	if limit <= 0 {
		limit = r.limit
	}
	log := logger.Trace(traceID)

	candidate := r.translator.Translate(ctx, question, traceID)
	matched, err := r.evaluate(ctx, candidate, traceID)
	res := RetrievalResult{Source: SourceQuery, Expression: candidate}
	if err != nil {
		log.Warn("falling back to keyword retrieval", "expression", candidate, "error", err)
		matched = FallbackFilter(r.store, question)
		res.Source = SourceFallback
		res.Reason = err.Error()
	}
	res.Trades = trade.Latest(matched, limit)
	log.Info("retrieval complete", "source", string(res.Source), "matched", len(matched), "returned", len(res.Trades))
	return res
}

func (r *Retriever) evaluate(ctx context.Context, candidate, traceID string) (out []trade.Trade, err error) {
	if candidate == "" {
		return nil, errEmptyCandidate
	}
	_, span := trace.StartSpan(ctx, "agent.evaluate", traceID, attribute.String("expression", candidate))
	defer func() { trace.End(span, err) }()

	filter, err := expr.CompileFilter(candidate)
	if err != nil {
		return nil, err
	}
	return filter.Select(r.store.Trades())
}
