package agent

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"tradepersona/internal/expr"
	"tradepersona/internal/logger"
	"tradepersona/internal/trace"
	"tradepersona/internal/trade"
)

// CalcFailedMessage 是聚合表达式执行失败时交给回答生成的固定文本。
const CalcFailedMessage = "Error: I couldn't calculate that."

// ResultKind 是聚合结果的类型。Absent 表示没有候选表达式，与算出 0 不同。
type ResultKind string

const (
	ResultAbsent    ResultKind = "absent"
	ResultNumber    ResultKind = "number"
	ResultBreakdown ResultKind = "breakdown"
	ResultText      ResultKind = "text"
	ResultFailed    ResultKind = "failed"
)

type AggregateResult struct {
	Kind       ResultKind
	Number     decimal.Decimal
	Breakdown  map[string]int64
	Text       string
	Expression string
}

// ContextValue 返回交给回答生成的上下文值；Absent 时为 nil。
func (r AggregateResult) ContextValue() any {
	switch r.Kind {
	case ResultNumber:
		return json.Number(r.Number.String())
	case ResultBreakdown:
		return r.Breakdown
	case ResultText, ResultFailed:
		return r.Text
	default:
		return nil
	}
}

// Aggregator 计算统计类问题。没有关键词回落：失败就是失败。
type Aggregator struct {
	store      *trade.Store
	translator *Translator
}

func NewAggregator(store *trade.Store, translator *Translator) *Aggregator {
	return &Aggregator{store: store, translator: translator}
}

// Aggregate 不返回错误；执行失败时 Kind 为 ResultFailed，Text 为 CalcFailedMessage。
func (a *Aggregator) Aggregate(ctx context.Context, question, traceID string) AggregateResult {
	log := logger.Trace(traceID)
	candidate := a.translator.Translate(ctx, question, traceID)
	if candidate == "" {
		log.Warn("aggregation expression was empty, returning absent result")
		return AggregateResult{Kind: ResultAbsent}
	}

	_, span := trace.StartSpan(ctx, "agent.evaluate", traceID, attribute.String("expression", candidate))
	v, err := a.evaluate(candidate)
	trace.End(span, err)
	if err != nil {
		log.Error("aggregation failed", "expression", candidate, "error", err)
		return AggregateResult{Kind: ResultFailed, Text: CalcFailedMessage, Expression: candidate}
	}

	res := AggregateResult{Expression: candidate}
	switch v.Kind {
	case expr.KindNumber:
		res.Kind, res.Number = ResultNumber, v.Num
	case expr.KindBreakdown:
		res.Kind, res.Breakdown = ResultBreakdown, v.Breakdown
	default:
		res.Kind, res.Text = ResultText, v.Str
	}
	log.Info("aggregation complete", "expression", candidate, "kind", string(res.Kind))
	return res
}

func (a *Aggregator) evaluate(candidate string) (expr.Value, error) {
	agg, err := expr.CompileAggregate(candidate)
	if err != nil {
		return expr.Value{}, err
	}
	return agg.Eval(a.store.Trades())
}
