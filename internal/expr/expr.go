// Package expr 实现交易查询使用的受限表达式语言。
//
// 模型生成的表达式一律视为不可信数据：只经过白名单语法解析，
// 求值器只能读取交易字段并调用固定的归约函数，无法访问文件、网络或修改数据。
package expr

import (
	"errors"
	"fmt"
	"strings"

	"tradepersona/internal/trade"
)

const (
	MaxLength = 2048
	MaxDepth  = 32
	MaxTokens = 512
)

var (
	ErrSyntax = errors.New("expression rejected")
	ErrEval   = errors.New("expression evaluation failed")
)

// Filter 是编译后的行过滤表达式。
type Filter struct {
	src  string
	root node
}

// Aggregate 是编译后的聚合表达式。
type Aggregate struct {
	src  string
	root node
}

// CompileFilter 解析并检查一个布尔过滤表达式。
func CompileFilter(src string) (*Filter, error) {
	root, err := compile(src)
	if err != nil {
		return nil, err
	}
	kind, err := check(root, scopeRow)
	if err != nil {
		return nil, err
	}
	if kind != KindBool {
		return nil, fmt.Errorf("%w: filter must evaluate to true/false, got %s", ErrSyntax, kind)
	}
	return &Filter{src: strings.TrimSpace(src), root: root}, nil
}

// CompileAggregate 解析并检查一个归约为单值的表达式。
func CompileAggregate(src string) (*Aggregate, error) {
	root, err := compile(src)
	if err != nil {
		return nil, err
	}
	kind, err := check(root, scopeAggregate)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindNumber, KindString, KindBreakdown:
	default:
		return nil, fmt.Errorf("%w: aggregation must produce a number, text or breakdown, got %s", ErrSyntax, kind)
	}
	return &Aggregate{src: strings.TrimSpace(src), root: root}, nil
}

func compile(src string) (node, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrSyntax)
	}
	if len(src) > MaxLength {
		return nil, fmt.Errorf("%w: expression longer than %d characters", ErrSyntax, MaxLength)
	}
	return parse(src)
}

func (f *Filter) String() string { return f.src }

// Match evaluates the filter against one trade.
func (f *Filter) Match(t trade.Trade) (ok bool, err error) {
	defer recoverEval(&err)
	v, err := evalRow(f.root, t)
	if err != nil {
		return false, err
	}
	return v.Bool, nil
}

// Select 返回满足过滤条件的交易，保持输入顺序。
func (f *Filter) Select(trades []trade.Trade) ([]trade.Trade, error) {
	out := make([]trade.Trade, 0, len(trades))
	for _, t := range trades {
		ok, err := f.Match(t)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (a *Aggregate) String() string { return a.src }

// Eval 对全部交易求值。
func (a *Aggregate) Eval(trades []trade.Trade) (v Value, err error) {
	defer recoverEval(&err)
	return evalAggregate(a.root, trades)
}

func recoverEval(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrEval, r)
	}
}
