package expr

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"tradepersona/internal/trade"
)

func evalRow(n node, t trade.Trade) (Value, error) {
	switch n := n.(type) {
	case *litNode:
		return n.val, nil
	case *colNode:
		return n.col.get(t), nil
	case *unaryNode:
		v, err := evalRow(n.x, t)
		if err != nil {
			return Value{}, err
		}
		if n.op == tokNot {
			return boolValue(!v.Bool), nil
		}
		return numberValue(v.Num.Neg()), nil
	case *binaryNode:
		return evalRowBinary(n, t)
	case *inNode:
		v, err := evalRow(n.x, t)
		if err != nil {
			return Value{}, err
		}
		found := false
		for _, item := range n.items {
			if equalValues(v, item.(*litNode).val) {
				found = true
				break
			}
		}
		return boolValue(found != n.negate), nil
	}
	return Value{}, fmt.Errorf("%w: node at %d is not valid per row", ErrEval, n.position())
}

func evalRowBinary(n *binaryNode, t trade.Trade) (Value, error) {
	left, err := evalRow(n.l, t)
	if err != nil {
		return Value{}, err
	}
	switch n.op {
	case tokAnd:
		if !left.Bool {
			return boolValue(false), nil
		}
		return evalRow(n.r, t)
	case tokOr:
		if left.Bool {
			return boolValue(true), nil
		}
		return evalRow(n.r, t)
	}
	right, err := evalRow(n.r, t)
	if err != nil {
		return Value{}, err
	}
	switch n.op {
	case tokPlus, tokMinus, tokStar, tokSlash:
		return arith(n, left, right)
	case tokContains:
		needle := strings.ToLower(right.Str)
		if left.Kind == KindList {
			for _, item := range left.List {
				if strings.ToLower(item) == needle {
					return boolValue(true), nil
				}
			}
			return boolValue(false), nil
		}
		return boolValue(strings.Contains(strings.ToLower(left.Str), needle)), nil
	case tokEq:
		return boolValue(equalValues(left, right)), nil
	case tokNeq:
		return boolValue(!equalValues(left, right)), nil
	case tokLt:
		return boolValue(compareValues(left, right) < 0), nil
	case tokLte:
		return boolValue(compareValues(left, right) <= 0), nil
	case tokGt:
		return boolValue(compareValues(left, right) > 0), nil
	case tokGte:
		return boolValue(compareValues(left, right) >= 0), nil
	}
	return Value{}, fmt.Errorf("%w: operator %s at %d", ErrEval, n.op, n.pos)
}

func arith(n *binaryNode, a, b Value) (Value, error) {
	switch n.op {
	case tokPlus:
		return numberValue(a.Num.Add(b.Num)), nil
	case tokMinus:
		return numberValue(a.Num.Sub(b.Num)), nil
	case tokStar:
		return numberValue(a.Num.Mul(b.Num)), nil
	case tokSlash:
		if b.Num.IsZero() {
			return Value{}, fmt.Errorf("%w: division by zero at %d", ErrEval, n.pos)
		}
		return numberValue(a.Num.Div(b.Num)), nil
	}
	return Value{}, fmt.Errorf("%w: operator %s at %d", ErrEval, n.op, n.pos)
}

func evalAggregate(n node, rows []trade.Trade) (Value, error) {
	switch n := n.(type) {
	case *litNode:
		return n.val, nil
	case *unaryNode:
		v, err := evalAggregate(n.x, rows)
		if err != nil {
			return Value{}, err
		}
		return numberValue(v.Num.Neg()), nil
	case *binaryNode:
		left, err := evalAggregate(n.l, rows)
		if err != nil {
			return Value{}, err
		}
		right, err := evalAggregate(n.r, rows)
		if err != nil {
			return Value{}, err
		}
		return arith(n, left, right)
	case *callNode:
		return reduce(n, rows)
	}
	return Value{}, fmt.Errorf("%w: node at %d is not an aggregation", ErrEval, n.position())
}

func selectRows(where node, rows []trade.Trade) ([]trade.Trade, error) {
	if where == nil {
		return rows, nil
	}
	out := make([]trade.Trade, 0, len(rows))
	for _, t := range rows {
		v, err := evalRow(where, t)
		if err != nil {
			return nil, err
		}
		if v.Bool {
			out = append(out, t)
		}
	}
	return out, nil
}

func reduce(n *callNode, rows []trade.Trade) (Value, error) {
	selected, err := selectRows(n.where, rows)
	if err != nil {
		return Value{}, err
	}
	switch n.fn {
	case "count":
		return numberValue(decimal.NewFromInt(int64(len(selected)))), nil
	case "sum", "mean", "min", "max":
		return reduceNumeric(n, selected)
	case "breakdown", "mode":
		counts := make(map[string]int64)
		for _, t := range selected {
			v, err := evalRow(n.arg, t)
			if err != nil {
				return Value{}, err
			}
			if v.Kind == KindList {
				for _, item := range v.List {
					counts[item]++
				}
				continue
			}
			counts[v.Str]++
		}
		bd := Value{Kind: KindBreakdown, Breakdown: counts}
		if n.fn == "breakdown" {
			return bd, nil
		}
		keys := bd.BreakdownKeys()
		if len(keys) == 0 {
			return Value{}, fmt.Errorf("%w: mode of an empty selection", ErrEval)
		}
		return stringValue(keys[0]), nil
	}
	return Value{}, fmt.Errorf("%w: function %q", ErrEval, n.fn)
}

func reduceNumeric(n *callNode, rows []trade.Trade) (Value, error) {
	if len(rows) == 0 {
		if n.fn == "sum" {
			return numberValue(decimal.Zero), nil
		}
		return Value{}, fmt.Errorf("%w: %s of an empty selection", ErrEval, n.fn)
	}
	var acc decimal.Decimal
	for i, t := range rows {
		v, err := evalRow(n.arg, t)
		if err != nil {
			return Value{}, err
		}
		switch {
		case i == 0 && (n.fn == "min" || n.fn == "max"):
			acc = v.Num
		case n.fn == "min":
			acc = decimal.Min(acc, v.Num)
		case n.fn == "max":
			acc = decimal.Max(acc, v.Num)
		default:
			acc = acc.Add(v.Num)
		}
	}
	if n.fn == "mean" {
		acc = acc.Div(decimal.NewFromInt(int64(len(rows))))
	}
	return numberValue(acc), nil
}
