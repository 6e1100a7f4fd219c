package expr

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind 是表达式值的类型。
type Kind int

const (
	KindInvalid Kind = iota
	KindNumber
	KindString
	KindBool
	KindTime
	KindList
	KindBreakdown
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindTime:
		return "datetime"
	case KindList:
		return "list"
	case KindBreakdown:
		return "breakdown"
	default:
		return "invalid"
	}
}

// Value 是解释器内部与对外的统一值载体。
type Value struct {
	Kind      Kind
	Num       decimal.Decimal
	Str       string
	Bool      bool
	Time      time.Time
	List      []string
	Breakdown map[string]int64
}

func numberValue(d decimal.Decimal) Value { return Value{Kind: KindNumber, Num: d} }
func stringValue(s string) Value          { return Value{Kind: KindString, Str: s} }
func boolValue(b bool) Value              { return Value{Kind: KindBool, Bool: b} }
func timeValue(t time.Time) Value         { return Value{Kind: KindTime, Time: t} }
func listValue(l []string) Value          { return Value{Kind: KindList, List: l} }

// BreakdownKeys returns breakdown keys ordered by count desc, then name.
func (v Value) BreakdownKeys() []string {
	keys := make([]string, 0, len(v.Breakdown))
	for k := range v.Breakdown {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := v.Breakdown[keys[i]], v.Breakdown[keys[j]]
		if ci != cj {
			return ci > cj
		}
		return keys[i] < keys[j]
	})
	return keys
}

func equalValues(a, b Value) bool {
	switch a.Kind {
	case KindNumber:
		return a.Num.Equal(b.Num)
	case KindString:
		return strings.EqualFold(a.Str, b.Str)
	case KindBool:
		return a.Bool == b.Bool
	case KindTime:
		return a.Time.Equal(b.Time)
	default:
		return false
	}
}

func compareValues(a, b Value) int {
	switch a.Kind {
	case KindNumber:
		return a.Num.Cmp(b.Num)
	case KindTime:
		return a.Time.Compare(b.Time)
	default:
		return 0
	}
}
