package expr

import (
	"strings"

	"tradepersona/internal/trade"
)

type node interface {
	position() int
}

type litNode struct {
	pos int
	val Value
}

type colNode struct {
	pos  int
	name string
	col  column
}

// tableNode 代表整张表（trades / df），只允许出现在 count(...) 中。
type tableNode struct {
	pos  int
	name string
}

type unaryNode struct {
	pos int
	op  tokenKind
	x   node
}

type binaryNode struct {
	pos  int
	op   tokenKind
	l, r node
}

type inNode struct {
	pos    int
	x      node
	items  []node
	negate bool
}

type callNode struct {
	pos   int
	fn    string
	arg   node
	where node
}

func (n *litNode) position() int    { return n.pos }
func (n *colNode) position() int    { return n.pos }
func (n *tableNode) position() int  { return n.pos }
func (n *unaryNode) position() int  { return n.pos }
func (n *binaryNode) position() int { return n.pos }
func (n *inNode) position() int     { return n.pos }
func (n *callNode) position() int   { return n.pos }

type column struct {
	name string
	kind Kind
	get  func(trade.Trade) Value
}

var columnSet = []column{
	{name: "id", kind: KindString, get: func(t trade.Trade) Value { return stringValue(t.ID) }},
	{name: "asset", kind: KindString, get: func(t trade.Trade) Value { return stringValue(t.Asset) }},
	{name: "side", kind: KindString, get: func(t trade.Trade) Value { return stringValue(string(t.Side)) }},
	{name: "price", kind: KindNumber, get: func(t trade.Trade) Value { return numberValue(t.Price) }},
	{name: "volume", kind: KindNumber, get: func(t trade.Trade) Value { return numberValue(t.Volume) }},
	{name: "date", kind: KindTime, get: func(t trade.Trade) Value { return timeValue(t.Date) }},
	{name: "outcome", kind: KindString, get: func(t trade.Trade) Value { return stringValue(string(t.Outcome)) }},
	{name: "tags", kind: KindList, get: func(t trade.Trade) Value { return listValue(t.Tags) }},
	{name: "strategy", kind: KindString, get: func(t trade.Trade) Value { return stringValue(t.Strategy()) }},
	{name: "style", kind: KindString, get: func(t trade.Trade) Value { return stringValue(t.Style()) }},
}

var columnAliases = map[string]string{
	"trade_id":  "id",
	"symbol":    "asset",
	"ticker":    "asset",
	"buy_sell":  "side",
	"action":    "side",
	"qty":       "volume",
	"quantity":  "volume",
	"size":      "volume",
	"timestamp": "date",
	"time":      "date",
	"result":    "outcome",
	"tag":       "tags",
}

var tableNames = map[string]bool{"trades": true, "df": true}

func lookupColumn(name string) (column, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := columnAliases[key]; ok {
		key = alias
	}
	for _, c := range columnSet {
		if c.name == key {
			return c, true
		}
	}
	return column{}, false
}

// 归约函数白名单，别名映射到规范名。
var reductions = map[string]string{
	"count":        "count",
	"len":          "count",
	"sum":          "sum",
	"total":        "sum",
	"mean":         "mean",
	"avg":          "mean",
	"average":      "mean",
	"min":          "min",
	"max":          "max",
	"breakdown":    "breakdown",
	"value_counts": "breakdown",
	"mode":         "mode",
}
