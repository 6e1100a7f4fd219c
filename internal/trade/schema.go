package trade

import (
	"fmt"
	"strings"
)

// ColumnType 是查询语言可见的列类型。
type ColumnType string

const (
	ColumnString   ColumnType = "string"
	ColumnNumber   ColumnType = "number"
	ColumnDateTime ColumnType = "datetime"
	ColumnList     ColumnType = "list<string>"
)

// Column 描述一个可查询列。
type Column struct {
	Name        string     `json:"name"`
	Type        ColumnType `json:"type"`
	Description string     `json:"description"`
}

// SchemaDescription 在加载阶段生成一次，传给两个翻译器用于构建提示词。
type SchemaDescription struct {
	Columns []Column `json:"columns"`
}

// DescribeSchema returns the fixed column set exposed to the query language.
func DescribeSchema() SchemaDescription {
	return SchemaDescription{Columns: []Column{
		{Name: "id", Type: ColumnString, Description: "unique trade identifier"},
		{Name: "asset", Type: ColumnString, Description: "asset ticker, e.g. BTC, ETH, DOGE"},
		{Name: "side", Type: ColumnString, Description: "'Buy' or 'Sell'"},
		{Name: "price", Type: ColumnNumber, Description: "execution price"},
		{Name: "volume", Type: ColumnNumber, Description: "traded volume"},
		{Name: "date", Type: ColumnDateTime, Description: "execution time, compare with 'YYYY-MM-DD' literals"},
		{Name: "outcome", Type: ColumnString, Description: "'Profit', 'Loss' or 'Neutral'"},
		{Name: "tags", Type: ColumnList, Description: "tag list; tags[0] is the strategy, tags[1] the style"},
		{Name: "strategy", Type: ColumnString, Description: "primary strategy (first tag)"},
		{Name: "style", Type: ColumnString, Description: "trading style (second tag)"},
	}}
}

// Column looks a column up by name, ignoring case.
func (s SchemaDescription) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

// Prompt 渲染为提示词片段。
func (s SchemaDescription) Prompt() string {
	var b strings.Builder
	b.WriteString("You are querying a table of trades named `trades` with the following columns:\n")
	for _, c := range s.Columns {
		fmt.Fprintf(&b, "- `%s` (Type: %s): %s\n", c.Name, c.Type, c.Description)
	}
	return b.String()
}
