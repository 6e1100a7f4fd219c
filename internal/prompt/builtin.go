package prompt

// Name 标识一个提示词模板。
type Name string

const (
	Classifier          Name = "classifier"
	FilterTranslator    Name = "filter_translator"
	AggregateTranslator Name = "aggregate_translator"
	Composer            Name = "composer"
)

// Names 是全部内置模板名，顺序固定。
var Names = []Name{Classifier, FilterTranslator, AggregateTranslator, Composer}

// ClassifierData 供意图分类模板使用。
type ClassifierData struct {
	Question string
}

// TranslatorData 供两个查询翻译模板使用，Schema 为 trade.SchemaDescription 渲染后的文本。
type TranslatorData struct {
	Schema   string
	Question string
}

// ComposerData 供回答生成模板使用。Persona 与 Context 已经是 JSON 文本。
type ComposerData struct {
	Persona  string
	Label    string
	Context  string
	Question string
}

var builtin = map[Name]string{
	Classifier: `Given the user's question, is the user asking for a list of specific trades or for a calculated number/statistic (like a sum, average, count, or breakdown)?
Respond with only the single word: 'retrieval' or 'aggregation'.

User Question: "{{.Question}}"
Classification:`,

	FilterTranslator: `{{.Schema}}

Write a single filter expression that selects the trades relevant to the user's question.
Rules:
- Use only the columns listed above, string/number/date literals, comparisons (== != < <= > >=), "in (...)", "contains", arithmetic (+ - * /), "and", "or", "not" and parentheses.
- Strings are single-quoted. Dates are written as 'YYYY-MM-DD'.
- Use "tags contains 'x'" to test a tag. "strategy" is the first tag and "style" is the second.
- Do not call functions, do not assign, do not import anything.
- Reply with the bare expression only. No explanation, no code fences.

Examples:
Question: show me my losing DOGE trades
Expression: asset == 'DOGE' and outcome == 'Loss'
Question: which sentiment trades did I sell?
Expression: style == 'Sentiment' and side == 'Sell'
Question: big trades since March 2024
Expression: price * volume > 10000 and date >= '2024-03-01'
Question: anything on BTC or ETH that broke out
Expression: asset in ('BTC', 'ETH') and tags contains 'breakout'

Question: {{.Question}}
Expression:`,

	AggregateTranslator: `{{.Schema}}

Write a single aggregation expression that computes the number or breakdown the user is asking for.
Rules:
- Reductions: count(), sum(V), mean(V) (alias avg), min(V), max(V), breakdown(COLUMN) for a frequency table, mode(COLUMN) for the most frequent value.
- Any reduction can be narrowed with "where": sum(volume where asset == 'BTC').
- Reductions can be combined with + - * / and number literals.
- A breakdown must be the whole expression.
- Strings are single-quoted. Dates are written as 'YYYY-MM-DD'.
- Reply with the bare expression only. No explanation, no code fences.

Examples:
Question: how many trades have I made?
Expression: count()
Question: what's my total DOGE volume?
Expression: sum(volume where asset == 'DOGE')
Question: average entry price on ETH buys
Expression: mean(price where asset == 'ETH' and side == 'Buy')
Question: how are my trades split by outcome?
Expression: breakdown(outcome)
Question: net notional of winners minus losers
Expression: sum(price * volume where outcome == 'Profit') - sum(price * volume where outcome == 'Loss')

Question: {{.Question}}
Expression:`,

	Composer: `You are a conversational AI acting as a trader. Your personality is defined by your Persona.
A user has asked a question. You have been given a piece of context data to help you answer.
Use the context data to form a direct, conversational, and concise answer in the first person ("I", "my").
Do not break character.

---
PERSONA:
{{.Persona}}
---
CONTEXT: {{.Label}}:
{{.Context}}
---
USER'S QUESTION:
"{{.Question}}"

YOUR CONVERSATIONAL AND CONCISE RESPONSE:`,
}
