package agent

import (
	"strings"

	"tradepersona/internal/trade"
)

type keywordRule[T comparable] struct {
	words []string
	value T
}

var outcomeRules = []keywordRule[trade.Outcome]{
	{words: []string{"loss", "lost"}, value: trade.OutcomeLoss},
	{words: []string{"profit", "win", "won"}, value: trade.OutcomeProfit},
	{words: []string{"neutral"}, value: trade.OutcomeNeutral},
}

var sideRules = []keywordRule[trade.Side]{
	{words: []string{"buy", "bought"}, value: trade.SideBuy},
	{words: []string{"sell", "sold"}, value: trade.SideSell},
}

// FallbackFilter 是不依赖模型的关键词检索：从全部交易出发，依次按资产、结果、方向、
// 标签收窄，每一步都只会缩小结果集。返回值未排序未截断。
func FallbackFilter(store *trade.Store, question string) []trade.Trade {
	q := strings.ToLower(question)
	out := store.Trades()

	var assets []string
	for _, asset := range store.Assets() {
		if asset != "" && strings.Contains(q, strings.ToLower(asset)) {
			assets = append(assets, asset)
		}
	}
	if len(assets) > 0 {
		out = keep(out, func(t trade.Trade) bool { return containsFold(assets, t.Asset) })
	}

	for _, rule := range outcomeRules {
		if mentionsAny(q, rule.words) {
			want := rule.value
			out = keep(out, func(t trade.Trade) bool { return t.Outcome == want })
		}
	}
	for _, rule := range sideRules {
		if mentionsAny(q, rule.words) {
			want := rule.value
			out = keep(out, func(t trade.Trade) bool { return t.Side == want })
		}
	}

	var tags []string
	for _, tag := range store.TagSet() {
		phrase := strings.ToLower(strings.ReplaceAll(tag, "-", " "))
		if phrase != "" && strings.Contains(q, phrase) {
			tags = append(tags, tag)
		}
	}
	if len(tags) > 0 {
		out = keep(out, func(t trade.Trade) bool {
			for _, tag := range tags {
				if t.HasTag(tag) {
					return true
				}
			}
			return false
		})
	}
	return out
}

func keep(trades []trade.Trade, pred func(trade.Trade) bool) []trade.Trade {
	out := trades[:0:0]
	for _, t := range trades {
		if pred(t) {
			out = append(out, t)
		}
	}
	return out
}

func mentionsAny(q string, words []string) bool {
	for _, w := range words {
		if strings.Contains(q, w) {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
