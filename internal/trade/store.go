package trade

import (
	"fmt"
	"sort"
	"strings"
)

// Store 持有全部交易记录，构建后只读；可在并发请求之间共享而无需加锁。
type Store struct {
	trades []Trade
	assets []string
	tags   []string
	schema SchemaDescription
}

// NewStore 校验并冻结交易集合。任何一条记录非法都会导致构建失败。
func NewStore(trades []Trade) (*Store, error) {
	seen := make(map[string]struct{}, len(trades))
	frozen := make([]Trade, 0, len(trades))
	assetSet := make(map[string]struct{})
	tagSet := make(map[string]struct{})
	for i, t := range trades {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("trade #%d: %w", i+1, err)
		}
		id := strings.TrimSpace(t.ID)
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate trade id %s", ErrInvalidTrade, id)
		}
		seen[id] = struct{}{}
		frozen = append(frozen, cloneTrade(t))
		assetSet[t.Asset] = struct{}{}
		for _, tag := range t.Tags {
			tagSet[tag] = struct{}{}
		}
	}
	return &Store{
		trades: frozen,
		assets: sortedKeys(assetSet),
		tags:   sortedKeys(tagSet),
		schema: DescribeSchema(),
	}, nil
}

// Len returns the number of trades.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.trades)
}

// Trades 返回副本，调用方修改不会影响 Store。
func (s *Store) Trades() []Trade {
	if s == nil {
		return nil
	}
	out := make([]Trade, len(s.trades))
	for i, t := range s.trades {
		out[i] = cloneTrade(t)
	}
	return out
}

// Assets returns the distinct asset symbols, sorted.
func (s *Store) Assets() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.assets...)
}

// TagSet returns every distinct tag value, sorted.
func (s *Store) TagSet() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.tags...)
}

// Schema returns the schema description computed at load time.
func (s *Store) Schema() SchemaDescription {
	if s == nil {
		return SchemaDescription{}
	}
	return s.schema
}

// SortByDate 按时间升序稳定排序（就地）。
func SortByDate(trades []Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Date.Before(trades[j].Date)
	})
}

// Latest 按时间升序排序后保留最近的 limit 条。
func Latest(trades []Trade, limit int) []Trade {
	out := make([]Trade, len(trades))
	copy(out, trades)
	SortByDate(out)
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

func cloneTrade(t Trade) Trade {
	t.Tags = append([]string(nil), t.Tags...)
	if t.HoldingDays != nil {
		v := *t.HoldingDays
		t.HoldingDays = &v
	}
	return t
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
