package persona

import (
	"hash/fnv"
	"math/rand/v2"

	"tradepersona/internal/trade"
)

// HoldingSource 为每笔交易提供持仓天数；第二个返回值为 false 表示该来源无法给出。
type HoldingSource interface {
	HoldingDays(t trade.Trade) (float64, bool)
}

// FieldHolding 读取交易记录上真实的 Holding Days 字段。
type FieldHolding struct{}

func (FieldHolding) HoldingDays(t trade.Trade) (float64, bool) {
	if t.HoldingDays == nil {
		return 0, false
	}
	return *t.HoldingDays, true
}

// SeededHolding 在数据缺少持仓时长时生成模拟值：
// 普通交易 1~6 天，带 long-term 标签的交易 30~179 天。
// 结果只取决于 Seed 与交易 ID，同样输入多次构建得到同样的画像。
type SeededHolding struct {
	Seed uint64
}

func (s SeededHolding) HoldingDays(t trade.Trade) (float64, bool) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(t.ID))
	rng := rand.New(rand.NewPCG(s.Seed, h.Sum64()))
	if t.HasTag("long-term") {
		return float64(30 + rng.IntN(150)), true
	}
	return float64(1 + rng.IntN(6)), true
}

// Chain 依次尝试各来源，返回第一个可用值。
type Chain []HoldingSource

func (c Chain) HoldingDays(t trade.Trade) (float64, bool) {
	for _, src := range c {
		if src == nil {
			continue
		}
		if days, ok := src.HoldingDays(t); ok {
			return days, true
		}
	}
	return 0, false
}

// DefaultHolding prefers the recorded duration and falls back to the seeded generator.
func DefaultHolding(seed uint64) HoldingSource {
	return Chain{FieldHolding{}, SeededHolding{Seed: seed}}
}
