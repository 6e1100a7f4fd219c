package persona

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradepersona/internal/trade"
)

type fixedHolding float64

func (f fixedHolding) HoldingDays(trade.Trade) (float64, bool) { return float64(f), true }

func mk(id, asset string, outcome trade.Outcome, tags ...string) trade.Trade {
	return trade.Trade{
		ID:      id,
		Asset:   asset,
		Side:    trade.SideBuy,
		Price:   decimal.NewFromInt(1),
		Volume:  decimal.NewFromInt(1),
		Date:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Outcome: outcome,
		Tags:    tags,
	}
}

func TestBuildEmptyReturnsNoDataMarker(t *testing.T) {
	p, err := Builder{}.Build(nil)
	require.NoError(t, err)
	assert.True(t, p.NoData)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"No trades to analyze."}`, string(raw))
}

func TestBuildRejectsMissingStyleTag(t *testing.T) {
	_, err := Builder{Holding: fixedHolding(3)}.Build([]trade.Trade{mk("T1", "BTC", trade.OutcomeProfit, "breakout")})
	assert.ErrorIs(t, err, trade.ErrInvalidTrade)
}

func TestBuildProfile(t *testing.T) {
	trades := []trade.Trade{
		mk("T1", "BTC", trade.OutcomeProfit, "breakout", "Technical"),
		mk("T2", "DOGE", trade.OutcomeLoss, "meme-trend-riding", "Sentiment"),
		mk("T3", "DOGE", trade.OutcomeLoss, "meme-trend-riding", "Sentiment"),
		mk("T4", "ETH", trade.OutcomeProfit, "value", "Risk-Management"),
	}
	p, err := Builder{Holding: fixedHolding(3)}.Build(trades)
	require.NoError(t, err)

	// asset risk mean (1+5+5+1)/4=3, +1.5 sentiment, -1 risk-management => 3.5
	assert.Equal(t, 3.5, p.RiskScore)
	assert.Equal(t, RiskMedium, p.RiskAppetite)
	assert.Equal(t, HoldingSwing, p.HoldingPeriod)
	assert.Equal(t, "Sentiment", p.DominantStyle)
	assert.Equal(t, "DOGE", p.FavoriteAsset)
	assert.Equal(t, "BTC", p.BestPerformingAsset)
	assert.Equal(t, 4, p.TotalTrades)
	assert.Equal(t, 50.0, p.WinRatePercentage)
	assert.Equal(t, map[string]float64{"Technical": 25, "Sentiment": 50, "Risk-Management": 25}, p.StyleDistribution)
	assert.Equal(t, map[string]float64{"breakout": 100, "meme-trend-riding": 0, "value": 100}, p.PerformanceByStrategy)
	assert.Equal(t, "A Medium-risk, Swing trader with a focus on Sentiment strategies.", p.SummaryLine)
}

func TestRiskBoundaries(t *testing.T) {
	assert.Equal(t, RiskLow, classifyRisk(2.49))
	assert.Equal(t, RiskMedium, classifyRisk(2.5))
	assert.Equal(t, RiskMedium, classifyRisk(4.0))
	assert.Equal(t, RiskHigh, classifyRisk(4.01))

	assert.Equal(t, HoldingIntraday, classifyHolding(1.99))
	assert.Equal(t, HoldingSwing, classifyHolding(2))
	assert.Equal(t, HoldingSwing, classifyHolding(14))
	assert.Equal(t, HoldingLongTerm, classifyHolding(14.5))
}

func TestLowWinRateRaisesRisk(t *testing.T) {
	trades := []trade.Trade{
		mk("T1", "BTC", trade.OutcomeLoss, "breakout", "Technical"),
		mk("T2", "ETH", trade.OutcomeLoss, "breakout", "Technical"),
	}
	p, err := Builder{Holding: fixedHolding(1)}.Build(trades)
	require.NoError(t, err)
	assert.Equal(t, 2.0, p.RiskScore)
	assert.Equal(t, RiskLow, p.RiskAppetite)
	assert.Equal(t, HoldingIntraday, p.HoldingPeriod)
	assert.Equal(t, "BTC", p.BestPerformingAsset)
}

func TestUnknownAssetUsesDefaultWeight(t *testing.T) {
	p, err := Builder{Holding: fixedHolding(30)}.Build([]trade.Trade{mk("T1", "AVAX", trade.OutcomeProfit, "x", "Value")})
	require.NoError(t, err)
	assert.Equal(t, 3.0, p.RiskScore)
	assert.Equal(t, HoldingLongTerm, p.HoldingPeriod)
}

func TestBuildIsDeterministic(t *testing.T) {
	trades := []trade.Trade{
		mk("T1", "BTC", trade.OutcomeProfit, "breakout", "Technical"),
		mk("T2", "SOL", trade.OutcomeLoss, "long-term", "Value"),
		mk("T3", "PEPE", trade.OutcomeNeutral, "meme", "Sentiment"),
	}
	b := Builder{Holding: DefaultHolding(42)}
	first, err := b.Build(trades)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := b.Build(trades)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSeededHoldingRanges(t *testing.T) {
	src := SeededHolding{Seed: 7}
	for _, id := range []string{"A", "B", "C", "D", "E", "F"} {
		short, ok := src.HoldingDays(mk(id, "BTC", trade.OutcomeProfit, "breakout", "Technical"))
		require.True(t, ok)
		assert.GreaterOrEqual(t, short, 1.0)
		assert.LessOrEqual(t, short, 6.0)

		long, _ := src.HoldingDays(mk(id, "BTC", trade.OutcomeProfit, "long-term", "Value"))
		assert.GreaterOrEqual(t, long, 30.0)
		assert.LessOrEqual(t, long, 179.0)

		again, _ := src.HoldingDays(mk(id, "BTC", trade.OutcomeProfit, "breakout", "Technical"))
		assert.Equal(t, short, again)
	}
}

func TestFieldHoldingWinsOverSeed(t *testing.T) {
	days := 20.0
	tr := mk("T1", "BTC", trade.OutcomeProfit, "breakout", "Technical")
	tr.HoldingDays = &days
	got, ok := DefaultHolding(1).HoldingDays(tr)
	require.True(t, ok)
	assert.Equal(t, 20.0, got)
}

func TestRenderChart(t *testing.T) {
	p, err := Builder{Holding: fixedHolding(3)}.Build([]trade.Trade{
		mk("T1", "BTC", trade.OutcomeProfit, "breakout", "Technical"),
	})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, RenderChart(&buf, p))
	assert.Contains(t, buf.String(), "Style distribution")

	assert.Error(t, RenderChart(&buf, Profile{NoData: true}))
}
