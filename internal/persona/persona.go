// Package persona 根据全部交易推导交易者画像（风险偏好、持仓周期、风格分布等）。
package persona

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"tradepersona/internal/logger"
	"tradepersona/internal/trade"
)

type RiskAppetite string

const (
	RiskLow    RiskAppetite = "Low"
	RiskMedium RiskAppetite = "Medium"
	RiskHigh   RiskAppetite = "High"
)

type HoldingPeriod string

const (
	HoldingIntraday HoldingPeriod = "Intraday"
	HoldingSwing    HoldingPeriod = "Swing"
	HoldingLongTerm HoldingPeriod = "Long-term"
)

// NoDataMessage 是空交易集合时的显式标记。
const NoDataMessage = "No trades to analyze."

const defaultAssetRisk = 3.0

var assetRisk = map[string]float64{
	"BTC": 1, "ETH": 1,
	"ADA": 2, "MATIC": 2, "LINK": 2,
	"XRP":  3,
	"SOL":  4,
	"DOGE": 5, "PEPE": 5,
}

// Profile 是只读的画像快照。
type Profile struct {
	NoData bool `json:"-"`

	SummaryLine           string             `json:"summary_line"`
	RiskAppetite          RiskAppetite       `json:"risk_appetite"`
	RiskScore             float64            `json:"risk_score"`
	HoldingPeriod         HoldingPeriod      `json:"holding_period"`
	AvgHoldingDays        float64            `json:"avg_holding_days"`
	DominantStyle         string             `json:"dominant_style"`
	StyleDistribution     map[string]float64 `json:"style_distribution_percent"`
	FavoriteAsset         string             `json:"favorite_asset"`
	BestPerformingAsset   string             `json:"best_performing_asset"`
	TotalTrades           int                `json:"total_trades"`
	WinRatePercentage     float64            `json:"win_rate_percentage"`
	PerformanceByStrategy map[string]float64 `json:"performance_by_strategy_percent"`
	StrategyDistribution  map[string]float64 `json:"strategy_distribution_percent"`
}

// MarshalJSON 对空画像输出 {"error": "..."}，与正常画像区分。
func (p Profile) MarshalJSON() ([]byte, error) {
	if p.NoData {
		return json.Marshal(map[string]string{"error": NoDataMessage})
	}
	type alias Profile
	return json.Marshal(alias(p))
}

// Builder 构建画像；Holding 为空时使用 DefaultHolding(0)。
type Builder struct {
	Holding HoldingSource
}

// Build 是输入的纯函数：相同交易与相同 HoldingSource 得到相同画像。
func (b Builder) Build(trades []trade.Trade) (Profile, error) {
	if len(trades) == 0 {
		logger.Warnf("persona: no trades provided, returning no-data marker")
		return Profile{NoData: true}, nil
	}
	holding := b.Holding
	if holding == nil {
		holding = DefaultHolding(0)
	}

	n := len(trades)
	styles := make(map[string]int)
	strategies := make(map[string]int)
	strategyWins := make(map[string]int)
	assets := make(map[string]int)
	assetWins := make(map[string]int)
	holdDays := make([]float64, 0, n)
	risks := make([]float64, 0, n)
	wins := 0
	for _, t := range trades {
		if len(t.Tags) < 2 {
			return Profile{}, fmt.Errorf("%w: trade %s needs strategy and style tags", trade.ErrInvalidTrade, t.ID)
		}
		days, ok := holding.HoldingDays(t)
		if !ok {
			return Profile{}, fmt.Errorf("persona: no holding duration for trade %s", t.ID)
		}
		holdDays = append(holdDays, days)
		if w, ok := assetRisk[t.Asset]; ok {
			risks = append(risks, w)
		} else {
			risks = append(risks, defaultAssetRisk)
		}
		styles[t.Style()]++
		strategies[t.Strategy()]++
		assets[t.Asset]++
		if t.Outcome == trade.OutcomeProfit {
			wins++
			strategyWins[t.Strategy()]++
			assetWins[t.Asset]++
		}
	}

	avgHold := stat.Mean(holdDays, nil)
	period := classifyHolding(avgHold)

	winRate := float64(wins) / float64(n)
	score := stat.Mean(risks, nil)
	if styles["Sentiment"] > 0 {
		score += 1.5
	}
	if styles["Risk-Management"] > 0 {
		score -= 1.0
	}
	if winRate < 0.4 {
		score++
	}
	risk := classifyRisk(score)
	logger.Infof("persona: holding=%s (avg %.2f days) risk=%s (score %.2f)", period, avgHold, risk, score)

	dominant := mode(styles)
	perf := make(map[string]float64, len(strategies))
	for name, total := range strategies {
		perf[name] = round2(float64(strategyWins[name]) / float64(total) * 100)
	}

	return Profile{
		SummaryLine:           fmt.Sprintf("A %s-risk, %s trader with a focus on %s strategies.", risk, period, dominant),
		RiskAppetite:          risk,
		RiskScore:             round2(score),
		HoldingPeriod:         period,
		AvgHoldingDays:        round2(avgHold),
		DominantStyle:         dominant,
		StyleDistribution:     distribution(styles, n),
		FavoriteAsset:         mode(assets),
		BestPerformingAsset:   bestRate(assets, assetWins),
		TotalTrades:           n,
		WinRatePercentage:     round2(winRate * 100),
		PerformanceByStrategy: perf,
		StrategyDistribution:  distribution(strategies, n),
	}, nil
}

func classifyHolding(avgDays float64) HoldingPeriod {
	switch {
	case avgDays < 2:
		return HoldingIntraday
	case avgDays <= 14:
		return HoldingSwing
	default:
		return HoldingLongTerm
	}
}

func classifyRisk(score float64) RiskAppetite {
	switch {
	case score < 2.5:
		return RiskLow
	case score <= 4.0:
		return RiskMedium
	default:
		return RiskHigh
	}
}

func distribution(counts map[string]int, total int) map[string]float64 {
	out := make(map[string]float64, len(counts))
	for k, c := range counts {
		out[k] = round2(float64(c) / float64(total) * 100)
	}
	return out
}

// mode 返回出现次数最多的键，并列时取字典序最小者。
func mode(counts map[string]int) string {
	best, bestCount := "", -1
	for _, k := range sortedKeys(counts) {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best
}

func bestRate(totals, wins map[string]int) string {
	best, bestRate := "N/A", -1.0
	for _, k := range sortedKeys(totals) {
		rate := float64(wins[k]) / float64(totals[k])
		if rate > bestRate {
			best, bestRate = k, rate
		}
	}
	return best
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
