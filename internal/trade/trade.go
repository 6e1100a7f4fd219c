package trade

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Side 成交方向。
type Side string

const (
	SideBuy  Side = "Buy"
	SideSell Side = "Sell"
)

// Outcome 交易结果。
type Outcome string

const (
	OutcomeProfit  Outcome = "Profit"
	OutcomeLoss    Outcome = "Loss"
	OutcomeNeutral Outcome = "Neutral"
)

// ErrInvalidTrade 表示交易记录不满足数据约束（加载阶段直接失败，不做截断修复）。
var ErrInvalidTrade = errors.New("invalid trade")

// Trade 是一笔历史成交。字段名沿用原始数据文件的列名。
type Trade struct {
	ID      string          `json:"Trade ID"`
	Asset   string          `json:"Asset"`
	Side    Side            `json:"Buy/Sell"`
	Price   decimal.Decimal `json:"Price"`
	Volume  decimal.Decimal `json:"Volume"`
	Date    time.Time       `json:"Date"`
	Outcome Outcome         `json:"Outcome"`
	// Tags[0] 为主策略，Tags[1] 为风格。
	Tags []string `json:"Tags"`
	// HoldingDays 可选：真实持仓天数，缺失时由 persona 的 HoldingSource 补齐。
	HoldingDays *float64 `json:"Holding Days,omitempty"`
}

// Strategy returns the primary strategy tag.
func (t Trade) Strategy() string {
	if len(t.Tags) == 0 {
		return ""
	}
	return t.Tags[0]
}

// Style returns the style tag.
func (t Trade) Style() string {
	if len(t.Tags) < 2 {
		return ""
	}
	return t.Tags[1]
}

// HasTag reports whether the trade carries tag, ignoring case.
func (t Trade) HasTag(tag string) bool {
	for _, v := range t.Tags {
		if strings.EqualFold(v, tag) {
			return true
		}
	}
	return false
}

// Validate 校验单条交易记录。
func (t Trade) Validate() error {
	id := strings.TrimSpace(t.ID)
	if id == "" {
		return fmt.Errorf("%w: missing trade id", ErrInvalidTrade)
	}
	if strings.TrimSpace(t.Asset) == "" {
		return fmt.Errorf("%w: trade %s missing asset", ErrInvalidTrade, id)
	}
	if !t.Side.Valid() {
		return fmt.Errorf("%w: trade %s has unknown side %q", ErrInvalidTrade, id, t.Side)
	}
	if !t.Outcome.Valid() {
		return fmt.Errorf("%w: trade %s has unknown outcome %q", ErrInvalidTrade, id, t.Outcome)
	}
	if !t.Price.IsPositive() {
		return fmt.Errorf("%w: trade %s price must be positive", ErrInvalidTrade, id)
	}
	if !t.Volume.IsPositive() {
		return fmt.Errorf("%w: trade %s volume must be positive", ErrInvalidTrade, id)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: trade %s missing date", ErrInvalidTrade, id)
	}
	if len(t.Tags) < 2 {
		return fmt.Errorf("%w: trade %s needs at least 2 tags (strategy, style), got %d", ErrInvalidTrade, id, len(t.Tags))
	}
	if t.HoldingDays != nil && *t.HoldingDays < 0 {
		return fmt.Errorf("%w: trade %s holding days must be >= 0", ErrInvalidTrade, id)
	}
	return nil
}

func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeProfit, OutcomeLoss, OutcomeNeutral:
		return true
	default:
		return false
	}
}

// ParseSide 大小写不敏感地解析方向。
func ParseSide(raw string) (Side, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "buy":
		return SideBuy, true
	case "sell":
		return SideSell, true
	default:
		return "", false
	}
}

// ParseOutcome 大小写不敏感地解析结果。
func ParseOutcome(raw string) (Outcome, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "profit":
		return OutcomeProfit, true
	case "loss":
		return OutcomeLoss, true
	case "neutral":
		return OutcomeNeutral, true
	default:
		return "", false
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate accepts RFC3339 and the naive layouts seen in trade exports.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// UnmarshalJSON 允许 Date 使用不带时区的日期格式。
func (t *Trade) UnmarshalJSON(data []byte) error {
	type alias Trade
	aux := struct {
		*alias
		Date string `json:"Date"`
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if strings.TrimSpace(aux.Date) == "" {
		t.Date = time.Time{}
		return nil
	}
	ts, err := ParseDate(aux.Date)
	if err != nil {
		return fmt.Errorf("trade %s: %w", t.ID, err)
	}
	t.Date = ts
	return nil
}
