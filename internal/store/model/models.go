package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"tradepersona/internal/trade"
)

// TradeModel 是 trades 表的一行。Tags 以 JSON 数组存储，顺序有意义（策略、风格）。
type TradeModel struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	TradeID     string          `gorm:"column:trade_id;uniqueIndex"`
	Asset       string          `gorm:"column:asset;index"`
	Side        string          `gorm:"column:side"`
	Price       decimal.Decimal `gorm:"column:price;type:TEXT"`
	Volume      decimal.Decimal `gorm:"column:volume;type:TEXT"`
	TradedAt    time.Time       `gorm:"column:traded_at;index"`
	Outcome     string          `gorm:"column:outcome"`
	Tags        datatypes.JSON  `gorm:"column:tags;type:TEXT"`
	HoldingDays *float64        `gorm:"column:holding_days"`

	CreatedAtUnix int64 `gorm:"column:created_at"`
	UpdatedAtUnix int64 `gorm:"column:updated_at"`
}

func (TradeModel) TableName() string { return "trades" }

// FromTrade 把领域对象转换为表行。
func FromTrade(t trade.Trade) (TradeModel, error) {
	tags, err := json.Marshal(t.Tags)
	if err != nil {
		return TradeModel{}, err
	}
	return TradeModel{
		TradeID:     t.ID,
		Asset:       t.Asset,
		Side:        string(t.Side),
		Price:       t.Price,
		Volume:      t.Volume,
		TradedAt:    t.Date,
		Outcome:     string(t.Outcome),
		Tags:        datatypes.JSON(tags),
		HoldingDays: t.HoldingDays,
	}, nil
}

// ToTrade 把表行还原为领域对象；side/outcome 非法时返回 trade.ErrInvalidTrade。
func (m TradeModel) ToTrade() (trade.Trade, error) {
	side, ok := trade.ParseSide(m.Side)
	if !ok {
		return trade.Trade{}, fmt.Errorf("%w: trade %s has side %q", trade.ErrInvalidTrade, m.TradeID, m.Side)
	}
	outcome, ok := trade.ParseOutcome(m.Outcome)
	if !ok {
		return trade.Trade{}, fmt.Errorf("%w: trade %s has outcome %q", trade.ErrInvalidTrade, m.TradeID, m.Outcome)
	}
	var tags []string
	if len(m.Tags) > 0 {
		if err := json.Unmarshal(m.Tags, &tags); err != nil {
			return trade.Trade{}, fmt.Errorf("%w: trade %s tags: %v", trade.ErrInvalidTrade, m.TradeID, err)
		}
	}
	return trade.Trade{
		ID:          m.TradeID,
		Asset:       m.Asset,
		Side:        side,
		Price:       m.Price,
		Volume:      m.Volume,
		Date:        m.TradedAt,
		Outcome:     outcome,
		Tags:        tags,
		HoldingDays: m.HoldingDays,
	}, nil
}
