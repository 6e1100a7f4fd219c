package sqlite

import (
	"context"
	"time"

	"tradepersona/internal/store/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type tradeRepository struct {
	db *gorm.DB
}

func NewTradeRepo(db *gorm.DB) *tradeRepository {
	return &tradeRepository{db: db}
}

// Upsert 以 trade_id 为键插入或覆盖。
func (r *tradeRepository) Upsert(ctx context.Context, trades []model.TradeModel) error {
	if len(trades) == 0 {
		return nil
	}
	now := time.Now().Unix()
	for i := range trades {
		if trades[i].CreatedAtUnix == 0 {
			trades[i].CreatedAtUnix = now
		}
		trades[i].UpdatedAtUnix = now
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "trade_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"asset", "side", "price", "volume", "traded_at", "outcome", "tags", "holding_days", "updated_at",
		}),
	}).CreateInBatches(trades, 200).Error
}

func (r *tradeRepository) ListAll(ctx context.Context) ([]model.TradeModel, error) {
	var rows []model.TradeModel
	if err := r.db.WithContext(ctx).Order("traded_at ASC, trade_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *tradeRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.TradeModel{}).Count(&n).Error
	return n, err
}
