package tradesource

import (
	"context"
	"fmt"

	"tradepersona/internal/store"
	"tradepersona/internal/store/model"
	"tradepersona/internal/trade"
)

// Import 在单个事务里把 trades 写入目标库，trade_id 冲突时覆盖。
func Import(ctx context.Context, dst store.Store, trades []trade.Trade) (int, error) {
	if _, err := trade.NewStore(trades); err != nil {
		return 0, err
	}
	rows := make([]model.TradeModel, 0, len(trades))
	for _, t := range trades {
		m, err := model.FromTrade(t)
		if err != nil {
			return 0, fmt.Errorf("convert trade %s: %w", t.ID, err)
		}
		rows = append(rows, m)
	}
	uow, err := dst.Begin(ctx)
	if err != nil {
		return 0, err
	}
	if err := uow.Trades().Upsert(ctx, rows); err != nil {
		_ = uow.Rollback()
		return 0, err
	}
	if err := uow.Commit(); err != nil {
		return 0, err
	}
	return len(rows), nil
}
