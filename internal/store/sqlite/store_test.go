package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradepersona/internal/store/model"
	"tradepersona/internal/trade"
)

func row(t *testing.T, id, asset string, day int, outcome trade.Outcome) model.TradeModel {
	t.Helper()
	m, err := model.FromTrade(trade.Trade{
		ID:      id,
		Asset:   asset,
		Side:    trade.SideBuy,
		Price:   decimal.RequireFromString("0.123456789"),
		Volume:  decimal.NewFromInt(10),
		Date:    time.Date(2024, 2, day, 9, 30, 0, 0, time.UTC),
		Outcome: outcome,
		Tags:    []string{"breakout", "Technical"},
	})
	require.NoError(t, err)
	return m
}

func TestTradeRepoUpsertAndList(t *testing.T) {
	s, err := NewSqliteStore(filepath.Join(t.TempDir(), "db", "trades.db"))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	uow, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Trades().Upsert(ctx, []model.TradeModel{
		row(t, "T2", "ETH", 2, trade.OutcomeLoss),
		row(t, "T1", "BTC", 1, trade.OutcomeProfit),
	}))
	require.NoError(t, uow.Commit())

	// 同一 trade_id 再写一次应覆盖而不是新增
	require.NoError(t, s.Trades().Upsert(ctx, []model.TradeModel{row(t, "T2", "ETH", 3, trade.OutcomeProfit)}))

	n, err := s.Trades().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	rows, err := s.Trades().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "T1", rows[0].TradeID)

	got, err := rows[1].ToTrade()
	require.NoError(t, err)
	assert.Equal(t, trade.OutcomeProfit, got.Outcome)
	assert.Equal(t, []string{"breakout", "Technical"}, got.Tags)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("0.123456789")))
	assert.Equal(t, 3, got.Date.UTC().Day())
}

func TestRollbackDiscardsWrites(t *testing.T) {
	s, err := NewSqliteStore(filepath.Join(t.TempDir(), "trades.db"))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	uow, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Trades().Upsert(ctx, []model.TradeModel{row(t, "T1", "BTC", 1, trade.OutcomeProfit)}))
	require.NoError(t, uow.Rollback())

	n, err := s.Trades().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestToTradeRejectsBadEnums(t *testing.T) {
	m := model.TradeModel{TradeID: "X", Side: "Hold", Outcome: "Profit"}
	_, err := m.ToTrade()
	assert.ErrorIs(t, err, trade.ErrInvalidTrade)

	m = model.TradeModel{TradeID: "X", Side: "Buy", Outcome: "Moon"}
	_, err = m.ToTrade()
	assert.ErrorIs(t, err, trade.ErrInvalidTrade)
}

func TestNewSqliteStoreRequiresPath(t *testing.T) {
	_, err := NewSqliteStore("  ")
	assert.Error(t, err)
}
