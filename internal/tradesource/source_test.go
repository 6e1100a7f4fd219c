package tradesource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradepersona/internal/config"
	"tradepersona/internal/store/sqlite"
	"tradepersona/internal/trade"
)

const sampleTrades = `[
  {"Trade ID": "T001", "Asset": "BTC", "Buy/Sell": "Buy", "Price": 42000.5, "Volume": 0.5,
   "Date": "2024-01-03T10:00:00", "Outcome": "Profit", "Tags": ["breakout", "Technical"]},
  {"Trade ID": "T002", "Asset": "DOGE", "Buy/Sell": "sell", "Price": "0.15", "Volume": 1000,
   "Date": "2024-01-05", "Outcome": "loss", "Tags": ["meme-trend-riding", "Sentiment"], "Holding Days": 3}
]`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestJSONSourceLoadsAndNormalizes(t *testing.T) {
	src := NewJSONSource(writeFile(t, "trades.json", sampleTrades))
	trades, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, trade.SideSell, trades[1].Side)
	assert.Equal(t, trade.OutcomeLoss, trades[1].Outcome)
	assert.Equal(t, "0.15", trades[1].Price.String())
	require.NotNil(t, trades[1].HoldingDays)
	assert.Equal(t, 3.0, *trades[1].HoldingDays)
	assert.Nil(t, trades[0].HoldingDays)
}

func TestJSONSourceRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"one tag":       `[{"Trade ID":"T1","Asset":"BTC","Buy/Sell":"Buy","Price":1,"Volume":1,"Date":"2024-01-01","Outcome":"Profit","Tags":["x"]}]`,
		"bad side":      `[{"Trade ID":"T1","Asset":"BTC","Buy/Sell":"Hold","Price":1,"Volume":1,"Date":"2024-01-01","Outcome":"Profit","Tags":["x","y"]}]`,
		"missing asset": `[{"Trade ID":"T1","Buy/Sell":"Buy","Price":1,"Volume":1,"Date":"2024-01-01","Outcome":"Profit","Tags":["x","y"]}]`,
		"not an array":  `{"Trade ID":"T1"}`,
		"broken json":   `[{"Trade ID":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeJSON([]byte(body))
			assert.ErrorIs(t, err, trade.ErrInvalidTrade)
		})
	}
}

func TestJSONSourceMissingFile(t *testing.T) {
	_, err := NewJSONSource(filepath.Join(t.TempDir(), "nope.json")).Load(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)

	_, err = NewJSONSource("").Load(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestLoadStoreEmptyArray(t *testing.T) {
	st, err := LoadStore(context.Background(), NewJSONSource(writeFile(t, "trades.json", "[]")))
	require.NoError(t, err)
	assert.Zero(t, st.Len())
}

func TestLoadStoreRejectsDuplicates(t *testing.T) {
	body := `[
	 {"Trade ID":"T1","Asset":"BTC","Buy/Sell":"Buy","Price":1,"Volume":1,"Date":"2024-01-01","Outcome":"Profit","Tags":["x","y"]},
	 {"Trade ID":"T1","Asset":"ETH","Buy/Sell":"Buy","Price":1,"Volume":1,"Date":"2024-01-02","Outcome":"Loss","Tags":["x","y"]}
	]`
	_, err := LoadStore(context.Background(), NewJSONSource(writeFile(t, "trades.json", body)))
	assert.ErrorIs(t, err, trade.ErrInvalidTrade)
}

func TestImportThenSQLiteSource(t *testing.T) {
	ctx := context.Background()
	trades, err := DecodeJSON([]byte(sampleTrades))
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "trades.db")
	db, err := sqlite.NewSqliteStore(dbPath)
	require.NoError(t, err)
	n, err := Import(ctx, db, trades)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, db.Close())

	src, err := Open(config.DataConfig{Source: "sqlite", SQLitePath: dbPath})
	require.NoError(t, err)
	st, err := LoadStore(ctx, src)
	require.NoError(t, err)
	require.Equal(t, 2, st.Len())
	got := st.Trades()
	assert.Equal(t, "T001", got[0].ID)
	assert.Equal(t, []string{"meme-trend-riding", "Sentiment"}, got[1].Tags)
}

func TestSQLiteSourceMissingFile(t *testing.T) {
	_, err := NewSQLiteSource(filepath.Join(t.TempDir(), "absent.db")).Load(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestOpenPicksSource(t *testing.T) {
	src, err := Open(config.DataConfig{TradesPath: "data/trades.json"})
	require.NoError(t, err)
	assert.Equal(t, "json:data/trades.json", src.Describe())

	_, err = Open(config.DataConfig{Source: "csv"})
	assert.Error(t, err)
}
