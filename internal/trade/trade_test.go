package trade

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(id, asset string, day int, tags ...string) Trade {
	return Trade{
		ID:      id,
		Asset:   asset,
		Side:    SideBuy,
		Price:   decimal.NewFromInt(10),
		Volume:  decimal.NewFromInt(2),
		Date:    time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Outcome: OutcomeProfit,
		Tags:    tags,
	}
}

func TestValidateRejectsSingleTag(t *testing.T) {
	tr := sample("T1", "BTC", 1, "momentum")
	err := tr.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTrade))
	assert.Contains(t, err.Error(), "T1")
}

func TestValidateRejectsNonPositivePrice(t *testing.T) {
	tr := sample("T1", "BTC", 1, "momentum", "Technical")
	tr.Price = decimal.Zero
	assert.ErrorIs(t, tr.Validate(), ErrInvalidTrade)
}

func TestNewStoreFailsLoudlyOnBadTrade(t *testing.T) {
	_, err := NewStore([]Trade{
		sample("T1", "BTC", 1, "momentum", "Technical"),
		sample("T2", "ETH", 2, "value"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trade #2")
}

func TestNewStoreRejectsDuplicateIDs(t *testing.T) {
	_, err := NewStore([]Trade{
		sample("T1", "BTC", 1, "momentum", "Technical"),
		sample("T1", "ETH", 2, "value", "Value"),
	})
	assert.ErrorIs(t, err, ErrInvalidTrade)
}

func TestStoreTradesReturnsCopies(t *testing.T) {
	store, err := NewStore([]Trade{sample("T1", "BTC", 1, "momentum", "Technical")})
	require.NoError(t, err)

	got := store.Trades()
	got[0].Tags[0] = "mutated"
	got[0].Asset = "XXX"

	again := store.Trades()
	assert.Equal(t, "momentum", again[0].Tags[0])
	assert.Equal(t, "BTC", again[0].Asset)
	assert.Equal(t, []string{"BTC"}, store.Assets())
	assert.Equal(t, []string{"Technical", "momentum"}, store.TagSet())
}

func TestLatestKeepsMostRecentInAscendingOrder(t *testing.T) {
	trades := []Trade{
		sample("T3", "BTC", 3, "a", "b"),
		sample("T1", "BTC", 1, "a", "b"),
		sample("T4", "BTC", 4, "a", "b"),
		sample("T2", "BTC", 2, "a", "b"),
	}
	got := Latest(trades, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "T3", got[0].ID)
	assert.Equal(t, "T4", got[1].ID)
	// input untouched
	assert.Equal(t, "T3", trades[0].ID)
}

func TestUnmarshalAcceptsOriginalColumnNames(t *testing.T) {
	raw := `{"Trade ID":"T999","Asset":"DOGE","Buy/Sell":"Buy","Price":0.15,"Volume":5000,
		"Date":"2024-02-01T00:00:00.000Z","Outcome":"Neutral","Tags":["meme-trend-riding","Sentiment"]}`
	var tr Trade
	require.NoError(t, json.Unmarshal([]byte(raw), &tr))
	assert.Equal(t, "T999", tr.ID)
	assert.Equal(t, SideBuy, tr.Side)
	assert.True(t, tr.Price.Equal(decimal.RequireFromString("0.15")))
	assert.Equal(t, "Sentiment", tr.Style())
	assert.Equal(t, 2024, tr.Date.Year())
	assert.NoError(t, tr.Validate())
}

func TestUnmarshalNaiveDate(t *testing.T) {
	var tr Trade
	require.NoError(t, json.Unmarshal([]byte(`{"Trade ID":"T1","Date":"2024-03-05"}`), &tr))
	assert.Equal(t, time.March, tr.Date.Month())
	assert.Error(t, json.Unmarshal([]byte(`{"Trade ID":"T1","Date":"yesterday"}`), &tr))
}

func TestSchemaPromptListsColumns(t *testing.T) {
	schema := DescribeSchema()
	prompt := schema.Prompt()
	for _, c := range schema.Columns {
		assert.Contains(t, prompt, "`"+c.Name+"`")
	}
	col, ok := schema.Column("PRICE")
	require.True(t, ok)
	assert.Equal(t, ColumnNumber, col.Type)
}
