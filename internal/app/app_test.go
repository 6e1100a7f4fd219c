package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tradepersona/internal/agent"
	"tradepersona/internal/config"
	"tradepersona/internal/gateway/provider"
	"tradepersona/internal/tradesource"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) ID() string { return "mock" }

func (m *mockProvider) Call(ctx context.Context, payload provider.ChatPayload) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}

const trades = `[
 {"Trade ID":"T1","Asset":"BTC","Buy/Sell":"Buy","Price":42000,"Volume":0.5,"Date":"2024-01-01","Outcome":"Profit","Tags":["breakout","Technical"],"Holding Days":3},
 {"Trade ID":"T2","Asset":"DOGE","Buy/Sell":"Sell","Price":0.1,"Volume":1000,"Date":"2024-01-02","Outcome":"Loss","Tags":["meme-trend-riding","Sentiment"],"Holding Days":1}
]`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "trades.json")
	require.NoError(t, os.WriteFile(path, []byte(trades), 0o644))
	return &config.Config{
		App:   config.AppConfig{LogLevel: "error", HTTPAddr: "127.0.0.1:0"},
		Data:  config.DataConfig{Source: config.SourceJSON, TradesPath: path},
		AI:    config.AIConfig{Provider: config.ProviderGemini, Model: "gemini-1.5-flash", TimeoutSeconds: 5},
		Agent: config.AgentConfig{RetrievalLimit: 5},
	}
}

func TestBuildWiresAgent(t *testing.T) {
	p := new(mockProvider)
	p.On("Call", mock.Anything, mock.MatchedBy(func(pl provider.ChatPayload) bool { return pl.Purpose == "classify" })).
		Return("aggregation", nil)
	p.On("Call", mock.Anything, mock.MatchedBy(func(pl provider.ChatPayload) bool { return pl.Purpose == "translate-aggregate" })).
		Return("count()", nil)
	p.On("Call", mock.Anything, mock.MatchedBy(func(pl provider.ChatPayload) bool { return pl.Purpose == "compose" })).
		Return("I've made two trades.", nil)

	a, err := NewAppBuilder(testConfig(t), WithProvider(p)).Build(context.Background())
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Summary)
	assert.Equal(t, 2, a.Summary.Data.Trades)
	assert.Equal(t, []string{"BTC", "DOGE"}, a.Summary.Data.Assets)

	ans := a.Agent().Ask(context.Background(), "How many trades did I make?")
	assert.Equal(t, agent.IntentAggregation, ans.Intent)
	assert.Equal(t, "I've made two trades.", ans.Response)
}

func TestBuildFailsWithoutTrades(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.TradesPath = filepath.Join(t.TempDir(), "missing.json")

	_, err := NewAppBuilder(cfg, WithProvider(new(mockProvider))).Build(context.Background())
	assert.ErrorIs(t, err, tradesource.ErrSourceUnavailable)
}

func TestBuildFailsWithoutAPIKey(t *testing.T) {
	_, err := NewAppBuilder(testConfig(t)).Build(context.Background())
	assert.ErrorIs(t, err, provider.ErrMissingAPIKey)
}

func TestBuildPropagatesProviderError(t *testing.T) {
	boom := errors.New("boom")
	b := NewAppBuilder(testConfig(t))
	b.providerFn = func(context.Context, config.AIConfig) (provider.ModelProvider, error) { return nil, boom }

	_, err := b.Build(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRunStopsOnCancel(t *testing.T) {
	a, err := NewAppBuilder(testConfig(t), WithProvider(new(mockProvider))).Build(context.Background())
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, a.Run(ctx))
}

func TestLoadProfileNeedsNoProvider(t *testing.T) {
	profile, err := LoadProfile(context.Background(), testConfig(t))
	require.NoError(t, err)
	assert.Equal(t, 2, profile.TotalTrades)
	assert.Equal(t, 50.0, profile.WinRatePercentage)
}
