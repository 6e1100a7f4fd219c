package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, name := range apiKeyEnvs {
		t.Setenv(name, "")
	}
}

func TestLoadDefaultsOnly(t *testing.T) {
	clearKeyEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.App.HTTPAddr)
	assert.Equal(t, SourceJSON, cfg.Data.Source)
	assert.Equal(t, "data/trades.json", cfg.Data.TradesPath)
	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, Presets[ProviderGemini].APIURL, cfg.AI.APIURL)
	assert.Equal(t, Presets[ProviderGemini].Model, cfg.AI.Model)
	assert.Equal(t, 5, cfg.Agent.RetrievalLimit)
	assert.EqualValues(t, 42, cfg.Persona.HoldingSeed)
	assert.False(t, cfg.AI.HasAPIKey())
	assert.Zero(t, cfg.AI.MaxRetries)
}

func TestLoadFileWithInclude(t *testing.T) {
	clearKeyEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
app:
  log_level: debug
ai:
  provider: openai
  timeout_seconds: 10
`)
	path := writeFile(t, dir, "config.yaml", `
include:
  - base.yaml
ai:
  model: gpt-4o
  breaker_threshold: 0
agent:
  retrieval_limit: 3
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, "gpt-4o", cfg.AI.Model)
	assert.Equal(t, Presets[ProviderOpenAI].APIURL, cfg.AI.APIURL)
	assert.Equal(t, 10, cfg.AI.TimeoutSeconds)
	// 显式写 0 的字段不被默认值覆盖
	assert.Equal(t, 0, cfg.AI.BreakerThreshold)
	assert.Equal(t, 3, cfg.Agent.RetrievalLimit)
}

func TestLoadIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "include: [b.yaml]\n")
	writeFile(t, dir, "b.yaml", "include: [a.yaml]\n")
	_, err := Load(filepath.Join(dir, "a.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include cycle")
}

func TestLoadAPIKeyFromEnv(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "g-key", cfg.AI.APIKey)

	t.Setenv("TRADEPERSONA_API_KEY", "own-key")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "own-key", cfg.AI.APIKey)
}

func TestLoadDotEnvBesideConfig(t *testing.T) {
	clearKeyEnv(t)
	os.Unsetenv("OPENAI_API_KEY")
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	writeFile(t, dir, ".env", "OPENAI_API_KEY=from-dotenv\n")
	path := writeFile(t, dir, "config.yaml", "app:\n  env: test\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.AI.APIKey)
	os.Unsetenv("OPENAI_API_KEY")
}

func TestLoadRejectsMalformedDotEnv(t *testing.T) {
	clearKeyEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, ".env", "GOOGLE_API_KEY=abc\nBAD%KEY=1\n")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".env")
}

func TestLoadValidation(t *testing.T) {
	clearKeyEnv(t)
	cases := map[string]string{
		"bad source":   "data:\n  source: csv\n",
		"bad provider": "ai:\n  provider: carrier-pigeon\n",
		"zero limit":   "agent:\n  retrieval_limit: 0\n",
		"neg retries":  "ai:\n  max_retries: -1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", body)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestEnvOverridesMarkKeys(t *testing.T) {
	clearKeyEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("TRADEPERSONA_AI_PROVIDER", "eino-deepseek")
	t.Setenv("TRADEPERSONA_TRADES_PATH", "/tmp/trades.json")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ProviderEinoDeepSeek, cfg.AI.Provider)
	assert.Equal(t, "deepseek-chat", cfg.AI.Model)
	assert.Equal(t, "/tmp/trades.json", cfg.Data.TradesPath)
}
