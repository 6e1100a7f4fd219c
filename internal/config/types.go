package config

import (
	"strings"
	"time"
)

// Config 是 tradepersona 的主配置载体。
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Data    DataConfig    `mapstructure:"data"`
	AI      AIConfig      `mapstructure:"ai"`
	Agent   AgentConfig   `mapstructure:"agent"`
	Persona PersonaConfig `mapstructure:"persona"`
	Prompt  PromptConfig  `mapstructure:"prompt"`
	Trace   TraceConfig   `mapstructure:"trace"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
	HTTPAddr string `mapstructure:"http_addr"`
	LogPath  string `mapstructure:"log_path"`
	LLMLog   string `mapstructure:"llm_log_path"`
	LLMDump  bool   `mapstructure:"llm_dump_payload"`
}

// DataConfig 决定交易记录从哪里加载。
type DataConfig struct {
	Source     string `mapstructure:"source"` // json | sqlite
	TradesPath string `mapstructure:"trades_path"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// AIConfig 描述文本生成服务的连接方式。
type AIConfig struct {
	Provider               string            `mapstructure:"provider"`
	APIURL                 string            `mapstructure:"api_url"`
	APIKey                 string            `mapstructure:"api_key"`
	Model                  string            `mapstructure:"model"`
	Headers                map[string]string `mapstructure:"headers"`
	TimeoutSeconds         int               `mapstructure:"timeout_seconds"`
	MaxRetries             int               `mapstructure:"max_retries"`
	BreakerThreshold       int               `mapstructure:"breaker_threshold"`
	BreakerCooldownSeconds int               `mapstructure:"breaker_cooldown_seconds"`
}

// Timeout 是单次模型调用的超时。
func (a AIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

func (a AIConfig) BreakerCooldown() time.Duration {
	return time.Duration(a.BreakerCooldownSeconds) * time.Second
}

// HasAPIKey 报告是否配置了凭证。
func (a AIConfig) HasAPIKey() bool {
	return strings.TrimSpace(a.APIKey) != ""
}

type AgentConfig struct {
	RetrievalLimit int `mapstructure:"retrieval_limit"`
}

type PersonaConfig struct {
	HoldingSeed uint64 `mapstructure:"holding_seed"`
}

type PromptConfig struct {
	TemplatesPath string `mapstructure:"templates_path"`
}

type TraceConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// ProviderPreset 是已知 provider 的默认端点与模型。
type ProviderPreset struct {
	APIURL string
	Model  string
}

// Presets 以 provider 名称索引。gemini 走 OpenAI 兼容端点。
var Presets = map[string]ProviderPreset{
	ProviderGemini:       {APIURL: "https://generativelanguage.googleapis.com/v1beta/openai", Model: "gemini-1.5-flash"},
	ProviderOpenAI:       {APIURL: "https://api.openai.com/v1", Model: "gpt-4o-mini"},
	ProviderEinoOpenAI:   {APIURL: "https://api.openai.com/v1", Model: "gpt-4o-mini"},
	ProviderEinoDeepSeek: {APIURL: "https://api.deepseek.com", Model: "deepseek-chat"},
}

const (
	ProviderGemini       = "gemini"
	ProviderOpenAI       = "openai"
	ProviderEinoOpenAI   = "eino-openai"
	ProviderEinoDeepSeek = "eino-deepseek"

	SourceJSON   = "json"
	SourceSQLite = "sqlite"
)

// keySet 用于追踪配置文件中显式设置的字段路径。
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

// fieldDefault 描述单个字段的默认值设置规则。
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
