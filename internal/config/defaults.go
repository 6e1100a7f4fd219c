package config

import "strings"

// 默认值常量
const (
	defaultAppEnv          = "dev"
	defaultAppLogLevel     = "info"
	defaultAppHTTPAddr     = ":8000"
	defaultDataSource      = SourceJSON
	defaultTradesPath      = "data/trades.json"
	defaultSQLitePath      = "data/trades.db"
	defaultAIProvider      = ProviderGemini
	defaultAITimeout       = 30
	defaultAIMaxRetries    = 0
	defaultBreakerFailures = 5
	defaultBreakerCooldown = 30
	defaultRetrievalLimit  = 5
	defaultHoldingSeed     = 42
)

// applyDefaults 为所有子配置应用默认值。
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Data.applyDefaults(keys)
	c.AI.applyDefaults(keys)
	c.Agent.applyDefaults(keys)
	c.Persona.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
	)
}

func (d *DataConfig) applyDefaults(keys keySet) {
	if d == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("data.source", &d.Source, defaultDataSource),
		stringFieldDefault("data.trades_path", &d.TradesPath, defaultTradesPath),
		stringFieldDefault("data.sqlite_path", &d.SQLitePath, defaultSQLitePath),
	)
	d.Source = strings.ToLower(strings.TrimSpace(d.Source))
}

func (a *AIConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("ai.provider", &a.Provider, defaultAIProvider),
		intFieldDefault("ai.timeout_seconds", &a.TimeoutSeconds, defaultAITimeout),
		intFieldDefault("ai.max_retries", &a.MaxRetries, defaultAIMaxRetries),
		intFieldDefault("ai.breaker_threshold", &a.BreakerThreshold, defaultBreakerFailures),
		intFieldDefault("ai.breaker_cooldown_seconds", &a.BreakerCooldownSeconds, defaultBreakerCooldown),
	)
	a.Provider = strings.ToLower(strings.TrimSpace(a.Provider))
	// api_url / model 未显式配置时沿用预设。
	if preset, ok := Presets[a.Provider]; ok {
		if strings.TrimSpace(a.APIURL) == "" {
			a.APIURL = preset.APIURL
		}
		if strings.TrimSpace(a.Model) == "" {
			a.Model = preset.Model
		}
	}
}

func (a *AgentConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		intFieldDefault("agent.retrieval_limit", &a.RetrievalLimit, defaultRetrievalLimit),
	)
}

func (p *PersonaConfig) applyDefaults(keys keySet) {
	if p == nil {
		return
	}
	applyFieldDefaults(keys,
		fieldDefault{
			key:   "persona.holding_seed",
			need:  func() bool { return p.HoldingSeed == 0 },
			apply: func() { p.HoldingSeed = defaultHoldingSeed },
		},
	)
}

// Helper functions

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target <= 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
