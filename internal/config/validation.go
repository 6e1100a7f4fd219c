package config

import (
	"fmt"
	"strings"
)

// validate 对配置进行基础校验。凭证缺失不在这里拦截，由 provider 构建时失败。
func validate(c *Config) error {
	if err := c.Data.validate(); err != nil {
		return err
	}
	if err := c.AI.validate(); err != nil {
		return err
	}
	if c.Agent.RetrievalLimit <= 0 {
		return fmt.Errorf("agent.retrieval_limit must be > 0")
	}
	return nil
}

func (d *DataConfig) validate() error {
	switch d.Source {
	case SourceJSON:
		if strings.TrimSpace(d.TradesPath) == "" {
			return fmt.Errorf("data.trades_path cannot be empty when data.source=json")
		}
	case SourceSQLite:
		if strings.TrimSpace(d.SQLitePath) == "" {
			return fmt.Errorf("data.sqlite_path cannot be empty when data.source=sqlite")
		}
	default:
		return fmt.Errorf("data.source only supports json|sqlite, got %q", d.Source)
	}
	return nil
}

func (a *AIConfig) validate() error {
	if _, ok := Presets[a.Provider]; !ok {
		return fmt.Errorf("ai.provider %q is not supported", a.Provider)
	}
	if strings.TrimSpace(a.APIURL) == "" {
		return fmt.Errorf("ai.api_url cannot be empty")
	}
	if strings.TrimSpace(a.Model) == "" {
		return fmt.Errorf("ai.model cannot be empty")
	}
	if a.TimeoutSeconds < 0 {
		return fmt.Errorf("ai.timeout_seconds must be >= 0")
	}
	if a.MaxRetries < 0 {
		return fmt.Errorf("ai.max_retries must be >= 0")
	}
	if a.BreakerThreshold < 0 || a.BreakerCooldownSeconds < 0 {
		return fmt.Errorf("ai.breaker_threshold and ai.breaker_cooldown_seconds must be >= 0")
	}
	return nil
}
