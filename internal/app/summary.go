package app

import (
	"fmt"
	"sort"
	"strings"

	"tradepersona/internal/config"
	"tradepersona/internal/persona"
	"tradepersona/internal/prompt"
	"tradepersona/internal/trade"
)

type StartupSummary struct {
	Data    DataSummary
	Model   ModelSummary
	Persona persona.Profile
	Prompts prompt.Snapshot
	Addr    string
}

type DataSummary struct {
	Source string
	Trades int
	Assets []string
	Tags   []string
}

type ModelSummary struct {
	Provider string
	Model    string
	Timeout  int
	Breaker  int
}

func newStartupSummary(cfg *config.Config, store *trade.Store, profile persona.Profile, snap prompt.Snapshot) *StartupSummary {
	source := cfg.Data.Source
	if source == config.SourceSQLite {
		source += " " + cfg.Data.SQLitePath
	} else {
		source += " " + cfg.Data.TradesPath
	}
	return &StartupSummary{
		Data: DataSummary{
			Source: source,
			Trades: store.Len(),
			Assets: store.Assets(),
			Tags:   store.TagSet(),
		},
		Model: ModelSummary{
			Provider: cfg.AI.Provider,
			Model:    cfg.AI.Model,
			Timeout:  cfg.AI.TimeoutSeconds,
			Breaker:  cfg.AI.BreakerThreshold,
		},
		Persona: profile,
		Prompts: snap,
		Addr:    cfg.App.HTTPAddr,
	}
}

func (s *StartupSummary) Print() {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("%*s\n", 40+len("启动配置摘要 (STARTUP SUMMARY)")/2, "启动配置摘要 (STARTUP SUMMARY)")
	fmt.Println(strings.Repeat("=", 80))

	fmt.Println("[交易数据 (TRADES)]")
	fmt.Printf("  数据源: %s\n", s.Data.Source)
	fmt.Printf("  交易数: %d\n", s.Data.Trades)
	fmt.Printf("  资产: %s\n", formatList(s.Data.Assets))
	fmt.Printf("  标签: %s\n", formatList(s.Data.Tags))
	fmt.Println()

	fmt.Println("[模型 (MODEL)]")
	fmt.Printf("  Provider: %s\n", s.Model.Provider)
	fmt.Printf("  Model: %s\n", s.Model.Model)
	fmt.Printf("  超时: %ds  熔断阈值: %d\n", s.Model.Timeout, s.Model.Breaker)
	fmt.Println()

	fmt.Println("[交易画像 (PERSONA)]")
	if s.Persona.NoData {
		fmt.Printf("  %s\n", persona.NoDataMessage)
	} else {
		fmt.Printf("  %s\n", s.Persona.SummaryLine)
		fmt.Printf("  风险偏好: %s (%.2f)  持仓: %s  胜率: %.2f%%\n",
			s.Persona.RiskAppetite, s.Persona.RiskScore, s.Persona.HoldingPeriod, s.Persona.WinRatePercentage)
		fmt.Printf("  风格分布: %s\n", formatDistribution(s.Persona.StyleDistribution))
	}
	fmt.Println()

	fmt.Println("[提示词 (PROMPTS)]")
	if len(s.Prompts.Overridden) == 0 {
		fmt.Println("  全部使用内置模板")
	} else {
		names := make([]string, len(s.Prompts.Overridden))
		for i, n := range s.Prompts.Overridden {
			names[i] = string(n)
		}
		fmt.Printf("  已覆盖: %s\n", formatList(names))
	}
	fmt.Println()
	fmt.Printf("HTTP 监听: %s\n", s.Addr)
	fmt.Println(strings.Repeat("=", 80))
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func formatDistribution(dist map[string]float64) string {
	if len(dist) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s %.2f%%", k, dist[k])
	}
	return strings.Join(parts, ", ")
}
