// Package tradesource 负责把交易记录从外部介质加载为 trade.Store。
package tradesource

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tradepersona/internal/config"
	"tradepersona/internal/logger"
	"tradepersona/internal/trade"
)

// ErrSourceUnavailable 表示数据源缺失或无法打开。
var ErrSourceUnavailable = errors.New("trade source unavailable")

// Source 提供一次性的交易记录读取。
type Source interface {
	Load(ctx context.Context) ([]trade.Trade, error)
	Describe() string
}

// Open 根据 data.source 选择数据源，空值按 json 处理。
func Open(cfg config.DataConfig) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Source)) {
	case "", config.SourceJSON:
		return NewJSONSource(cfg.TradesPath), nil
	case config.SourceSQLite:
		return NewSQLiteSource(cfg.SQLitePath), nil
	default:
		return nil, fmt.Errorf("unsupported data.source %q", cfg.Source)
	}
}

// LoadStore 读取全部记录并冻结为 Store，任一记录非法都会失败。
func LoadStore(ctx context.Context, src Source) (*trade.Store, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", ErrSourceUnavailable)
	}
	trades, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load trades from %s: %w", src.Describe(), err)
	}
	st, err := trade.NewStore(trades)
	if err != nil {
		return nil, fmt.Errorf("build trade store from %s: %w", src.Describe(), err)
	}
	logger.Infof("已加载 %d 笔交易 (%s)", st.Len(), src.Describe())
	return st, nil
}
