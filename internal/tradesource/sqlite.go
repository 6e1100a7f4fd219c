package tradesource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"tradepersona/internal/store/sqlite"
	"tradepersona/internal/trade"
)

// SQLiteSource 从 trades 表读取记录（可由 import 命令写入）。
type SQLiteSource struct {
	Path string
}

func NewSQLiteSource(path string) *SQLiteSource {
	return &SQLiteSource{Path: strings.TrimSpace(path)}
}

func (s *SQLiteSource) Describe() string { return "sqlite:" + s.Path }

func (s *SQLiteSource) Load(ctx context.Context) ([]trade.Trade, error) {
	if s.Path == "" {
		return nil, fmt.Errorf("%w: data.sqlite_path is empty", ErrSourceUnavailable)
	}
	// 不存在时不自动建库，避免静默得到空画像
	if _, err := os.Stat(s.Path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s not found", ErrSourceUnavailable, s.Path)
	}
	db, err := sqlite.NewSqliteStore(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()
	rows, err := db.Trades().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	out := make([]trade.Trade, 0, len(rows))
	for _, row := range rows {
		t, err := row.ToTrade()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
