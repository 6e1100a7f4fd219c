package tradesource

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"tradepersona/internal/trade"
)

//go:embed trades.schema.json
var tradesSchema string

var (
	schemaOnce     sync.Once
	schemaCompiled *jsonschema.Schema
	schemaErr      error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("trades.schema.json", strings.NewReader(tradesSchema)); err != nil {
			schemaErr = err
			return
		}
		schemaCompiled, schemaErr = compiler.Compile("trades.schema.json")
	})
	return schemaCompiled, schemaErr
}

// JSONSource 读取 JSON 数组格式的交易文件。
type JSONSource struct {
	Path string
}

func NewJSONSource(path string) *JSONSource {
	return &JSONSource{Path: strings.TrimSpace(path)}
}

func (s *JSONSource) Describe() string { return "json:" + s.Path }

func (s *JSONSource) Load(ctx context.Context) ([]trade.Trade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Path == "" {
		return nil, fmt.Errorf("%w: data.trades_path is empty", ErrSourceUnavailable)
	}
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s not found", ErrSourceUnavailable, s.Path)
		}
		return nil, fmt.Errorf("read trades file: %w", err)
	}
	return DecodeJSON(raw)
}

// DecodeJSON 先做 schema 校验再解码，错误信息指向具体字段。
func DecodeJSON(raw []byte) ([]trade.Trade, error) {
	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile trades schema: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: malformed json: %v", trade.ErrInvalidTrade, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", trade.ErrInvalidTrade, err)
	}
	var trades []trade.Trade
	if err := json.Unmarshal(raw, &trades); err != nil {
		return nil, fmt.Errorf("%w: %v", trade.ErrInvalidTrade, err)
	}
	for i := range trades {
		if side, ok := trade.ParseSide(string(trades[i].Side)); ok {
			trades[i].Side = side
		}
		if outcome, ok := trade.ParseOutcome(string(trades[i].Outcome)); ok {
			trades[i].Outcome = outcome
		}
	}
	return trades, nil
}
