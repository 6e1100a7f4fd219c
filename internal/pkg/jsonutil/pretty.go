package jsonutil

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Pretty 缩进 JSON 文本并保留字段顺序；非 JSON 原样返回。
func Pretty(raw string) string {
	trimmed := strings.TrimSpace(raw)
	var buf bytes.Buffer
	if trimmed == "" || json.Indent(&buf, []byte(trimmed), "", "  ") != nil {
		return raw
	}
	return buf.String()
}
