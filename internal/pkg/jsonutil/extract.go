// Package jsonutil 处理模型回复里常见的包装：代码围栏、前后缀说明文字、内嵌 JSON。
package jsonutil

import (
	"strings"
)

const codeFence = "```"

// CodeBlock 返回第一个 ``` 围栏内的内容，并去掉语言标记行（如 ```python）。
func CodeBlock(raw string) (string, bool) {
	start := strings.Index(raw, codeFence)
	if start == -1 {
		return "", false
	}
	rest := raw[start+len(codeFence):]
	end := strings.Index(rest, codeFence)
	if end == -1 {
		return "", false
	}
	block := rest[:end]
	if idx := strings.Index(block, "\n"); idx != -1 {
		first := strings.TrimSpace(block[:idx])
		if isLanguageTag(first) {
			block = block[idx+1:]
		}
	}
	block = strings.TrimSpace(block)
	if block == "" {
		return "", false
	}
	return block, true
}

// isLanguageTag 判断围栏首行是否只是语言名。
func isLanguageTag(s string) bool {
	if s == "" || len(s) > 16 {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '+') {
			return false
		}
	}
	return true
}

// ExtractJSON 从回复中取出第一个完整的 JSON 对象或数组，优先看围栏内。
func ExtractJSON(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if block, ok := CodeBlock(raw); ok {
		raw = block
	}
	obj := strings.IndexByte(raw, '{')
	arr := strings.IndexByte(raw, '[')
	switch {
	case obj == -1 && arr == -1:
		return "", false
	case arr == -1 || (obj != -1 && obj < arr):
		return balanced(raw[obj:], '{', '}')
	default:
		return balanced(raw[arr:], '[', ']')
	}
}

// balanced 从 raw[0] 开始截取括号配平的片段，忽略字符串里的括号。
func balanced(raw string, open, close byte) (string, bool) {
	depth := 0
	inString := false
	escape := false
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return strings.TrimSpace(raw[:i+1]), true
			}
		}
	}
	return "", false
}
