// Package text holds small string helpers for log output.
package text

import "unicode/utf8"

// Truncate 按字符截断，不会切开多字节字符；max<=0 时原样返回。
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
