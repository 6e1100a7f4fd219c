package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeBlock(t *testing.T) {
	cases := []struct {
		raw, want string
		ok        bool
	}{
		{"```python\ndf[df.Asset == 'BTC']\n```", "df[df.Asset == 'BTC']", true},
		{"```\nasset == 'BTC'\n```", "asset == 'BTC'", true},
		{"here you go:\n```sql\ncount()\n```\nthanks", "count()", true},
		{"```asset == 'BTC'```", "asset == 'BTC'", true},
		{"no fence", "", false},
		{"```unterminated", "", false},
		{"```\n\n```", "", false},
	}
	for _, tc := range cases {
		got, ok := CodeBlock(tc.raw)
		assert.Equal(t, tc.ok, ok, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}

func TestExtractJSON(t *testing.T) {
	got, ok := ExtractJSON(`Sure! {"expression": "count(where asset == 'BTC')", "note": "a } brace"} done`)
	assert.True(t, ok)
	assert.Equal(t, `{"expression": "count(where asset == 'BTC')", "note": "a } brace"}`, got)

	got, ok = ExtractJSON("```json\n[1, [2, 3]]\n```")
	assert.True(t, ok)
	assert.Equal(t, "[1, [2, 3]]", got)

	_, ok = ExtractJSON("asset == 'BTC'")
	assert.False(t, ok)
	_, ok = ExtractJSON(`{"open": true`)
	assert.False(t, ok)
}

func TestPretty(t *testing.T) {
	assert.Equal(t, "{\n  \"a\": 1\n}", Pretty(`{"a":1}`))
	assert.Equal(t, "{\n  \"b\": 2,\n  \"a\": 1\n}", Pretty(`{"b":2,"a":1}`))
	assert.Equal(t, "not json", Pretty("not json"))
}
