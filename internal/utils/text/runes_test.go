package text_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"rss-portal/internal/utils/text"
)

/* ───────── 1. CountRunes ───────── */

func TestCountRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{"ASCII text", "hello", 5},
		{"Japanese hiragana", "こんにちは", 5},
		{"mixed", "hello世界", 7},
		{"emoji", "Hello👋", 6},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, text.CountRunes(tt.input))
		})
	}
}

/* ───────── 2. Truncate ───────── */

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"shorter than max", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"ascii cut", "abcdef", 3, "abc"},
		{"multibyte cut", "日本語のテキスト", 3, "日本語"},
		{"emoji boundary", "👋👋👋", 2, "👋👋"},
		{"zero", "abc", 0, ""},
		{"negative", "abc", -1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, text.Truncate(tt.in, tt.max))
		})
	}
}

func TestTruncate_LongJapanese(t *testing.T) {
	s := strings.Repeat("あ", 250)
	got := text.Truncate(s, 200)
	assert.Equal(t, 200, text.CountRunes(got))
}

func TestTruncateWithEllipsis(t *testing.T) {
	assert.Equal(t, "abc", text.TruncateWithEllipsis("abc", 3))
	assert.Equal(t, "ab...", text.TruncateWithEllipsis("abc", 2))
}

/* ───────── 3. CollapseSpace ───────── */

func TestCollapseSpace(t *testing.T) {
	assert.Equal(t, "a b c", text.CollapseSpace("  a \n\t b   c  "))
	assert.Equal(t, "", text.CollapseSpace(" \n "))
}
