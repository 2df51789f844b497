package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanStripsScript(t *testing.T) {
	assert.Equal(t, "hello", Clean("<script>alert(1)</script>hello"))
}

func TestCleanStripsTagsKeepsText(t *testing.T) {
	assert.Equal(t, "bold and link", Clean(`<b>bold</b> and <a href="javascript:x()">link</a>`))
}

func TestCleanEmpty(t *testing.T) {
	assert.Equal(t, "", Clean(""))
	assert.Equal(t, "", Clean("<img src=x onerror=alert(1)>"))
}

func TestTruncateCountsRunes(t *testing.T) {
	assert.Equal(t, "héllo", Truncate("héllo wörld", 5))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "日本", Truncate("日本語", 2))
}

func TestName(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		max  int
		want string
	}{
		{name: "plain", raw: "general", max: 20, want: "general"},
		{name: "trimmed", raw: "  lobby  ", max: 20, want: "lobby"},
		{name: "truncated", raw: "abcdefghijklmnopqrstuvwxyz", max: 20, want: "abcdefghijklmnopqrst"},
		{name: "markup only", raw: "<b></b>", max: 20, want: ""},
		{name: "trailing space after cut", raw: "alice bob", max: 6, want: "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Name(tt.raw, tt.max))
		})
	}
}
