package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "just text", "just text"},
		{"bold", "Hello <b>World</b>", "Hello World"},
		{"paragraphs", "<p>one</p><p>two</p>", "one two"},
		{"attributes", `<a href="http://bold.example">link</a>`, "link"},
		{"script dropped", "<p>keep</p><script>var b = 1;</script>", "keep"},
		{"entities", "fish &amp; chips", "fish & chips"},
		{"whitespace", "  a \n\t b  ", "a b"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}

func TestMatches(t *testing.T) {
	t.Run("empty needle matches nothing", func(t *testing.T) {
		assert.False(t, Matches([]string{"anything", ""}, ""))
		assert.False(t, Matches([]string{"anything"}, "   "))
		assert.False(t, Matches(nil, "\t\n"))
	})

	t.Run("case-insensitive on stripped markup", func(t *testing.T) {
		assert.True(t, Matches([]string{PlainText("Hello <b>World</b>")}, "world"))
		assert.True(t, Matches([]string{PlainText("Hello <b>World</b>")}, "HELLO WORLD"))
	})

	t.Run("markup never matches", func(t *testing.T) {
		assert.False(t, Matches([]string{PlainText("Hello <b>World</b>")}, "<b>"))
		assert.False(t, Matches([]string{PlainText(`<span class="x">hi</span>`)}, "span"))
	})

	t.Run("any field matches", func(t *testing.T) {
		fields := PostFields("Title", "body", "Travel", "wanderer")
		assert.True(t, Matches(fields, "travel"))
		assert.True(t, Matches(fields, "WANDER"))
		assert.False(t, Matches(fields, "cooking"))
	})

	t.Run("needle is trimmed", func(t *testing.T) {
		assert.True(t, Matches([]string{"golang"}, "  lang "))
	})
}

func TestUserFields_FullNameAcrossBoundary(t *testing.T) {
	fields := UserFields("Ada", "Lovelace", "countess")
	assert.True(t, Matches(fields, "ada love"))
	assert.True(t, Matches(fields, "lovelace"))
	assert.False(t, Matches(fields, "lovelace ada"))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%hello%", LikePattern("  Hello "))
	assert.Equal(t, `%50\%\_off%`, LikePattern("50%_off"))
}
