package vectorstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnippet_Short(t *testing.T) {
	assert.Equal(t, "hello", Snippet("hello"))
}

func TestSnippet_ExactLimit(t *testing.T) {
	content := strings.Repeat("x", SnippetMaxChars)
	assert.Equal(t, content, Snippet(content))
}

func TestSnippet_Truncated(t *testing.T) {
	content := strings.Repeat("x", SnippetMaxChars+1)
	got := Snippet(content)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Len(t, []rune(got), SnippetMaxChars+3)
}

func TestSnippet_MultiByte(t *testing.T) {
	content := strings.Repeat("日", SnippetMaxChars+10)
	got := Snippet(content)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Len(t, []rune(got), SnippetMaxChars+3)
}
