package workflow

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestFormatSnippetTruncatesLongText(t *testing.T) {
	long := strings.Repeat("b", maxSnippetLen+10)

	got := formatSnippet(Snippet{Text: long})

	assert.Len(t, got, maxSnippetLen)
}

func TestFormatSnippetTruncatesOnRuneBoundary(t *testing.T) {
	// The cut point lands inside the first multi-byte rune.
	text := strings.Repeat("a", maxSnippetLen-1) + "世界"

	got := formatSnippet(Snippet{Text: text})

	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), maxSnippetLen)
	assert.Equal(t, strings.Repeat("a", maxSnippetLen-1), got)
}

func TestFormatSnippetPrefixesSource(t *testing.T) {
	got := formatSnippet(Snippet{Text: "body", Source: "doc.pdf"})
	assert.Equal(t, "File: doc.pdf\nbody", got)

	got = formatSnippet(Snippet{Text: "body"})
	assert.Equal(t, "body", got)
}
