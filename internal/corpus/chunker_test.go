package corpus

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitOverlap(t *testing.T) {
	c := NewChunker(4, 2)
	chunks := c.Split("abcdefghij")

	require.Equal(t, []string{"abcd", "cdef", "efgh", "ghij"}, chunks)
}

func TestSplitShortInput(t *testing.T) {
	c := NewChunker(500, 50)
	chunks := c.Split("tiny")

	require.Len(t, chunks, 1)
	assert.Equal(t, "tiny", chunks[0])
}

func TestSplitEmptyInput(t *testing.T) {
	assert.Nil(t, NewChunker(0, 0).Split(""))
}

func TestSplitCoversEveryRune(t *testing.T) {
	text := strings.Repeat("x", 1234)
	chunks := NewChunker(500, 50).Split(text)

	total := 0
	for _, ch := range chunks {
		total += len(ch)
	}
	// Overlapping chunks re-cover boundary runes, so the sum exceeds the
	// input but the last chunk must end exactly at the input's end.
	assert.GreaterOrEqual(t, total, len(text))
	assert.True(t, strings.HasSuffix(text, chunks[len(chunks)-1]))
}

func TestSplitMultibyte(t *testing.T) {
	// Rune-based stepping must never cut a multibyte character in half.
	text := strings.Repeat("日本語テキスト", 40)
	for _, ch := range NewChunker(50, 10).Split(text) {
		assert.True(t, strings.HasPrefix(text, "日")) // sanity
		for _, r := range ch {
			assert.NotEqual(t, '�', r)
		}
	}
}

func TestNewChunkerDefaults(t *testing.T) {
	c := NewChunker(0, -1)
	assert.Equal(t, DefaultChunkSize, c.size)
	assert.Equal(t, DefaultChunkOverlap, c.overlap)

	// Overlap as large as the size would never advance; it gets clamped.
	c = NewChunker(100, 100)
	assert.Equal(t, 25, c.overlap)
}
