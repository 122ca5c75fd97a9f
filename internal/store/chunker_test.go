package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextKeepsShortParagraphsTogether(t *testing.T) {
	text := "First paragraph.\n\nSecond paragraph."

	chunks := ChunkText(text, 400, 80)

	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], "First paragraph.")
	assert.Contains(t, chunks[0], "Second paragraph.")
}

func TestChunkTextSplitsAtParagraphBoundary(t *testing.T) {
	para1 := strings.Repeat("a", 300)
	para2 := strings.Repeat("b", 300)

	chunks := ChunkText(para1+"\n\n"+para2, 400, 80)

	require.Len(t, chunks, 2)
	assert.Equal(t, para1, chunks[0])
	assert.Equal(t, para2, chunks[1])
}

func TestChunkTextOverlapsLongParagraphs(t *testing.T) {
	para := strings.Repeat("x", 1000)

	chunks := ChunkText(para, 400, 80)

	require.Greater(t, len(chunks), 2)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 400)
	}

	// Successive windows advance by size-overlap, so the full span is covered.
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	assert.GreaterOrEqual(t, total, len(para))
}

func TestChunkTextEdgeCases(t *testing.T) {
	assert.Empty(t, ChunkText("", 400, 80))
	assert.Empty(t, ChunkText("\n\n  \n\n", 400, 80))
	assert.Empty(t, ChunkText("text", 0, 0))

	// Overlap >= size falls back to no overlap instead of looping forever.
	chunks := ChunkText(strings.Repeat("y", 250), 100, 100)
	assert.NotEmpty(t, chunks)
}
