package retrieval

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestChunkText_ShortTextIsOneChunk(t *testing.T) {
	t.Parallel()

	chunks := ChunkText("the appeal is dismissed", 180, 40)

	require.Len(t, chunks, 1)
	assert.Equal(t, "the appeal is dismissed", chunks[0])
}

func TestChunkText_OverlappingWindows(t *testing.T) {
	t.Parallel()

	chunks := ChunkText(numberedWords(10), 4, 2)

	require.Len(t, chunks, 4)
	assert.Equal(t, "w0 w1 w2 w3", chunks[0])
	assert.Equal(t, "w2 w3 w4 w5", chunks[1])
	assert.Equal(t, "w4 w5 w6 w7", chunks[2])
	assert.Equal(t, "w6 w7 w8 w9", chunks[3])
}

func TestChunkText_FinalPartialWindowKept(t *testing.T) {
	t.Parallel()

	chunks := ChunkText(numberedWords(9), 4, 0)

	require.Len(t, chunks, 3)
	assert.Equal(t, "w8", chunks[2])
}

func TestChunkText_EmptyText(t *testing.T) {
	t.Parallel()

	assert.Nil(t, ChunkText("", 180, 40))
	assert.Nil(t, ChunkText("   \n\t  ", 180, 40))
}

func TestChunkText_Deterministic(t *testing.T) {
	t.Parallel()

	text := numberedWords(500)
	assert.Equal(t, ChunkText(text, 180, 40), ChunkText(text, 180, 40))
}

func TestChunkText_DegenerateKnobs(t *testing.T) {
	t.Parallel()

	// Overlap at or above the window size shrinks to size-1, so the window
	// still advances one word at a time instead of looping forever.
	chunks := ChunkText(numberedWords(5), 3, 7)
	require.Len(t, chunks, 3)
	assert.Equal(t, "w0 w1 w2", chunks[0])
	assert.Equal(t, "w1 w2 w3", chunks[1])
	assert.Equal(t, "w2 w3 w4", chunks[2])

	// A non-positive size falls back to the shipped default.
	assert.Len(t, ChunkText(numberedWords(10), 0, 0), 1)
}
