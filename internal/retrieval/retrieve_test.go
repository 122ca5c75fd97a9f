package retrieval

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internai/internai/internal/store"
	"github.com/internai/internai/internal/types"
)

// countingEmbedder records how many embedding calls were made.
type countingEmbedder struct {
	calls  int
	vector []float32
}

func (e *countingEmbedder) Embed(context.Context, string) ([]float32, error) {
	e.calls++
	return e.vector, nil
}

func seed(t *testing.T, m *store.Memory, candidate uuid.UUID, texts ...string) {
	t.Helper()
	chunks := make([]types.ContextChunk, 0, len(texts))
	for _, text := range texts {
		chunks = append(chunks, types.ContextChunk{
			Source:    types.SourceResume,
			Text:      text,
			Embedding: []float32{1, 0},
		})
	}
	require.NoError(t, m.ReplaceChunks(context.Background(), candidate, types.SourceResume, chunks))
}

func TestRetrieveEmptyCandidateFailsBeforeAnyModelCall(t *testing.T) {
	m := store.NewMemory()
	embedder := &countingEmbedder{vector: []float32{1, 0}}
	r := New(m, embedder)
	candidate := uuid.New()

	_, err := r.Retrieve(context.Background(), "some job", candidate, 5, 6000)

	var emptyErr *EmptyContextError
	require.ErrorAs(t, err, &emptyErr)
	assert.Equal(t, candidate, emptyErr.CandidateID)
	assert.Zero(t, embedder.calls, "no embedding call may happen for an empty candidate")
}

func TestRetrieveEmbedsJobDescriptionOnce(t *testing.T) {
	m := store.NewMemory()
	embedder := &countingEmbedder{vector: []float32{1, 0}}
	r := New(m, embedder)
	candidate := uuid.New()
	seed(t, m, candidate, "chunk one", "chunk two")

	result, err := r.Retrieve(context.Background(), "some job", candidate, 5, 6000)
	require.NoError(t, err)

	assert.Equal(t, 1, embedder.calls)
	assert.Len(t, result.Chunks, 2)
}

func TestRetrieveRespectsTopK(t *testing.T) {
	m := store.NewMemory()
	r := New(m, &countingEmbedder{vector: []float32{1, 0}})
	candidate := uuid.New()
	seed(t, m, candidate, "a", "bb", "ccc", "dddd", "eeeee", "ffffff", "ggggggg")

	result, err := r.Retrieve(context.Background(), "job", candidate, 3, 6000)
	require.NoError(t, err)
	assert.Len(t, result.Chunks, 3)
}

func TestRetrieveSkipsOverflowingChunksWhole(t *testing.T) {
	m := store.NewMemory()
	r := New(m, &countingEmbedder{vector: []float32{1, 0}})
	candidate := uuid.New()

	big := strings.Repeat("b", 90)
	small := strings.Repeat("s", 30)
	seed(t, m, candidate, small, big, "tiny")

	// Budget fits the small chunks but not the big one; ranking puts
	// shorter texts first on ties, so the big chunk lands mid-iteration.
	result, err := r.Retrieve(context.Background(), "job", candidate, 10, 60)
	require.NoError(t, err)

	for _, c := range result.Chunks {
		assert.NotEqual(t, big, c.Text, "overflowing chunk must be skipped, not truncated")
	}
	assert.Contains(t, chunkTexts(result), "tiny")
	assert.Contains(t, chunkTexts(result), small)
	assert.LessOrEqual(t, result.TotalChars, 60)
}

func TestRetrieveDeduplicatesIdenticalText(t *testing.T) {
	m := store.NewMemory()
	r := New(m, &countingEmbedder{vector: []float32{1, 0}})
	candidate := uuid.New()
	ctx := context.Background()

	same := types.ContextChunk{Source: types.SourceResume, Text: "duplicate", Embedding: []float32{1, 0}}
	require.NoError(t, m.ReplaceChunks(ctx, candidate, types.SourceResume, []types.ContextChunk{same}))
	require.NoError(t, m.ReplaceChunks(ctx, candidate, types.SourceLinkedIn, []types.ContextChunk{
		{Source: types.SourceLinkedIn, Text: "duplicate", Embedding: []float32{1, 0}},
	}))

	result, err := r.Retrieve(ctx, "job", candidate, 10, 6000)
	require.NoError(t, err)
	assert.Len(t, result.Chunks, 1)
}

func TestContextTextGroupsBySource(t *testing.T) {
	result := &Result{Chunks: []ScoredChunk{
		{ContextChunk: types.ContextChunk{Source: types.SourceGitHub, Text: "repo"}},
		{ContextChunk: types.ContextChunk{Source: types.SourceResume, Text: "resume bit"}},
		{ContextChunk: types.ContextChunk{Source: types.SourceResume, Text: "another bit"}},
	}}

	text := result.ContextText()

	assert.Contains(t, text, "### Most Relevant Resume Sections:")
	assert.Contains(t, text, "### Relevant GitHub Projects:")
	assert.NotContains(t, text, "LinkedIn")
	assert.Less(t, strings.Index(text, "resume bit"), strings.Index(text, "repo"),
		"resume sections come before github sections")
}

func chunkTexts(r *Result) []string {
	out := make([]string, 0, len(r.Chunks))
	for _, c := range r.Chunks {
		out = append(out, c.Text)
	}
	return out
}
