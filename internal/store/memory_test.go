package store

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internai/internai/internal/types"
)

func chunk(source types.SourceKind, text string, vec []float32) types.ContextChunk {
	return types.ContextChunk{Source: source, Text: text, Embedding: vec}
}

func TestMemoryReplaceChunksIsAtomicPerSource(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	candidate := uuid.New()

	require.NoError(t, m.ReplaceChunks(ctx, candidate, types.SourceResume, []types.ContextChunk{
		chunk(types.SourceResume, "old resume", []float32{1, 0}),
	}))
	require.NoError(t, m.ReplaceChunks(ctx, candidate, types.SourceLinkedIn, []types.ContextChunk{
		chunk(types.SourceLinkedIn, "linkedin", []float32{0, 1}),
	}))

	// Replacing the resume leaves LinkedIn untouched.
	require.NoError(t, m.ReplaceChunks(ctx, candidate, types.SourceResume, []types.ContextChunk{
		chunk(types.SourceResume, "new resume A", []float32{1, 0}),
		chunk(types.SourceResume, "new resume B", []float32{1, 0}),
	}))

	all, err := m.ListChunks(ctx, candidate)
	require.NoError(t, err)
	texts := make([]string, 0, len(all))
	for _, c := range all {
		texts = append(texts, c.Text)
	}
	assert.ElementsMatch(t, []string{"new resume A", "new resume B", "linkedin"}, texts)
	assert.NotContains(t, texts, "old resume")
}

func TestMemoryQueryRanksBySimilarityThenLength(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	candidate := uuid.New()

	require.NoError(t, m.ReplaceChunks(ctx, candidate, types.SourceResume, []types.ContextChunk{
		chunk(types.SourceResume, "orthogonal", []float32{0, 1}),
		chunk(types.SourceResume, "aligned and much longer text", []float32{1, 0}),
		chunk(types.SourceResume, "aligned short", []float32{1, 0}),
	}))

	results, err := m.Query(ctx, candidate, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Equal similarity resolves to the shorter text first.
	assert.Equal(t, "aligned short", results[0].Chunk.Text)
	assert.Equal(t, "aligned and much longer text", results[1].Chunk.Text)
}

func TestMemoryQueryIsolatesCandidates(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	require.NoError(t, m.ReplaceChunks(ctx, a, types.SourceResume, []types.ContextChunk{
		chunk(types.SourceResume, "candidate A", []float32{1}),
	}))

	results, err := m.Query(ctx, b, []float32{1}, 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	count, err := m.CountChunks(ctx, b)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMemoryConcurrentReadersSeeWholeSets(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	candidate := uuid.New()

	setA := []types.ContextChunk{
		chunk(types.SourceResume, "A1", []float32{1}),
		chunk(types.SourceResume, "A2", []float32{1}),
	}
	setB := []types.ContextChunk{
		chunk(types.SourceResume, "B1", []float32{1}),
		chunk(types.SourceResume, "B2", []float32{1}),
		chunk(types.SourceResume, "B3", []float32{1}),
	}
	require.NoError(t, m.ReplaceChunks(ctx, candidate, types.SourceResume, setA))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				results, err := m.Query(ctx, candidate, []float32{1}, 10)
				assert.NoError(t, err)
				// Either the old set or the new one, never a mix.
				assert.Contains(t, []int{2, 3}, len(results))
			}
		}()
	}
	for j := 0; j < 100; j++ {
		set := setA
		if j%2 == 0 {
			set = setB
		}
		require.NoError(t, m.ReplaceChunks(ctx, candidate, types.SourceResume, set))
	}
	wg.Wait()
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"mismatched length", []float32{1, 0}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}
