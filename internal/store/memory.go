package store

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/internai/internai/internal/types"
)

// Memory is an in-process Store used by tests and single-node deployments
// without Postgres. Replacement is copy-then-swap under the write lock, so
// concurrent readers never observe a partially replaced chunk set.
type Memory struct {
	mu     sync.RWMutex
	chunks map[uuid.UUID]map[types.SourceKind][]types.ContextChunk
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{chunks: make(map[uuid.UUID]map[types.SourceKind][]types.ContextChunk)}
}

// ReplaceChunks atomically replaces all chunks for (candidateID, source).
func (m *Memory) ReplaceChunks(_ context.Context, candidateID uuid.UUID, source types.SourceKind, chunks []types.ContextChunk) error {
	replacement := make([]types.ContextChunk, len(chunks))
	copy(replacement, chunks)

	m.mu.Lock()
	defer m.mu.Unlock()

	bySource, ok := m.chunks[candidateID]
	if !ok {
		bySource = make(map[types.SourceKind][]types.ContextChunk)
		m.chunks[candidateID] = bySource
	}
	bySource[source] = replacement
	return nil
}

// Query ranks the candidate's chunks by cosine similarity descending,
// breaking ties with shorter chunk text.
func (m *Memory) Query(_ context.Context, candidateID uuid.UUID, vector []float32, topK int) ([]QueryResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []QueryResult
	for _, chunks := range m.chunks[candidateID] {
		for _, chunk := range chunks {
			results = append(results, QueryResult{
				Chunk:      chunk,
				Similarity: CosineSimilarity(vector, chunk.Embedding),
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return len(results[i].Chunk.Text) < len(results[j].Chunk.Text)
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// ListChunks returns all chunks for candidateID, grouped by source.
func (m *Memory) ListChunks(_ context.Context, candidateID uuid.UUID) ([]types.ContextChunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []types.ContextChunk
	for _, source := range []types.SourceKind{types.SourceResume, types.SourceLinkedIn, types.SourceGitHub} {
		out = append(out, m.chunks[candidateID][source]...)
	}
	return out, nil
}

// CountChunks reports how many chunks are indexed for candidateID.
func (m *Memory) CountChunks(_ context.Context, candidateID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, chunks := range m.chunks[candidateID] {
		count += len(chunks)
	}
	return count, nil
}

// CosineSimilarity returns the cosine of the angle between a and b in
// [-1, 1]. Mismatched or zero-length vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
