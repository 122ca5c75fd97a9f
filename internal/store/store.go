// Package store implements the context store: chunked, embedded candidate
// documents with similarity search. Writes replace a candidate's chunk set
// per source atomically; readers always see either the fully old or fully
// new set, never a partial mix.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/internai/internai/internal/types"
)

// QueryResult pairs a chunk with its similarity to the query vector.
type QueryResult struct {
	Chunk      types.ContextChunk
	Similarity float64
}

// Store is the context store contract consumed by the retriever and the
// indexing endpoints.
type Store interface {
	// ReplaceChunks atomically replaces all chunks for (candidateID, source).
	ReplaceChunks(ctx context.Context, candidateID uuid.UUID, source types.SourceKind, chunks []types.ContextChunk) error
	// Query returns up to topK chunks for candidateID ranked by similarity
	// descending, ties broken by shorter chunk text.
	Query(ctx context.Context, candidateID uuid.UUID, vector []float32, topK int) ([]QueryResult, error)
	// ListChunks returns all chunks indexed for candidateID in insertion order.
	ListChunks(ctx context.Context, candidateID uuid.UUID) ([]types.ContextChunk, error)
	// CountChunks reports how many chunks are indexed for candidateID.
	CountChunks(ctx context.Context, candidateID uuid.UUID) (int, error)
}
