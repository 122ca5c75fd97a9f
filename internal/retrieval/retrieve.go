// Package retrieval selects the candidate context most relevant to a job
// description from the context store.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/internai/internai/internal/llm"
	"github.com/internai/internai/internal/store"
	"github.com/internai/internai/internal/types"
)

// ScoredChunk is a retrieved chunk with its similarity to the job description.
type ScoredChunk struct {
	types.ContextChunk
	Similarity float64
}

// Result is the ranked, budgeted context selected for one pipeline run.
// It is transient: owned by the call that produced it, never persisted.
type Result struct {
	Chunks     []ScoredChunk
	TotalChars int
}

// ContextText formats the retrieved chunks into the block injected into
// generation prompts, grouped by source document.
func (r *Result) ContextText() string {
	headers := map[types.SourceKind]string{
		types.SourceResume:   "### Most Relevant Resume Sections:",
		types.SourceLinkedIn: "### Relevant LinkedIn Experience:",
		types.SourceGitHub:   "### Relevant GitHub Projects:",
	}

	var sections []string
	for _, source := range []types.SourceKind{types.SourceResume, types.SourceLinkedIn, types.SourceGitHub} {
		var texts []string
		for _, chunk := range r.Chunks {
			if chunk.Source == source {
				texts = append(texts, chunk.Text)
			}
		}
		if len(texts) > 0 {
			sections = append(sections, headers[source]+"\n"+strings.Join(texts, "\n---\n"))
		}
	}
	return strings.Join(sections, "\n\n")
}

// Retriever ranks a candidate's indexed chunks against a job description.
type Retriever struct {
	store    store.Store
	embedder llm.Embedder
}

// New creates a Retriever over the given store and embedder.
func New(s store.Store, embedder llm.Embedder) *Retriever {
	return &Retriever{store: s, embedder: embedder}
}

// Retrieve embeds the job description once and returns up to topK chunks in
// rank order, subject to a running character budget. A chunk that would
// overflow the budget is skipped whole, never truncated. Candidates with no
// indexed material fail with EmptyContextError before any model call.
func (r *Retriever) Retrieve(ctx context.Context, jobDescription string, candidateID uuid.UUID, topK, maxChars int) (*Result, error) {
	count, err := r.store.CountChunks(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to count candidate chunks: %w", err)
	}
	if count == 0 {
		return nil, &EmptyContextError{CandidateID: candidateID}
	}

	vector, err := r.embedder.Embed(ctx, jobDescription)
	if err != nil {
		return nil, fmt.Errorf("failed to embed job description: %w", err)
	}

	ranked, err := r.store.Query(ctx, candidateID, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query context store: %w", err)
	}

	result := &Result{}
	seen := make(map[string]bool)
	for _, qr := range ranked {
		if seen[qr.Chunk.Text] {
			continue
		}
		if result.TotalChars+len(qr.Chunk.Text) > maxChars {
			continue
		}
		seen[qr.Chunk.Text] = true
		result.Chunks = append(result.Chunks, ScoredChunk{ContextChunk: qr.Chunk, Similarity: qr.Similarity})
		result.TotalChars += len(qr.Chunk.Text)
	}

	return result, nil
}
