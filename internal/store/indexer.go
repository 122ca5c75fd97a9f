package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/internai/internai/internal/llm"
	"github.com/internai/internai/internal/types"
)

// GitHubRepo is the summarized repository input handed to the indexer by the
// external GitHub glue. README text arrives already fetched and truncated.
type GitHubRepo struct {
	Name        string   `json:"repo_name"`
	Description string   `json:"description,omitempty"`
	Language    string   `json:"language,omitempty"`
	Topics      []string `json:"topics,omitempty"`
	Readme      string   `json:"readme_text,omitempty"`
}

// Indexer chunks and embeds candidate documents into the context store.
type Indexer struct {
	store    Store
	embedder llm.Embedder
	size     int
	overlap  int
}

// NewIndexer builds an Indexer with the configured chunking policy.
func NewIndexer(s Store, embedder llm.Embedder, chunkSize, chunkOverlap int) *Indexer {
	return &Indexer{store: s, embedder: embedder, size: chunkSize, overlap: chunkOverlap}
}

// IndexResume replaces the candidate's resume chunks with freshly chunked and
// embedded text. Returns the number of chunks indexed.
func (ix *Indexer) IndexResume(ctx context.Context, candidateID uuid.UUID, resumeText string) (int, error) {
	return ix.index(ctx, candidateID, types.SourceResume, resumeText)
}

// IndexLinkedIn replaces the candidate's LinkedIn chunks. The three profile
// sections are concatenated before chunking, matching the upload flow.
func (ix *Indexer) IndexLinkedIn(ctx context.Context, candidateID uuid.UUID, about, experiences, skills string) (int, error) {
	parts := make([]string, 0, 3)
	for _, p := range []string{about, experiences, skills} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return ix.index(ctx, candidateID, types.SourceLinkedIn, strings.Join(parts, "\n\n"))
}

// IndexGitHub replaces the candidate's GitHub chunks. Each repository is
// flattened to a text block before chunking.
func (ix *Indexer) IndexGitHub(ctx context.Context, candidateID uuid.UUID, repos []GitHubRepo) (int, error) {
	blocks := make([]string, 0, len(repos))
	for _, repo := range repos {
		blocks = append(blocks, repoToText(repo))
	}
	return ix.index(ctx, candidateID, types.SourceGitHub, strings.Join(blocks, "\n\n"))
}

func (ix *Indexer) index(ctx context.Context, candidateID uuid.UUID, source types.SourceKind, text string) (int, error) {
	texts := ChunkText(text, ix.size, ix.overlap)
	chunks := make([]types.ContextChunk, 0, len(texts))

	for i, t := range texts {
		vec, err := ix.embedder.Embed(ctx, t)
		if err != nil {
			return 0, fmt.Errorf("failed to embed %s chunk %d: %w", source, i, err)
		}
		chunks = append(chunks, types.ContextChunk{
			Source:       source,
			Text:         t,
			Embedding:    vec,
			OriginOffset: i,
		})
	}

	if err := ix.store.ReplaceChunks(ctx, candidateID, source, chunks); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

func repoToText(repo GitHubRepo) string {
	parts := []string{fmt.Sprintf("Repository: %s", repo.Name)}
	if repo.Description != "" {
		parts = append(parts, fmt.Sprintf("Description: %s", repo.Description))
	}
	if repo.Language != "" {
		parts = append(parts, fmt.Sprintf("Primary language: %s", repo.Language))
	}
	if len(repo.Topics) > 0 {
		parts = append(parts, fmt.Sprintf("Topics: %s", strings.Join(repo.Topics, ", ")))
	}
	if repo.Readme != "" {
		readme := repo.Readme
		if len(readme) > 1000 {
			readme = readme[:1000]
		}
		parts = append(parts, fmt.Sprintf("README:\n%s", readme))
	}
	return strings.Join(parts, "\n")
}
