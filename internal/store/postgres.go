package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"github.com/internai/internai/internal/types"
)

// Postgres is the pgvector-backed Store. Replacement runs delete+insert in
// one transaction, which gives readers the replace-then-swap guarantee.
type Postgres struct {
	pool *pgxpool.Pool
}

// ConnectPostgres establishes a pgvector-aware connection pool.
func ConnectPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// EnsureSchema creates the chunk table and the pgvector extension if missing.
func (p *Postgres) EnsureSchema(ctx context.Context, dimensions int) error {
	if _, err := p.pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS context_chunks (
			id           BIGSERIAL PRIMARY KEY,
			candidate_id UUID NOT NULL,
			source       TEXT NOT NULL,
			chunk_index  INT NOT NULL,
			content      TEXT NOT NULL,
			embedding    vector(%d) NOT NULL
		)`, dimensions)
	if _, err := p.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create context_chunks table: %w", err)
	}

	_, err := p.pool.Exec(ctx,
		`CREATE INDEX IF NOT EXISTS context_chunks_candidate_idx ON context_chunks (candidate_id)`)
	if err != nil {
		return fmt.Errorf("failed to create candidate index: %w", err)
	}
	return nil
}

// ReplaceChunks atomically replaces all chunks for (candidateID, source).
func (p *Postgres) ReplaceChunks(ctx context.Context, candidateID uuid.UUID, source types.SourceKind, chunks []types.ContextChunk) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx,
		`DELETE FROM context_chunks WHERE candidate_id = $1 AND source = $2`,
		candidateID, string(source),
	)
	if err != nil {
		return fmt.Errorf("failed to delete old chunks: %w", err)
	}

	for _, chunk := range chunks {
		_, err = tx.Exec(ctx,
			`INSERT INTO context_chunks (candidate_id, source, chunk_index, content, embedding)
			 VALUES ($1, $2, $3, $4, $5)`,
			candidateID, string(chunk.Source), chunk.OriginOffset, chunk.Text,
			pgvector.NewVector(chunk.Embedding),
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit chunk replacement: %w", err)
	}
	return nil
}

// Query returns the candidate's top-K chunks by cosine similarity descending,
// ties broken by shorter chunk text.
func (p *Postgres) Query(ctx context.Context, candidateID uuid.UUID, vector []float32, topK int) ([]QueryResult, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT source, chunk_index, content, 1 - (embedding <=> $2) AS similarity
		 FROM context_chunks
		 WHERE candidate_id = $1
		 ORDER BY embedding <=> $2, length(content)
		 LIMIT $3`,
		candidateID, pgvector.NewVector(vector), topK,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			source     string
			chunkIndex int
			content    string
			similarity float64
		)
		if err := rows.Scan(&source, &chunkIndex, &content, &similarity); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		results = append(results, QueryResult{
			Chunk: types.ContextChunk{
				Source:       types.SourceKind(source),
				Text:         content,
				OriginOffset: chunkIndex,
			},
			Similarity: similarity,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chunk rows: %w", err)
	}
	return results, nil
}

// ListChunks returns all chunks for candidateID in insertion order.
func (p *Postgres) ListChunks(ctx context.Context, candidateID uuid.UUID) ([]types.ContextChunk, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT source, chunk_index, content
		 FROM context_chunks
		 WHERE candidate_id = $1
		 ORDER BY source, chunk_index`,
		candidateID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks: %w", err)
	}
	defer rows.Close()

	var chunks []types.ContextChunk
	for rows.Next() {
		var (
			source     string
			chunkIndex int
			content    string
		)
		if err := rows.Scan(&source, &chunkIndex, &content); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		chunks = append(chunks, types.ContextChunk{
			Source:       types.SourceKind(source),
			Text:         content,
			OriginOffset: chunkIndex,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chunk rows: %w", err)
	}
	return chunks, nil
}

// CountChunks reports how many chunks are indexed for candidateID.
func (p *Postgres) CountChunks(ctx context.Context, candidateID uuid.UUID) (int, error) {
	var count int
	err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM context_chunks WHERE candidate_id = $1`, candidateID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}
