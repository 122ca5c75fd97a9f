// Package db persists completed optimization runs: the generated texts,
// the score breakdown, and the rendered documents.
package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/internai/internai/internal/types"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the application tables if missing.
func (db *DB) EnsureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS applications (
			id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			candidate_id    UUID NOT NULL,
			job_title       TEXT NOT NULL,
			company         TEXT NOT NULL,
			tailored_resume TEXT NOT NULL,
			cover_letter    TEXT NOT NULL,
			review_feedback TEXT NOT NULL,
			score           JSONB NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS application_documents (
			id             BIGSERIAL PRIMARY KEY,
			application_id UUID NOT NULL REFERENCES applications(id) ON DELETE CASCADE,
			format         TEXT NOT NULL,
			font_size      REAL NOT NULL,
			pages          INT NOT NULL,
			content        BYTEA NOT NULL,
			UNIQUE (application_id, format)
		)`,
		`CREATE INDEX IF NOT EXISTS applications_candidate_idx ON applications (candidate_id)`,
	}
	for _, stmt := range ddl {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// SaveApplication stores a completed run in one transaction and returns the
// application ID. Partial runs are never written; the pipeline only calls
// this after every stage, the score, and all documents have finished.
func (db *DB) SaveApplication(
	ctx context.Context,
	candidateID uuid.UUID,
	jobTitle, company string,
	artifact *types.GenerationArtifact,
	score *types.ScoreBreakdown,
	documents []*types.RenderedDocument,
) (uuid.UUID, error) {
	scoreJSON, err := json.Marshal(score)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal score: %w", err)
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var applicationID uuid.UUID
	err = tx.QueryRow(ctx,
		`INSERT INTO applications (candidate_id, job_title, company, tailored_resume, cover_letter, review_feedback, score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		candidateID, jobTitle, company,
		artifact.TailoredResume, artifact.CoverLetter, artifact.ReviewFeedback,
		scoreJSON,
	).Scan(&applicationID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert application: %w", err)
	}

	for _, doc := range documents {
		_, err = tx.Exec(ctx,
			`INSERT INTO application_documents (application_id, format, font_size, pages, content)
			 VALUES ($1, $2, $3, $4, $5)`,
			applicationID, string(doc.Format), doc.FontSize, doc.Pages, doc.Content,
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert %s document: %w", doc.Format, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit application: %w", err)
	}
	return applicationID, nil
}

// Application is a persisted run without its binary documents.
type Application struct {
	ID             uuid.UUID
	CandidateID    uuid.UUID
	JobTitle       string
	Company        string
	TailoredResume string
	CoverLetter    string
	ReviewFeedback string
	Score          types.ScoreBreakdown
}

// GetApplication loads a persisted run. Returns nil when not found.
func (db *DB) GetApplication(ctx context.Context, applicationID uuid.UUID) (*Application, error) {
	var (
		app       Application
		scoreJSON []byte
	)
	err := db.pool.QueryRow(ctx,
		`SELECT id, candidate_id, job_title, company, tailored_resume, cover_letter, review_feedback, score
		 FROM applications WHERE id = $1`,
		applicationID,
	).Scan(&app.ID, &app.CandidateID, &app.JobTitle, &app.Company,
		&app.TailoredResume, &app.CoverLetter, &app.ReviewFeedback, &scoreJSON)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	if err := json.Unmarshal(scoreJSON, &app.Score); err != nil {
		return nil, fmt.Errorf("failed to unmarshal score: %w", err)
	}
	return &app, nil
}

// GetDocument loads one rendered document for an application. Returns nil
// when not found.
func (db *DB) GetDocument(ctx context.Context, applicationID uuid.UUID, format types.DocumentFormat) (*types.RenderedDocument, error) {
	doc := &types.RenderedDocument{Format: format}
	err := db.pool.QueryRow(ctx,
		`SELECT font_size, pages, content
		 FROM application_documents WHERE application_id = $1 AND format = $2`,
		applicationID, string(format),
	).Scan(&doc.FontSize, &doc.Pages, &doc.Content)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s document: %w", format, err)
	}
	return doc, nil
}
