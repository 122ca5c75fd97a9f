// Package pipeline coordinates one optimization run end to end: context
// retrieval, the three generation stages, scoring, document rendering, and
// persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/internai/internai/internal/config"
	"github.com/internai/internai/internal/generation"
	"github.com/internai/internai/internal/llm"
	"github.com/internai/internai/internal/rendering"
	"github.com/internai/internai/internal/retrieval"
	"github.com/internai/internai/internal/scoring"
	"github.com/internai/internai/internal/skills"
	"github.com/internai/internai/internal/store"
	"github.com/internai/internai/internal/types"
)

// Request identifies one optimization run.
type Request struct {
	CandidateID    uuid.UUID
	JobTitle       string
	Company        string
	JobDescription string
	// Skills overrides the extracted inventory when non-empty.
	Skills []string
}

// Outcome is the completed run's output.
type Outcome struct {
	Artifact      *types.GenerationArtifact
	Score         *types.ScoreBreakdown
	Documents     []*types.RenderedDocument
	ApplicationID uuid.UUID
}

// Persister stores a completed run. Implemented by db.DB.
type Persister interface {
	SaveApplication(
		ctx context.Context,
		candidateID uuid.UUID,
		jobTitle, company string,
		artifact *types.GenerationArtifact,
		score *types.ScoreBreakdown,
		documents []*types.RenderedDocument,
	) (uuid.UUID, error)
}

// Coordinator wires the run stages together. Runs are independent; a
// Coordinator handles concurrent runs without shared mutable state.
type Coordinator struct {
	retriever    *retrieval.Retriever
	orchestrator *generation.Orchestrator
	scorer       *scoring.Scorer
	renderer     *rendering.Renderer
	skills       skills.Provider
	embedder     llm.Embedder
	persister    Persister
	cfg          *config.Config
	log          *zap.Logger
}

// NewCoordinator assembles a Coordinator. persister may be nil; completed
// runs are then not stored and the outcome carries a nil application ID.
func NewCoordinator(
	retriever *retrieval.Retriever,
	orchestrator *generation.Orchestrator,
	scorer *scoring.Scorer,
	renderer *rendering.Renderer,
	skillProvider skills.Provider,
	embedder llm.Embedder,
	persister Persister,
	cfg *config.Config,
	log *zap.Logger,
) *Coordinator {
	return &Coordinator{
		retriever:    retriever,
		orchestrator: orchestrator,
		scorer:       scorer,
		renderer:     renderer,
		skills:       skillProvider,
		embedder:     embedder,
		persister:    persister,
		cfg:          cfg,
		log:          log,
	}
}

// Run executes the full pipeline, emitting progress events to sink as they
// occur. On any failure the run stops, a pipeline_failed event is emitted,
// and nothing is persisted; a cancelled context behaves the same way.
// Persistence happens only after generation, scoring, and both documents
// have all succeeded.
func (c *Coordinator) Run(ctx context.Context, req *Request, sink EventSink) (*Outcome, error) {
	outcome, err := c.run(ctx, req, sink)
	if err != nil {
		c.log.Warn("pipeline run failed",
			zap.String("candidate_id", req.CandidateID.String()),
			zap.Error(err),
		)
		stage, kind := failureInfo(err)
		c.emit(sink, Event{Type: EventPipelineFailed, Stage: stage, ErrorKind: kind, Error: err.Error()})
		return nil, err
	}
	return outcome, nil
}

func (c *Coordinator) run(ctx context.Context, req *Request, sink EventSink) (*Outcome, error) {
	retrieved, err := c.retriever.Retrieve(ctx, req.JobDescription, req.CandidateID, c.cfg.TopK, c.cfg.MaxChars)
	if err != nil {
		return nil, &stageTag{stage: StageRetrieval, err: err}
	}
	c.log.Debug("context retrieved",
		zap.Int("chunks", len(retrieved.Chunks)),
		zap.Int("chars", retrieved.TotalChars),
	)

	inventory := req.Skills
	if len(inventory) == 0 {
		inventory, err = c.skills.GetSkills(ctx, req.CandidateID)
		if err != nil {
			return nil, &stageTag{stage: StageRetrieval, err: fmt.Errorf("failed to load skill inventory: %w", err)}
		}
	}

	genReq := &types.GenerationRequest{
		JobTitle:       req.JobTitle,
		Company:        req.Company,
		JobDescription: req.JobDescription,
		Context:        retrieved.ContextText(),
		Skills:         inventory,
	}

	artifact, err := c.orchestrator.Run(ctx, genReq, generation.Hooks{
		OnStageStarted: func(stage generation.Stage) {
			c.emit(sink, Event{Type: EventStageStarted, Stage: stage})
		},
		OnDelta: func(stage generation.Stage, delta string) error {
			return c.emit(sink, Event{Type: EventTextDelta, Stage: stage, Delta: delta})
		},
		OnStageCompleted: func(stage generation.Stage, fullText string) {
			c.emit(sink, Event{Type: EventStageCompleted, Stage: stage, Text: fullText})
		},
	})
	if err != nil {
		return nil, err
	}

	score, documents, err := c.evaluate(ctx, req.JobDescription, artifact.TailoredResume, inventory, sink)
	if err != nil {
		return nil, err
	}

	// A cancellation that raced the evaluation still means no persistence.
	if err := ctx.Err(); err != nil {
		return nil, &stageTag{stage: StagePersistence, err: err}
	}

	outcome := &Outcome{Artifact: artifact, Score: score, Documents: documents}
	if c.persister != nil {
		outcome.ApplicationID, err = c.persister.SaveApplication(
			ctx, req.CandidateID, req.JobTitle, req.Company, artifact, score, documents)
		if err != nil {
			return nil, &stageTag{stage: StagePersistence, err: err}
		}
	}

	c.emit(sink, Event{Type: EventPipelineComplete, ApplicationID: outcome.ApplicationID, Score: score})
	return outcome, nil
}

// evaluate runs scoring and both document renders concurrently.
func (c *Coordinator) evaluate(
	ctx context.Context,
	jobDescription, tailoredResume string,
	inventory []string,
	sink EventSink,
) (*types.ScoreBreakdown, []*types.RenderedDocument, error) {
	var (
		score *types.ScoreBreakdown
		pdf   *types.RenderedDocument
		docx  *types.RenderedDocument
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		similarity, err := c.semanticSimilarity(gctx, tailoredResume, jobDescription)
		if err != nil {
			return &stageTag{stage: StageScoring, err: err}
		}
		if score, err = c.scorer.Score(tailoredResume, jobDescription, inventory, similarity); err != nil {
			return &stageTag{stage: StageScoring, err: err}
		}
		return nil
	})

	g.Go(func() error {
		var err error
		if pdf, err = c.renderer.Render(tailoredResume, types.FormatPDF); err != nil {
			return &stageTag{stage: StageRendering, err: err}
		}
		return nil
	})

	g.Go(func() error {
		var err error
		if docx, err = c.renderer.Render(tailoredResume, types.FormatDOCX); err != nil {
			return &stageTag{stage: StageRendering, err: err}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	c.emit(sink, Event{Type: EventScoreReady, Score: score})
	for _, doc := range []*types.RenderedDocument{pdf, docx} {
		c.emit(sink, Event{Type: EventDocumentReady, Document: &DocumentInfo{
			Format:   doc.Format,
			Pages:    doc.Pages,
			FontSize: doc.FontSize,
		}})
	}

	return score, []*types.RenderedDocument{pdf, docx}, nil
}

// semanticSimilarity embeds both texts and returns their cosine in [-1, 1].
func (c *Coordinator) semanticSimilarity(ctx context.Context, resumeText, jobDescription string) (float64, error) {
	resumeVec, err := c.embedder.Embed(ctx, resumeText)
	if err != nil {
		return 0, fmt.Errorf("failed to embed resume: %w", err)
	}
	jobVec, err := c.embedder.Embed(ctx, jobDescription)
	if err != nil {
		return 0, fmt.Errorf("failed to embed job description: %w", err)
	}
	return store.CosineSimilarity(resumeVec, jobVec), nil
}

// stageTag attaches a coordinator stage to errors arising outside the
// generation state machine, so failure events always carry the stage that
// stopped the run.
type stageTag struct {
	stage generation.Stage
	err   error
}

func (e *stageTag) Error() string { return e.err.Error() }
func (e *stageTag) Unwrap() error { return e.err }

// failureInfo resolves a fatal error to the stage it occurred in and a
// machine-readable kind for the pipeline_failed event.
func failureInfo(err error) (generation.Stage, ErrorKind) {
	var (
		stageErr     *generation.StageError
		tag          *stageTag
		emptyCtx     *retrieval.EmptyContextError
		inputErr     *scoring.InputError
		renderErr    *rendering.RenderError
		timeoutErr   *llm.TimeoutError
		transportErr *llm.TransportError
	)

	stage := StageRetrieval
	switch {
	case errors.As(err, &stageErr):
		stage = stageErr.Stage
	case errors.As(err, &tag):
		stage = tag.stage
	}

	kind := ErrorKindInternal
	switch {
	case errors.Is(err, context.Canceled):
		kind = ErrorKindCancelled
	case errors.As(err, &emptyCtx):
		kind = ErrorKindEmptyContext
	case errors.As(err, &timeoutErr):
		kind = ErrorKindModelTimeout
	case errors.As(err, &transportErr):
		kind = ErrorKindModelTransport
	case errors.As(err, &inputErr):
		kind = ErrorKindScoringInput
	case errors.As(err, &renderErr):
		kind = ErrorKindRenderOverflow
	}
	return stage, kind
}

// emit forwards an event, tolerating a nil sink. Sink errors surface only
// through OnDelta, where the orchestrator propagates them.
func (c *Coordinator) emit(sink EventSink, event Event) error {
	if sink == nil {
		return nil
	}
	return sink(event)
}
