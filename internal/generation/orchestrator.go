package generation

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/internai/internai/internal/config"
	"github.com/internai/internai/internal/llm"
	"github.com/internai/internai/internal/logger"
	"github.com/internai/internai/internal/prompts"
	"github.com/internai/internai/internal/types"
)

// Review runs at a lower temperature than the creative stages.
const reviewTemperature = 0.1

// Hooks receives stage lifecycle notifications and streamed text deltas.
// OnDelta is called for every increment as it arrives; returning an error
// stops the stream. Nil hooks are skipped.
type Hooks struct {
	OnStageStarted   func(stage Stage)
	OnDelta          func(stage Stage, delta string) error
	OnStageCompleted func(stage Stage, fullText string)
}

// Orchestrator drives the TAILORING -> COVER_LETTER -> REVIEWING sequence.
// It is stateless across runs and safe for concurrent use; each Run owns its
// own state machine.
type Orchestrator struct {
	client llm.Client
	cfg    *config.Config
	log    *zap.Logger
}

// New creates an Orchestrator.
func New(client llm.Client, cfg *config.Config, log *zap.Logger) *Orchestrator {
	return &Orchestrator{client: client, cfg: cfg, log: log}
}

// run tracks one invocation's position in the state machine.
type run struct {
	state Stage
}

// advance moves to the next happy-path stage.
func (r *run) advance() { r.state = r.state.next() }

// fail moves to the absorbing failed state and tags err with the stage it
// occurred in.
func (r *run) fail(err error) error {
	stage := r.state
	r.state = StageFailed
	return &StageError{Stage: stage, Err: err}
}

// Run executes all three stages strictly in sequence; later stages condition
// on earlier output, so no stage starts before the prior stage's text is
// finalized. The review stage sees only the tailored resume and the job
// description, never the retrieved context, to force independent critique.
func (o *Orchestrator) Run(ctx context.Context, req *types.GenerationRequest, hooks Hooks) (*types.GenerationArtifact, error) {
	r := &run{state: StagePending}
	artifact := &types.GenerationArtifact{}

	r.advance() // TAILORING
	tailored, err := o.runStage(ctx, r.state, hooks, llm.CompletionRequest{
		Model:        o.cfg.PrimaryModel,
		SystemPrompt: prompts.MustGet("generation.json", "tailor_system"),
		UserPrompt: prompts.Format(prompts.MustGet("generation.json", "tailor_user"), map[string]string{
			"JobTitle":       req.JobTitle,
			"Company":        req.Company,
			"JobDescription": req.JobDescription,
			"Context":        req.Context,
			"Skills":         strings.Join(req.Skills, ", "),
		}),
		Temperature: o.cfg.Temperature,
		MaxTokens:   o.cfg.MaxTokens,
	})
	if err != nil {
		return artifact, r.fail(err)
	}
	artifact.TailoredResume = tailored
	artifact.Timestamps.TailoredAt = time.Now().UTC()

	r.advance() // COVER_LETTER
	cover, err := o.runStage(ctx, r.state, hooks, llm.CompletionRequest{
		Model:        o.cfg.PrimaryModel,
		SystemPrompt: prompts.MustGet("generation.json", "cover_system"),
		UserPrompt: prompts.Format(prompts.MustGet("generation.json", "cover_user"), map[string]string{
			"JobTitle":       req.JobTitle,
			"Company":        req.Company,
			"JobDescription": req.JobDescription,
			"Context":        req.Context,
			"TailoredResume": tailored,
		}),
		Temperature: o.cfg.Temperature,
		MaxTokens:   o.cfg.MaxTokens,
	})
	if err != nil {
		return artifact, r.fail(err)
	}
	artifact.CoverLetter = cover
	artifact.Timestamps.CoverLetterAt = time.Now().UTC()

	r.advance() // REVIEWING
	review, err := o.runStage(ctx, r.state, hooks, llm.CompletionRequest{
		Model:        o.cfg.ReviewerModel,
		SystemPrompt: prompts.MustGet("generation.json", "review_system"),
		UserPrompt: prompts.Format(prompts.MustGet("generation.json", "review_user"), map[string]string{
			"JobDescription": req.JobDescription,
			"TailoredResume": tailored,
		}),
		Temperature: reviewTemperature,
		MaxTokens:   o.cfg.MaxTokens,
	})
	if err != nil {
		return artifact, r.fail(err)
	}
	artifact.ReviewFeedback = review
	artifact.Timestamps.ReviewedAt = time.Now().UTC()

	r.advance() // COMPLETE
	return artifact, nil
}

// runStage issues one streaming model call, forwarding every increment to
// the hooks immediately.
func (o *Orchestrator) runStage(ctx context.Context, stage Stage, hooks Hooks, req llm.CompletionRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if hooks.OnStageStarted != nil {
		hooks.OnStageStarted(stage)
	}

	stageCtx := ctx
	if o.cfg.StageTimeoutSec > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, time.Duration(o.cfg.StageTimeoutSec)*time.Second)
		defer cancel()
	}

	started := time.Now()
	full, err := o.client.StreamComplete(stageCtx, req, func(delta string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if hooks.OnDelta != nil {
			return hooks.OnDelta(stage, delta)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	o.log.Debug("stage finished",
		zap.String("stage", string(stage)),
		zap.String("model", req.Model),
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("chars", len(full)),
		zap.String("text", logger.Truncate(full, 200)),
	)

	if hooks.OnStageCompleted != nil {
		hooks.OnStageCompleted(stage, full)
	}
	return full, nil
}
