package pipeline

import (
	"github.com/google/uuid"

	"github.com/internai/internai/internal/generation"
	"github.com/internai/internai/internal/types"
)

// EventType enumerates the progress events emitted during a run.
type EventType string

const (
	EventStageStarted     EventType = "stage_started"
	EventTextDelta        EventType = "text_delta"
	EventStageCompleted   EventType = "stage_completed"
	EventScoreReady       EventType = "score_ready"
	EventDocumentReady    EventType = "document_ready"
	EventPipelineFailed   EventType = "pipeline_failed"
	EventPipelineComplete EventType = "pipeline_complete"
)

// Coordinator stages outside the generation state machine, used to tag
// pipeline_failed events with where the run stopped.
const (
	StageRetrieval   generation.Stage = "retrieval"
	StageScoring     generation.Stage = "scoring"
	StageRendering   generation.Stage = "rendering"
	StagePersistence generation.Stage = "persistence"
)

// ErrorKind classifies the failure carried by a pipeline_failed event.
type ErrorKind string

const (
	ErrorKindCancelled      ErrorKind = "cancelled"
	ErrorKindEmptyContext   ErrorKind = "empty_context"
	ErrorKindModelTimeout   ErrorKind = "model_timeout"
	ErrorKindModelTransport ErrorKind = "model_transport"
	ErrorKindScoringInput   ErrorKind = "scoring_input"
	ErrorKindRenderOverflow ErrorKind = "render_overflow"
	ErrorKindInternal       ErrorKind = "internal"
)

// DocumentInfo describes a rendered document in a document_ready event.
// Binary content is deliberately omitted; clients download it separately.
type DocumentInfo struct {
	Format   types.DocumentFormat `json:"format"`
	Pages    int                  `json:"pages"`
	FontSize float64              `json:"font_size"`
}

// Event is one progress update. Exactly the fields relevant to the type
// are populated.
type Event struct {
	Type          EventType             `json:"type"`
	Stage         generation.Stage      `json:"stage,omitempty"`
	Delta         string                `json:"delta,omitempty"`
	Text          string                `json:"text,omitempty"`
	Score         *types.ScoreBreakdown `json:"score,omitempty"`
	Document      *DocumentInfo         `json:"document,omitempty"`
	Error         string                `json:"error,omitempty"`
	ErrorKind     ErrorKind             `json:"error_kind,omitempty"`
	ApplicationID uuid.UUID             `json:"application_id,omitempty"`
}

// EventSink receives events in emission order. Returning an error cancels
// the run.
type EventSink func(Event) error
