// Package generation sequences the three language-model stages that produce
// the tailored resume, cover letter and reviewer feedback.
package generation

// Stage identifies one phase of the orchestrator's state machine.
type Stage string

// Orchestrator states. Active stages advance strictly in order; Failed is
// absorbing and reachable from any active stage.
const (
	StagePending     Stage = "pending"
	StageTailoring   Stage = "tailoring"
	StageCoverLetter Stage = "cover_letter"
	StageReviewing   Stage = "reviewing"
	StageComplete    Stage = "complete"
	StageFailed      Stage = "failed"
)

// next returns the stage following s in the happy path.
func (s Stage) next() Stage {
	switch s {
	case StagePending:
		return StageTailoring
	case StageTailoring:
		return StageCoverLetter
	case StageCoverLetter:
		return StageReviewing
	case StageReviewing:
		return StageComplete
	default:
		return StageFailed
	}
}

// Active reports whether s is a generation stage (not a terminal state).
func (s Stage) Active() bool {
	switch s {
	case StageTailoring, StageCoverLetter, StageReviewing:
		return true
	}
	return false
}
