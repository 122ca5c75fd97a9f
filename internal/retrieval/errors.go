package retrieval

import (
	"fmt"

	"github.com/google/uuid"
)

// EmptyContextError indicates the candidate has zero indexed chunks. It is
// fatal: the pipeline stops before any model call to avoid producing output
// grounded in nothing.
type EmptyContextError struct {
	CandidateID uuid.UUID
}

func (e *EmptyContextError) Error() string {
	return fmt.Sprintf("no indexed context for candidate %s", e.CandidateID)
}
