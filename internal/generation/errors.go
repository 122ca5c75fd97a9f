package generation

import "fmt"

// StageError tags a failure with the stage it occurred in. The orchestrator
// never retries; re-invoking Run with the same request is the caller's retry.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
