package llm

import "fmt"

// TransportError indicates a network or service failure during a model call.
// It is stage-fatal: the pipeline surfaces it and stops without retrying.
type TransportError struct {
	Model string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("model transport error (%s): %v", e.Model, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// TimeoutError indicates a model call exceeded its deadline. Stage-fatal,
// same handling as TransportError; the caller may restart the affected
// stage with a fresh request.
type TimeoutError struct {
	Model string
	Err   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("model timeout (%s): %v", e.Model, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }
