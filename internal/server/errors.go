package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/internai/internai/internal/generation"
	"github.com/internai/internai/internal/llm"
	"github.com/internai/internai/internal/rendering"
	"github.com/internai/internai/internal/retrieval"
	"github.com/internai/internai/internal/scoring"
)

// HTTPStatus maps pipeline errors to response codes. Stage failures unwrap
// to the transport error underneath when one is present.
func HTTPStatus(err error) int {
	var (
		emptyContext *retrieval.EmptyContextError
		inputErr     *scoring.InputError
		renderErr    *rendering.RenderError
		stageErr     *generation.StageError
		timeoutErr   *llm.TimeoutError
		transportErr *llm.TransportError
	)

	switch {
	case errors.Is(err, context.Canceled):
		// Client went away; 499 mirrors the nginx convention.
		return 499
	case errors.As(err, &emptyContext):
		return http.StatusPreconditionFailed
	case errors.As(err, &inputErr):
		return http.StatusBadRequest
	case errors.As(err, &renderErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout
	case errors.As(err, &transportErr):
		return http.StatusBadGateway
	case errors.As(err, &stageErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
