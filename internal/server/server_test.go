package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/internai/internai/internal/config"
	"github.com/internai/internai/internal/generation"
	"github.com/internai/internai/internal/llm"
	"github.com/internai/internai/internal/pipeline"
	"github.com/internai/internai/internal/rendering"
	"github.com/internai/internai/internal/retrieval"
	"github.com/internai/internai/internal/scoring"
	"github.com/internai/internai/internal/skills"
	"github.com/internai/internai/internal/store"
	"github.com/internai/internai/internal/types"
)

// stubModelClient produces fixed text per stage and a constant embedding so
// pipeline runs behind the handlers are deterministic.
type stubModelClient struct {
	mu    sync.Mutex
	calls int
}

func (c *stubModelClient) stageOutput(call int) string {
	switch call {
	case 1:
		return "SUMMARY\nSenior engineer with Python experience.\n\nEXPERIENCE\n- Built data pipelines"
	case 2:
		return "Dear Hiring Manager,\n\nI am excited to apply."
	default:
		return "Strong alignment with the role. No gaps found."
	}
}

func (c *stubModelClient) StreamComplete(ctx context.Context, _ llm.CompletionRequest, sink llm.DeltaSink) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	c.calls++
	out := c.stageOutput(c.calls)
	c.mu.Unlock()

	if sink != nil {
		mid := len(out) / 2
		if err := sink(out[:mid]); err != nil {
			return out[:mid], err
		}
		if err := sink(out[mid:]); err != nil {
			return out, err
		}
	}
	return out, nil
}

func (c *stubModelClient) Complete(context.Context, llm.CompletionRequest) (string, error) {
	return "[]", nil
}

func (c *stubModelClient) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (c *stubModelClient) Close() error { return nil }

func newTestHandler(t *testing.T) (http.Handler, store.Store) {
	t.Helper()

	cfg := config.Default()
	log := zap.NewNop()
	client := &stubModelClient{}
	s := store.NewMemory()

	coordinator := pipeline.NewCoordinator(
		retrieval.New(s, client),
		generation.New(client, cfg, log),
		scoring.New(cfg.ScoreWeights),
		rendering.New(cfg.FontSizes),
		skills.Static{"Python"},
		client,
		nil,
		cfg,
		log,
	)
	indexer := store.NewIndexer(s, client, cfg.ChunkSize, cfg.ChunkOverlap)
	srv := New(coordinator, indexer, s, nil, cfg, log)
	return srv.httpServer.Handler, s
}

func seedCandidate(t *testing.T, s store.Store) uuid.UUID {
	t.Helper()
	candidateID := uuid.New()
	err := s.ReplaceChunks(context.Background(), candidateID, types.SourceResume, []types.ContextChunk{
		{Source: types.SourceResume, Text: "Built Python data pipelines at scale.", Embedding: []float32{1, 0}},
	})
	require.NoError(t, err)
	return candidateID
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func TestHealth(t *testing.T) {
	handler, _ := newTestHandler(t)
	ts := httptest.NewServer(handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestCORSPreflight(t *testing.T) {
	handler, _ := newTestHandler(t)
	ts := httptest.NewServer(handler)
	defer ts.Close()

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/optimize", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestOptimizeRejectsBadRequests(t *testing.T) {
	handler, _ := newTestHandler(t)
	ts := httptest.NewServer(handler)
	defer ts.Close()

	tests := []struct {
		name string
		body any
	}{
		{"missing candidate", OptimizeRequest{JobTitle: "Engineer", Company: "Acme", JobDescription: "desc"}},
		{"candidate not a uuid", OptimizeRequest{CandidateID: "not-a-uuid", JobTitle: "Engineer", Company: "Acme", JobDescription: "desc"}},
		{"missing job title", OptimizeRequest{CandidateID: uuid.NewString(), Company: "Acme", JobDescription: "desc"}},
		{"neither description nor url", OptimizeRequest{CandidateID: uuid.NewString(), JobTitle: "Engineer", Company: "Acme"}},
		{"malformed url", OptimizeRequest{CandidateID: uuid.NewString(), JobTitle: "Engineer", Company: "Acme", JobURL: "not a url"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts, "/optimize", tt.body)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestOptimizeInvalidJSONBody(t *testing.T) {
	handler, _ := newTestHandler(t)
	ts := httptest.NewServer(handler)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/optimize", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestIndexResumeAndChunkCount(t *testing.T) {
	handler, _ := newTestHandler(t)
	ts := httptest.NewServer(handler)
	defer ts.Close()
	candidateID := uuid.New()

	resp := postJSON(t, ts, "/candidates/"+candidateID.String()+"/resume", IndexTextRequest{
		Text: "Senior engineer.\n\nBuilt streaming systems in Go.",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var indexed map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&indexed))
	chunks := indexed["chunks"].(float64)
	assert.Greater(t, chunks, 0.0)

	countResp, err := http.Get(ts.URL + "/candidates/" + candidateID.String() + "/chunks")
	require.NoError(t, err)
	defer countResp.Body.Close()
	require.Equal(t, http.StatusOK, countResp.StatusCode)

	var counted map[string]float64
	require.NoError(t, json.NewDecoder(countResp.Body).Decode(&counted))
	assert.Equal(t, chunks, counted["chunks"])
}

func TestIndexResumeRejectsBadInput(t *testing.T) {
	handler, _ := newTestHandler(t)
	ts := httptest.NewServer(handler)
	defer ts.Close()

	resp := postJSON(t, ts, "/candidates/not-a-uuid/resume", IndexTextRequest{Text: "text"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, ts, "/candidates/"+uuid.NewString()+"/resume", IndexTextRequest{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestIndexLinkedInRequiresASection(t *testing.T) {
	handler, _ := newTestHandler(t)
	ts := httptest.NewServer(handler)
	defer ts.Close()

	resp := postJSON(t, ts, "/candidates/"+uuid.NewString()+"/linkedin", IndexLinkedInRequest{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestIndexGitHubRequiresRepos(t *testing.T) {
	handler, _ := newTestHandler(t)
	ts := httptest.NewServer(handler)
	defer ts.Close()

	resp := postJSON(t, ts, "/candidates/"+uuid.NewString()+"/github", IndexGitHubRequest{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOptimizeSync(t *testing.T) {
	handler, s := newTestHandler(t)
	ts := httptest.NewServer(handler)
	defer ts.Close()
	candidateID := seedCandidate(t, s)

	resp := postJSON(t, ts, "/optimize", OptimizeRequest{
		CandidateID:    candidateID.String(),
		JobTitle:       "Data Engineer",
		Company:        "Acme",
		JobDescription: "We need Python experience building data pipelines.",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Contains(t, body["tailored_resume"], "Python")
	assert.Contains(t, body["cover_letter"], "Dear Hiring Manager")
	assert.NotEmpty(t, body["review_feedback"])
	require.NotNil(t, body["score"])
	// No persister is wired in tests, so the id stays zero.
	assert.Equal(t, uuid.Nil.String(), body["application_id"])
}

func TestOptimizeEmptyCandidate(t *testing.T) {
	handler, _ := newTestHandler(t)
	ts := httptest.NewServer(handler)
	defer ts.Close()

	resp := postJSON(t, ts, "/optimize", OptimizeRequest{
		CandidateID:    uuid.NewString(),
		JobTitle:       "Data Engineer",
		Company:        "Acme",
		JobDescription: "We need Python experience.",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusPreconditionFailed, resp.StatusCode)
}

func TestOptimizeStream(t *testing.T) {
	handler, s := newTestHandler(t)
	ts := httptest.NewServer(handler)
	defer ts.Close()
	candidateID := seedCandidate(t, s)

	resp := postJSON(t, ts, "/optimize/stream", OptimizeRequest{
		CandidateID:    candidateID.String(),
		JobTitle:       "Data Engineer",
		Company:        "Acme",
		JobDescription: "We need Python experience building data pipelines.",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	stream := string(raw)

	for _, event := range []string{
		"event: stage_started",
		"event: text_delta",
		"event: stage_completed",
		"event: score_ready",
		"event: document_ready",
		"event: pipeline_complete",
	} {
		assert.Contains(t, stream, event)
	}
	assert.NotContains(t, stream, "event: pipeline_failed")
}

func TestOptimizeStreamEmitsFailure(t *testing.T) {
	handler, _ := newTestHandler(t)
	ts := httptest.NewServer(handler)
	defer ts.Close()

	resp := postJSON(t, ts, "/optimize/stream", OptimizeRequest{
		CandidateID:    uuid.NewString(),
		JobTitle:       "Data Engineer",
		Company:        "Acme",
		JobDescription: "We need Python experience.",
	})
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	stream := string(raw)

	assert.Contains(t, stream, "event: pipeline_failed")
	assert.Contains(t, stream, "event: error")
	assert.NotContains(t, stream, "event: pipeline_complete")
}

func TestApplicationLookupsWithoutPersistence(t *testing.T) {
	handler, _ := newTestHandler(t)
	ts := httptest.NewServer(handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/applications/" + uuid.NewString())
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/applications/" + uuid.NewString() + "/documents/pdf")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"cancellation", context.Canceled, 499},
		{"wrapped cancellation", fmt.Errorf("run: %w", context.Canceled), 499},
		{"empty context", &retrieval.EmptyContextError{CandidateID: uuid.New()}, http.StatusPreconditionFailed},
		{"scoring input", &scoring.InputError{Reason: "empty"}, http.StatusBadRequest},
		{"render overflow", &rendering.RenderError{DedupedLength: 9000, SmallestFontSize: 7.5}, http.StatusUnprocessableEntity},
		{"timeout", &llm.TimeoutError{Model: "m", Err: context.DeadlineExceeded}, http.StatusGatewayTimeout},
		{"transport", &llm.TransportError{Model: "m", Err: errors.New("boom")}, http.StatusBadGateway},
		{"stage wrapping transport", &generation.StageError{Stage: generation.StageTailoring, Err: &llm.TransportError{Model: "m", Err: errors.New("boom")}}, http.StatusBadGateway},
		{"unknown", errors.New("mystery"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
