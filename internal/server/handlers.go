package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/internai/internai/internal/ingestion"
	"github.com/internai/internai/internal/pipeline"
	"github.com/internai/internai/internal/store"
	"github.com/internai/internai/internal/types"
)

// OptimizeRequest is the body for both optimize endpoints. Either the job
// description text or a job posting URL must be supplied.
type OptimizeRequest struct {
	CandidateID    string   `json:"candidate_id" validate:"required,uuid4"`
	JobTitle       string   `json:"job_title" validate:"required"`
	Company        string   `json:"company" validate:"required"`
	JobDescription string   `json:"job_description" validate:"required_without=JobURL"`
	JobURL         string   `json:"job_url" validate:"omitempty,url"`
	Skills         []string `json:"skills,omitempty"`
}

// IndexTextRequest is the body for the resume indexing endpoint.
type IndexTextRequest struct {
	Text string `json:"text" validate:"required"`
}

// IndexLinkedInRequest is the body for the LinkedIn indexing endpoint.
type IndexLinkedInRequest struct {
	About       string `json:"about"`
	Experiences string `json:"experiences"`
	Skills      string `json:"skills"`
}

// IndexGitHubRequest is the body for the GitHub indexing endpoint.
type IndexGitHubRequest struct {
	Repos []store.GitHubRepo `json:"repos" validate:"required,min=1"`
}

// pipelineRequest decodes, validates, and resolves the job description,
// ingesting from the URL when only job_url was supplied.
func (s *Server) pipelineRequest(w http.ResponseWriter, r *http.Request) (*pipeline.Request, bool) {
	var body OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	if err := s.validate.Struct(&body); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	candidateID, err := uuid.Parse(body.CandidateID)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid candidate_id")
		return nil, false
	}

	description := body.JobDescription
	if description == "" {
		description, err = ingestion.JobPostingFromURL(r.Context(), body.JobURL, s.cfg.UseBrowser, s.log)
		if err != nil {
			s.errorResponse(w, http.StatusBadGateway, err.Error())
			return nil, false
		}
	}

	return &pipeline.Request{
		CandidateID:    candidateID,
		JobTitle:       body.JobTitle,
		Company:        body.Company,
		JobDescription: description,
		Skills:         body.Skills,
	}, true
}

// handleOptimize runs the pipeline synchronously and returns the outcome.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	req, ok := s.pipelineRequest(w, r)
	if !ok {
		return
	}

	outcome, err := s.coordinator.Run(r.Context(), req, nil)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"application_id":  outcome.ApplicationID,
		"tailored_resume": outcome.Artifact.TailoredResume,
		"cover_letter":    outcome.Artifact.CoverLetter,
		"review_feedback": outcome.Artifact.ReviewFeedback,
		"score":           outcome.Score,
	})
}

// handleOptimizeStream runs the pipeline and forwards every progress event
// as SSE. Client disconnect cancels the run through the request context.
func (s *Server) handleOptimizeStream(w http.ResponseWriter, r *http.Request) {
	req, ok := s.pipelineRequest(w, r)
	if !ok {
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	_, err = s.coordinator.Run(r.Context(), req, func(event pipeline.Event) error {
		return sse.WriteEvent(string(event.Type), event)
	})
	if err != nil {
		// The pipeline_failed event has already been emitted; this covers
		// clients listening only for the error channel.
		sse.WriteError(err.Error())
	}
}

func (s *Server) candidateID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid candidate id")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) handleIndexResume(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := s.candidateID(w, r)
	if !ok {
		return
	}

	var body IndexTextRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(&body); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	count, err := s.indexer.IndexResume(r.Context(), candidateID, ingestion.CleanText(body.Text))
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"source": types.SourceResume, "chunks": count})
}

func (s *Server) handleIndexLinkedIn(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := s.candidateID(w, r)
	if !ok {
		return
	}

	var body IndexLinkedInRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.About == "" && body.Experiences == "" && body.Skills == "" {
		s.errorResponse(w, http.StatusBadRequest, "at least one profile section is required")
		return
	}

	count, err := s.indexer.IndexLinkedIn(r.Context(), candidateID,
		ingestion.CleanText(body.About),
		ingestion.CleanText(body.Experiences),
		ingestion.CleanText(body.Skills),
	)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"source": types.SourceLinkedIn, "chunks": count})
}

func (s *Server) handleIndexGitHub(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := s.candidateID(w, r)
	if !ok {
		return
	}

	var body IndexGitHubRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(&body); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	count, err := s.indexer.IndexGitHub(r.Context(), candidateID, body.Repos)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"source": types.SourceGitHub, "chunks": count})
}

func (s *Server) handleChunkCount(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := s.candidateID(w, r)
	if !ok {
		return
	}

	count, err := s.store.CountChunks(r.Context(), candidateID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"chunks": count})
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, http.StatusNotFound, "persistence not configured")
		return
	}

	applicationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid application id")
		return
	}

	app, err := s.db.GetApplication(r.Context(), applicationID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if app == nil {
		s.errorResponse(w, http.StatusNotFound, "application not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, http.StatusNotFound, "persistence not configured")
		return
	}

	applicationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid application id")
		return
	}

	format := types.DocumentFormat(r.PathValue("format"))
	if !format.Valid() {
		s.errorResponse(w, http.StatusBadRequest, "format must be pdf or docx")
		return
	}

	doc, err := s.db.GetDocument(r.Context(), applicationID, format)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if doc == nil {
		s.errorResponse(w, http.StatusNotFound, "document not found")
		return
	}

	contentType := "application/pdf"
	if format == types.FormatDOCX {
		contentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Content) //nolint:errcheck
}
