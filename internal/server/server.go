// Package server exposes the optimization pipeline and candidate indexing
// over HTTP, with SSE streaming for pipeline progress.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/internai/internai/internal/config"
	"github.com/internai/internai/internal/db"
	"github.com/internai/internai/internal/pipeline"
	"github.com/internai/internai/internal/store"
)

// Server is the HTTP front end.
type Server struct {
	httpServer  *http.Server
	coordinator *pipeline.Coordinator
	indexer     *store.Indexer
	store       store.Store
	db          *db.DB
	cfg         *config.Config
	validate    *validator.Validate
	log         *zap.Logger
}

// New assembles the server. database may be nil when persistence is not
// configured; the application lookup endpoints then return 404.
func New(
	coordinator *pipeline.Coordinator,
	indexer *store.Indexer,
	s store.Store,
	database *db.DB,
	cfg *config.Config,
	log *zap.Logger,
) *Server {
	srv := &Server{
		coordinator: coordinator,
		indexer:     indexer,
		store:       s,
		db:          database,
		cfg:         cfg,
		validate:    validator.New(),
		log:         log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /optimize", srv.handleOptimize)
	mux.HandleFunc("POST /optimize/stream", srv.handleOptimizeStream)

	mux.HandleFunc("POST /candidates/{id}/resume", srv.handleIndexResume)
	mux.HandleFunc("POST /candidates/{id}/linkedin", srv.handleIndexLinkedIn)
	mux.HandleFunc("POST /candidates/{id}/github", srv.handleIndexGitHub)
	mux.HandleFunc("GET /candidates/{id}/chunks", srv.handleChunkCount)

	mux.HandleFunc("GET /applications/{id}", srv.handleGetApplication)
	mux.HandleFunc("GET /applications/{id}/documents/{format}", srv.handleGetDocument)

	mux.HandleFunc("GET /health", srv.handleHealth)

	srv.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     srv.withLogging(srv.withCORS(mux)),
		ReadTimeout: 30 * time.Second,
		// Streams stay open for the whole pipeline run.
		WriteTimeout: time.Duration(3*cfg.StageTimeoutSec+60) * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return srv
}

// Start listens until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	s.log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode JSON response", zap.Error(err))
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
