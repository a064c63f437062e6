// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the answer pipeline over HTTP. See
// docs/ARCHITECTURE.md § Serving.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pdiddy/answer-engine/internal/contextstore"
	"github.com/pdiddy/answer-engine/internal/controller"
	"github.com/pdiddy/answer-engine/internal/feedback"
	"github.com/pdiddy/answer-engine/internal/retrieval"
	"github.com/pdiddy/answer-engine/pkg/types"
)

const defaultAddr = ":8080"

// Server routes API requests to the controller and the feedback store.
type Server struct {
	cfg      types.ServerConfig
	ctrl     *controller.Controller
	store    *contextstore.Store
	feedback *feedback.Store
	log      *zap.Logger
	router   *mux.Router
}

// New builds a server with all routes registered. The feedback store
// may be nil, in which case the feedback endpoints return 503.
func New(cfg types.ServerConfig, ctrl *controller.Controller, store *contextstore.Store, fb *feedback.Store, log *zap.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		cfg:      cfg,
		ctrl:     ctrl,
		store:    store,
		feedback: fb,
		log:      log,
	}

	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.HandleFunc("/api/unified-search", s.handleUnifiedSearch).Methods("POST")
	r.HandleFunc("/api/feedback", s.handleFeedbackSubmit).Methods("POST")
	r.HandleFunc("/api/feedback", s.handleFeedbackList).Methods("GET")
	r.HandleFunc("/api/stats", s.handleStats).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router = r

	return s
}

// Handler returns the routing handler, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests
// for the configured grace period.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.cfg.Addr,
		Handler:     s.router,
		IdleTimeout: 2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	grace := s.cfg.ShutdownGrace
	if grace <= 0 {
		grace = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (s *Server) handleUnifiedSearch(w http.ResponseWriter, r *http.Request) {
	var req types.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	result, err := s.ctrl.Handle(r.Context(), req.Query, req.QueryType)
	switch {
	case err == nil:
	case errors.Is(err, retrieval.ErrRetrieval):
		s.log.Warn("retrieval failed", zap.String("query", req.Query), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, result)
		return
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		// Client went away; nothing useful to write.
		return
	default:
		s.log.Error("unified search failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if req.WantSummary != nil && !*req.WantSummary {
		result.Summary = ""
		result.SummaryLatencyMs = 0
		result.ChunksUsedSummary = 0
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleFeedbackSubmit(w http.ResponseWriter, r *http.Request) {
	if s.feedback == nil {
		writeError(w, http.StatusServiceUnavailable, "feedback store disabled")
		return
	}

	var fb types.Feedback
	if err := json.NewDecoder(r.Body).Decode(&fb); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id, err := s.feedback.Submit(r.Context(), fb)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"feedback_id": id})
}

func (s *Server) handleFeedbackList(w http.ResponseWriter, r *http.Request) {
	if s.feedback == nil {
		writeError(w, http.StatusServiceUnavailable, "feedback store disabled")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	items, err := s.feedback.List(r.Context(), limit)
	if err != nil {
		s.log.Error("listing feedback failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if items == nil {
		items = []types.Feedback{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"feedback": items, "count": len(items)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
