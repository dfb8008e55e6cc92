// Package httpapi exposes the interview over HTTP: a turn endpoint that
// answers either as plain JSON or as an SSE stream, plus a health probe.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/careloop/intakebot/internal/config"
	"github.com/careloop/intakebot/internal/core"
	"github.com/careloop/intakebot/pkg/log"
)

// Turner is the dialogue entry point the server forwards messages to.
type Turner interface {
	Turn(ctx context.Context, sessionID, patientID, message string) string
}

type Server struct {
	turner      Turner
	transcripts core.TranscriptRepository
	histories   core.HistoryReader
	window      int
	srv         *http.Server
}

func NewServer(ctx context.Context, cfg *config.AppConfig, turner Turner, transcripts core.TranscriptRepository, histories core.HistoryReader) *Server {
	s := &Server{
		turner:      turner,
		transcripts: transcripts,
		histories:   histories,
		window:      cfg.TranscriptWindowSize,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(ctx))

	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/turns", s.handleTurn)
	r.Get("/v1/transcripts/{sessionID}", s.handleTranscript)
	r.Get("/v1/patients/{patientID}/histories", s.handleHistories)

	s.srv = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.srv.Addr).Msg("http server listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

type turnRequest struct {
	SessionID string `json:"session_id"`
	PatientID string `json:"patient_id"`
	Message   string `json:"message"`
}

type turnResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	if req.PatientID == "" {
		req.PatientID = req.SessionID
	}

	reply := s.turner.Turn(r.Context(), req.SessionID, req.PatientID, req.Message)

	if wantsSSE(r) {
		streamReply(w, req.SessionID, reply)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(turnResponse{SessionID: req.SessionID, Reply: reply}) //nolint:errcheck
}

// streamReply delivers the reply as SSE: one data event with the JSON
// payload, then a terminal [DONE] marker.
func streamReply(w http.ResponseWriter, sessionID, reply string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	payload, _ := json.Marshal(turnResponse{SessionID: sessionID, Reply: reply})
	fmt.Fprintf(w, "data: %s\n\n", payload)
	fmt.Fprint(w, "data: [DONE]\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	if s.transcripts == nil {
		writeError(w, http.StatusNotFound, "transcripts are not enabled")
		return
	}
	sessionID := chi.URLParam(r, "sessionID")
	msgs, err := s.transcripts.GetMessages(r.Context(), sessionID, s.window)
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Str("session", sessionID).Msg("failed to read transcript")
		writeError(w, http.StatusInternalServerError, "failed to read transcript")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
		"session_id": sessionID,
		"messages":   msgs,
	})
}

func (s *Server) handleHistories(w http.ResponseWriter, r *http.Request) {
	if s.histories == nil {
		writeError(w, http.StatusNotFound, "histories are not enabled")
		return
	}
	patientID := chi.URLParam(r, "patientID")
	recs, err := s.histories.GetHistoriesByPatient(r.Context(), patientID, s.window)
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Str("patient", patientID).Msg("failed to read histories")
		writeError(w, http.StatusInternalServerError, "failed to read histories")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
		"patient_id": patientID,
		"histories":  recs,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
}

func wantsSSE(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg}) //nolint:errcheck
}

// requestLogger injects the app logger into each request context and logs
// the request line on completion.
func requestLogger(appCtx context.Context) func(http.Handler) http.Handler {
	logger := log.FromCtx(appCtx)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context())))
			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("took", time.Since(start)).
				Msg("http request")
		})
	}
}
