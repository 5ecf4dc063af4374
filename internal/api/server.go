// Package api exposes the analysis pipeline over HTTP. It owns the single
// boundary translation from tagged pipeline errors to response statuses.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marktron/app-gaps/internal/apperr"
	"github.com/marktron/app-gaps/internal/model"
	"github.com/marktron/app-gaps/pkg/appstore"
)

// Analyzer runs one analysis for a raw identifier-or-URL input.
type Analyzer interface {
	Run(ctx context.Context, input string) (*model.Report, error)
}

// Server routes analysis requests to the pipeline.
type Server struct {
	router   *chi.Mux
	analyzer Analyzer
}

// NewServer creates the HTTP server around an analyzer.
func NewServer(analyzer Analyzer) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))

	s := &Server{
		router:   router,
		analyzer: analyzer,
	}

	router.Get("/health", s.health)
	router.Post("/api/analyze", s.analyze)

	return s
}

// Router returns the handler for mounting into an http.Server.
func (s *Server) Router() http.Handler {
	return s.router
}

type analyzeRequest struct {
	App string `json:"app"`
}

type analyzeResponse struct {
	RequestID string                   `json:"request_id"`
	AppID     string                   `json:"app_id,omitempty"`
	AppInfo   *appstore.AppInfo        `json:"app_info,omitempty"`
	Themes    []model.Theme            `json:"themes"`
	Priority  []model.PrioritizedTheme `json:"prioritizedThemes"`
	Error     string                   `json:"error,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	log := zap.L().With(zap.String("request_id", requestID))

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, failure(requestID, "invalid request body"))
		return
	}
	if req.App == "" {
		writeJSON(w, http.StatusBadRequest, failure(requestID, "app is required"))
		return
	}

	report, err := s.analyzer.Run(r.Context(), req.App)
	if err != nil {
		status, msg := translate(err)
		log.Warn("analysis failed",
			zap.String("app", req.App),
			zap.Int("status", status),
			zap.Error(err),
		)
		writeJSON(w, status, failure(requestID, msg))
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		RequestID: requestID,
		AppID:     report.AppID,
		AppInfo:   report.AppInfo,
		Themes:    report.Themes,
		Priority:  report.PrioritizedThemes,
	})
}

// translate maps a pipeline error onto an HTTP status and a user-safe
// message. Validation messages surface verbatim; everything else gets
// generic text so internal detail never leaks.
func translate(err error) (int, string) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest, apperr.MessageOf(err)
	case apperr.KindUpstreamUnavailable:
		return http.StatusServiceUnavailable, "analysis service unavailable"
	default:
		return http.StatusInternalServerError, "analysis failed"
	}
}

// failure builds an error envelope with empty result arrays, never nulls.
func failure(requestID, msg string) analyzeResponse {
	return analyzeResponse{
		RequestID: requestID,
		Themes:    []model.Theme{},
		Priority:  []model.PrioritizedTheme{},
		Error:     msg,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
