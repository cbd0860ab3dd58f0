package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"golang.org/x/sync/semaphore"

	"assessment-rag/internal/config"
	"assessment-rag/internal/models"
)

// Recommender answers a recommendation query.
type Recommender interface {
	Recommend(ctx context.Context, query string) (*models.Answer, error)
}

// Server exposes a Recommender over HTTP.
type Server struct {
	rec            Recommender
	cfg            config.ServerConfig
	sem            *semaphore.Weighted
	requestTimeout time.Duration
	page           *template.Template
	md             goldmark.Markdown
	handler        http.Handler
}

func New(rec Recommender, cfg config.ServerConfig) (*Server, error) {
	page, err := template.New("index").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).Parse(indexTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %v", err)
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 8
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}

	s := &Server{
		rec:            rec,
		cfg:            cfg,
		sem:            semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		requestTimeout: time.Duration(cfg.RequestTimeoutSecs) * time.Second,
		page:           page,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /recommend", s.handleRecommendSimple)
	mux.HandleFunc("POST /recommend", s.handleRecommendTyped)
	mux.HandleFunc("POST /recommend/document", s.handleRecommendDocument)
	mux.HandleFunc("GET /{$}", s.handleIndex)

	s.handler = withRequestLog(withCORS(mux))
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.cfg.Addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %v", err)
	}
	return nil
}

// recommend runs one query under the admission limit and request timeout.
func (s *Server) recommend(ctx context.Context, query string) (*models.Answer, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, errBusy
	}
	defer s.sem.Release(1)

	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}
	return s.rec.Recommend(ctx, query)
}

var errBusy = errors.New("server is busy, try again later")

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Detail: msg})
}

// writeRecommendError maps service errors to status codes.
func writeRecommendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrEmptyQuery):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, errBusy):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.Error().Err(err).Msg("Recommendation failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
