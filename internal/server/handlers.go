package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"assessment-rag/internal/jobdesc"
	"assessment-rag/internal/models"
	"assessment-rag/internal/parser"
)

type simpleResponse struct {
	Assessments []parser.SimpleItem `json:"assessments"`
	RawResponse string              `json:"raw_response,omitempty"`
}

type typedResponse struct {
	RecommendedAssessments []parser.TypedItem `json:"recommended_assessments"`
}

type queryRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleRecommendSimple(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, http.StatusUnprocessableEntity, "query parameter is required")
		return
	}

	ans, err := s.recommend(r.Context(), query)
	if err != nil {
		writeRecommendError(w, err)
		return
	}
	resp := simpleResponse{Assessments: parser.SimpleItems(ans.Assessments)}
	if raw, ok := ans.Fallback(); ok {
		resp.RawResponse = raw
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecommendTyped(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusUnprocessableEntity, "query is required")
		return
	}
	s.respondTyped(w, r, req.Query)
}

func (s *Server) handleRecommendDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid upload: %v", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "file field is required")
		return
	}
	defer file.Close()

	if !jobdesc.Supported(header.Filename) {
		writeError(w, http.StatusUnprocessableEntity, "unsupported file type: "+header.Filename)
		return
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("failed to read upload: %v", err))
		return
	}
	text, err := jobdesc.Extract(header.Filename, buf.Bytes())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	log.Debug().Str("file", header.Filename).Int("chars", len(text)).Msg("Extracted job description")
	s.respondTyped(w, r, text)
}

func (s *Server) respondTyped(w http.ResponseWriter, r *http.Request, query string) {
	ans, err := s.recommend(r.Context(), query)
	if err != nil {
		writeRecommendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, typedResponse{
		RecommendedAssessments: parser.TypedItems(ans.Assessments, parser.MaxRecommendations),
	})
}

type pageData struct {
	Query       string
	Assessments []models.ParsedAssessment
	Fallback    template.HTML
	Error       string
	Searched    bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{Query: strings.TrimSpace(r.URL.Query().Get("query"))}
	if data.Query != "" {
		data.Searched = true
		ans, err := s.recommend(r.Context(), data.Query)
		switch {
		case err != nil:
			log.Error().Err(err).Msg("Recommendation failed")
			data.Error = err.Error()
		default:
			data.Assessments = ans.Assessments
			if raw, ok := ans.Fallback(); ok {
				data.Fallback = s.renderMarkdown(raw)
			}
		}
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		log.Error().Err(err).Msg("Failed to render page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// renderMarkdown converts model text to HTML. Raw HTML in the input is
// escaped by goldmark's default renderer.
func (s *Server) renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String())
}
