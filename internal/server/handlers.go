package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/quotable-io/quotable/internal/embedding"
	"github.com/quotable-io/quotable/internal/models"
	"github.com/quotable-io/quotable/internal/quotes"
	"github.com/quotable-io/quotable/internal/store"
	"github.com/quotable-io/quotable/internal/vector"
)

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"name":        "Quotable",
		"description": "Semantic similarity search over an inspirational quote corpus",
		"version":     s.version,
		"endpoints": map[string]string{
			"root":   "/",
			"health": "/health",
			"quotes": "/quotes?topic=<query>",
			"random": "/quotes/random",
			"words":  "/words",
			"init":   "POST /quotes/init",
			"clean":  "POST /quotes/clean",
		},
	})
}

// handleQuotes serves both search and list-all: a topic ranks quotes by
// similarity, no topic (or a blank one) returns every quote without scores.
func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	topic := query.Get("topic")

	if strings.TrimSpace(topic) == "" {
		list, err := s.service.ListAll(r.Context())
		if err != nil {
			s.logger.Error("list quotes failed", zap.Error(err))
			s.respondError(w, statusForError(err), err.Error())
			return
		}
		s.respondJSON(w, http.StatusOK, list)
		return
	}

	params := models.SearchParams{Topic: topic}
	if raw := query.Get("k"); raw != "" {
		k, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid k parameter")
			return
		}
		params.K = k
	}
	if raw := query.Get("threshold"); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid threshold parameter")
			return
		}
		params.Threshold = &threshold
	}

	s.logger.Debug("quote search request", zap.String("topic", topic), zap.Int("k", params.K))
	results, err := s.service.Search(r.Context(), params)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, statusForError(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, results)
}

func (s *Server) handleRandomQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := s.service.RandomQuote(r.Context())
	if err != nil {
		if !errors.Is(err, quotes.ErrNoQuotes) {
			s.logger.Error("random quote failed", zap.Error(err))
		}
		s.respondError(w, statusForError(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, quote)
}

func (s *Server) handleInitQuotes(w http.ResponseWriter, r *http.Request) {
	force := false
	if raw := r.URL.Query().Get("force"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid force parameter")
			return
		}
		force = parsed
	}

	s.logger.Debug("init request", zap.Bool("force", force))
	result, err := s.service.Initialize(r.Context(), force)
	if err != nil {
		s.logger.Error("initialization failed", zap.Error(err))
		s.respondError(w, statusForError(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleCleanQuotes(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Clean(r.Context())
	if err != nil {
		s.logger.Error("clean failed", zap.Error(err))
		s.respondError(w, statusForError(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

// handleWords compares the default word pairs, or a single pair when word1
// and word2 are both supplied.
func (s *Server) handleWords(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	word1 := query.Get("word1")
	word2 := query.Get("word2")

	if (word1 == "") != (word2 == "") {
		s.respondError(w, http.StatusBadRequest, "word1 and word2 must be provided together")
		return
	}

	if word1 != "" {
		result, err := s.service.CompareWords(r.Context(), word1, word2)
		if err != nil {
			s.logger.Error("word comparison failed", zap.Error(err))
			s.respondError(w, statusForError(err), err.Error())
			return
		}
		s.respondJSON(w, http.StatusOK, result)
		return
	}

	results, err := s.service.WordPairs(r.Context())
	if err != nil {
		s.logger.Error("word pairs failed", zap.Error(err))
		s.respondError(w, statusForError(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, results)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.service.Health(r.Context())
	status := http.StatusOK
	if report.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	s.respondJSON(w, status, report)
}

// statusForError maps service errors onto HTTP statuses: caller mistakes are
// 400s, dependency failures are 503s, invariant violations are 500s.
func statusForError(err error) int {
	var provErr *embedding.ProviderError
	var dimErr *vector.DimensionError
	switch {
	case errors.Is(err, embedding.ErrEmptyText):
		return http.StatusBadRequest
	case errors.As(err, &provErr):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.As(err, &dimErr):
		return http.StatusInternalServerError
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, quotes.ErrNoQuotes):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
