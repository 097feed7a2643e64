package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tutorleap/qgen/internal/qgen"
	"github.com/tutorleap/qgen/internal/store"
)

// generateRequest is the wire shape of a generation call.
type generateRequest struct {
	Board          string `json:"board"`
	ToBoard        string `json:"toBoard"`
	Grade          string `json:"grade"`
	Subject        string `json:"subject"`
	Topic          string `json:"topic"`
	Format         string `json:"format"`
	Count          int    `json:"count"`
	IncludeAnswers bool   `json:"includeAnswers"`
}

type generateMetadata struct {
	ProcessingTimeMs int64 `json:"processingTimeMs"`
}

type generateResponse struct {
	Success      bool             `json:"success"`
	Questions    []qgen.Question  `json:"questions"`
	Source       qgen.Source      `json:"source"`
	ConversionID string           `json:"conversionId"`
	GeneratedAt  time.Time        `json:"generatedAt"`
	Metadata     generateMetadata `json:"metadata"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	key := clientIP(r)
	decision, err := s.limiter.Allow(key, isElevated(r))
	if err != nil {
		log.Printf("rate limit check failed for %s: %v", key, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !decision.Allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(decision.RetryAfter(time.Now())/time.Second)))
		writeJSON(w, http.StatusTooManyRequests, errorResponse{
			Success:     false,
			Error:       "rate limit exceeded, try again later",
			RateLimited: true,
		})
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	start := time.Now()
	result, err := s.engine.Generate(r.Context(), qgen.Request{
		Board:          req.Board,
		ToBoard:        req.ToBoard,
		Grade:          req.Grade,
		Subject:        req.Subject,
		Topic:          req.Topic,
		Format:         qgen.Format(req.Format),
		Count:          req.Count,
		IncludeAnswers: req.IncludeAnswers,
	})
	if err != nil {
		var invalid *qgen.ErrInvalidRequest
		if errors.As(err, &invalid) {
			writeError(w, http.StatusBadRequest, invalid.Reason)
			return
		}
		log.Printf("generation failed for %s: %v", key, err)
		writeError(w, http.StatusInternalServerError, "question generation failed")
		return
	}
	processingMs := time.Since(start).Milliseconds()

	s.saveConversion(r, key, req, result, processingMs)

	log.Printf("generated %d questions (%s) for %s in %dms [%s]",
		len(result.Questions), result.Source, key, processingMs, result.ConversionID)

	writeJSON(w, http.StatusOK, generateResponse{
		Success:      true,
		Questions:    result.Questions,
		Source:       result.Source,
		ConversionID: result.ConversionID,
		GeneratedAt:  result.GeneratedAt,
		Metadata:     generateMetadata{ProcessingTimeMs: processingMs},
	})
}

// saveConversion records the outcome for history. Persistence failures
// are logged, never surfaced to the client.
func (s *Server) saveConversion(r *http.Request, key string, req generateRequest, result *qgen.Result, processingMs int64) {
	if s.st == nil {
		return
	}

	err := s.st.SaveConversion(r.Context(), store.Conversion{
		ID:           result.ConversionID,
		ClientKey:    key,
		Board:        req.Board,
		ToBoard:      req.ToBoard,
		Grade:        req.Grade,
		Subject:      req.Subject,
		Topic:        req.Topic,
		Format:       qgen.Format(req.Format),
		Count:        len(result.Questions),
		Source:       result.Source,
		Questions:    result.Questions,
		ProcessingMs: processingMs,
		CreatedAt:    result.GeneratedAt,
	})
	if err != nil {
		log.Printf("warning: failed to save conversion %s: %v", result.ConversionID, err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "tutorleap-qgen",
		"version":   s.cfg.Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleListConversions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.st == nil {
		writeError(w, http.StatusNotFound, "history not enabled")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	conversions, err := s.st.ListConversions(r.Context(), clientIP(r), limit)
	if err != nil {
		log.Printf("list conversions failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"conversions": conversions,
	})
}

func (s *Server) handleGetConversion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.st == nil {
		writeError(w, http.StatusNotFound, "history not enabled")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/conversions/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "conversion id is required")
		return
	}

	conversion, err := s.st.GetConversion(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "conversion not found")
			return
		}
		log.Printf("get conversion %s failed: %v", id, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"conversion": conversion,
	})
}

// isElevated reports whether the caller presented credentials that grant
// the higher rate ceiling. Token validation is out of scope here; any
// bearer token marks the client elevated and keys stay IP-based.
func isElevated(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && len(auth) > len("Bearer ")
}
