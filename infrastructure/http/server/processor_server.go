package server

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/moderation"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/lo"
)

type sanitizer interface {
	Sanitize(content string) moderation.Sanitization
}

// ProcessorServer is the reference content processor: it censors forbidden words.
type ProcessorServer struct {
	log       *slog.Logger
	sanitizer sanitizer
	apiKey    string
	mux       *http.ServeMux
}

func NewProcessorServer(log *slog.Logger, sanitizer sanitizer, apiKey string) *ProcessorServer {
	s := &ProcessorServer{
		log:       log,
		sanitizer: sanitizer,
		apiKey:    apiKey,
		mux:       http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /process", s.process)
	s.mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return s
}

func (s *ProcessorServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *ProcessorServer) process(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, Response{Success: false, Message: errors.ErrUnauthorized.Error()})
		return
	}

	var request domain.ProcessingRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestSize)).Decode(&request); err != nil {
		s.reject(w, fmt.Errorf("%w: invalid request body", errors.ErrValidation))
		return
	}
	if err := domain.ValidateProcessingRequest(request); err != nil {
		s.reject(w, err)
		return
	}

	result := s.sanitizer.Sanitize(request.Content)
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	s.log.Debug("Content processed",
		"message_id", request.MessageID,
		"lang", result.Language,
		"censored", len(result.Words),
		"elapsed_ms", elapsed)

	writeJSON(w, http.StatusOK, domain.ProcessingResponse{
		ProcessedContent: lo.ToPtr(result.Content),
		ProcessingTime:   lo.ToPtr(elapsed),
		Sanitized:        lo.ToPtr(result.Sanitized()),
	})
}

// authorized accepts any request when no key is configured.
func (s *ProcessorServer) authorized(r *http.Request) bool {
	if s.apiKey == "" {
		return true
	}
	given := r.Header.Get("X-Api-Key")
	return subtle.ConstantTimeCompare([]byte(given), []byte(s.apiKey)) == 1
}

func (s *ProcessorServer) reject(w http.ResponseWriter, err error) {
	writeJSON(w, errors.MapToHTTPStatus(err), Response{Success: false, Message: err.Error()})
}
