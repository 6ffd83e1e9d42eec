// Package server exposes the message API over HTTP.
package server

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const maxRequestSize = 64 * 1024

// Response is the envelope of every REST answer.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type Health struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Uptime      float64   `json:"uptime"` // seconds
	Version     string    `json:"version"`
	Connections int       `json:"connections"`
	Rooms       int       `json:"rooms"`
	Storage     string    `json:"storage"`
}

type SearchResult struct {
	Messages []domain.Message `json:"messages"`
}

type statsProvider interface {
	Stats() contract.RegistryStats
}

type MessageServer struct {
	log          *slog.Logger
	orchestrator contract.IMessageOrchestrator
	stats        statsProvider
	storage      string
	version      string
	started      time.Time
	mux          *http.ServeMux
}

// NewMessageServer registers the REST routes. The websocket handler is mounted on /ws when given.
func NewMessageServer(log *slog.Logger, orchestrator contract.IMessageOrchestrator,
	stats statsProvider, storage string, websocketHandler http.Handler) *MessageServer {
	s := &MessageServer{
		log:          log,
		orchestrator: orchestrator,
		stats:        stats,
		storage:      storage,
		version:      "dev",
		started:      time.Now(),
		mux:          http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /api/messages", s.createMessage)
	s.mux.HandleFunc("GET /api/messages", s.getMessages)
	s.mux.HandleFunc("GET /api/messages/search", s.searchMessages)
	s.mux.HandleFunc("GET /api/messages/{id}", s.getMessage)
	s.mux.HandleFunc("GET /health", s.health)
	if websocketHandler != nil {
		s.mux.Handle("GET /ws", websocketHandler)
	}
	return s
}

// WithVersion sets the build version reported by /health.
func (s *MessageServer) WithVersion(version string) *MessageServer {
	s.version = version
	return s
}

func (s *MessageServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *MessageServer) createMessage(w http.ResponseWriter, r *http.Request) {
	var input domain.MessageInput
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestSize))
	if err := decoder.Decode(&input); err != nil {
		s.fail(w, fmt.Errorf("%w: invalid request body", errors.ErrValidation), "")
		return
	}
	message, err := s.orchestrator.CreateMessage(r.Context(), input)
	if goerrors.Is(err, errors.ErrMessageNotFound) {
		// the draft vanished before its update, the client did nothing wrong
		err = fmt.Errorf("draft lost: %v", err)
	}
	if err != nil {
		s.fail(w, err, "Failed to create message")
		return
	}
	writeJSON(w, http.StatusCreated, Response{Success: true, Data: message, Message: "Message created successfully"})
}

func (s *MessageServer) getMessages(w http.ResponseWriter, r *http.Request) {
	query := domain.ListMessagesQuery{Room: r.URL.Query().Get("room")}
	var err error
	if query.Limit, err = intParam(r, "limit", errors.ErrInvalidLimit); err != nil {
		s.fail(w, err, "")
		return
	}
	if query.Offset, err = intParam(r, "offset", errors.ErrInvalidOffset); err != nil {
		s.fail(w, err, "")
		return
	}
	page, err := s.orchestrator.GetMessages(r.Context(), query)
	if err != nil {
		s.fail(w, err, "Failed to retrieve messages")
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: page, Message: "Messages retrieved successfully"})
}

func (s *MessageServer) getMessage(w http.ResponseWriter, r *http.Request) {
	message, err := s.orchestrator.GetMessageByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, err, "Failed to retrieve message")
		return
	}
	if message == nil {
		s.fail(w, errors.ErrMessageNotFound, "")
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: message, Message: "Message retrieved successfully"})
}

func (s *MessageServer) searchMessages(w http.ResponseWriter, r *http.Request) {
	query := domain.SearchQuery{
		Room:  r.URL.Query().Get("room"),
		Terms: r.URL.Query().Get("q"),
	}
	var err error
	if query.Limit, err = intParam(r, "limit", errors.ErrInvalidLimit); err != nil {
		s.fail(w, err, "")
		return
	}
	messages, err := s.orchestrator.SearchMessages(r.Context(), query)
	if err != nil {
		s.fail(w, err, "Failed to search messages")
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: SearchResult{Messages: messages}})
}

func (s *MessageServer) health(w http.ResponseWriter, _ *http.Request) {
	stats := s.stats.Stats()
	now := time.Now()
	writeJSON(w, http.StatusOK, Health{
		Status:      "ok",
		Timestamp:   now.UTC(),
		Uptime:      now.Sub(s.started).Seconds(),
		Version:     s.version,
		Connections: stats.Connections,
		Rooms:       stats.Rooms,
		Storage:     s.storage,
	})
}

// fail writes the error envelope. Internal failures are replaced by fallback, never leaked.
func (s *MessageServer) fail(w http.ResponseWriter, err error, fallback string) {
	status := errors.MapToHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error(fallback, "error", err)
		message = fallback
	}
	if goerrors.Is(err, errors.ErrMessageNotFound) {
		message = "Message not found"
	}
	writeJSON(w, status, Response{Success: false, Message: message})
}

// intParam returns nil when the parameter is absent.
func intParam(r *http.Request, name string, invalid error) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, invalid
	}
	return &value, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
