// Package server exposes the chat to websocket clients.
package server

import (
	"chat-relay/domain/event"
	"chat-relay/services"
	"chat-relay/sink"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Config struct {
	ConnectionBufferSize int
	WriteTimeout         time.Duration
	ReadLimit            int64
}

// decoder decodes the frame payload and runs the matching chat service entry point.
type decoder func(ctx context.Context, connectionID string, data json.RawMessage) error

// handler is one entry of the dispatch table.
// failure is the event reporting an undecodable payload, lenient handlers drop it silently.
type handler struct {
	decode  decoder
	failure event.Name
	lenient bool
}

// Gateway upgrades HTTP requests to websocket sessions and dispatches inbound frames.
type Gateway struct {
	log         *slog.Logger
	chatService services.IChatService
	config      Config
	upgrader    websocket.Upgrader
	handlers    map[event.Name]handler
	mu          sync.Mutex
	closing     bool
	inflight    sync.WaitGroup
	sessions    sync.Map // connection id -> *sink.WebSocketSink
}

func NewGateway(log *slog.Logger, chatService services.IChatService, config Config) *Gateway {
	g := &Gateway{
		log:         log,
		chatService: chatService,
		config:      config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	g.handlers = map[event.Name]handler{
		event.JoinRoom: {
			decode: bind(func(_ context.Context, id string, request event.JoinRoomRequest) {
				g.chatService.JoinRoom(id, request)
			}),
			failure: event.Error,
		},
		event.LeaveRoom: {
			decode: bind(func(_ context.Context, id string, request event.LeaveRoomRequest) {
				g.chatService.LeaveRoom(id, request)
			}),
			failure: event.Error,
		},
		event.SendMessage: {
			decode:  bind(g.sendMessage),
			failure: event.MessageError,
		},
		event.Typing: {
			decode: bind(func(_ context.Context, id string, request event.TypingRequest) {
				g.chatService.Typing(id, request)
			}),
			lenient: true,
		},
	}
	return g
}

// sendMessage runs the pipeline off the read loop. Nothing starts once shutdown began.
func (g *Gateway) sendMessage(ctx context.Context, id string, request event.SendMessageRequest) {
	g.mu.Lock()
	if g.closing {
		g.mu.Unlock()
		g.log.Debug("Message dropped, gateway is shutting down", "connection_id", id)
		return
	}
	g.inflight.Add(1)
	g.mu.Unlock()

	go func() {
		defer g.inflight.Done()
		g.chatService.SendMessage(ctx, id, request)
	}()
}

// bind decodes the payload into the request type of the handler.
// A missing payload leaves the request zeroed.
func bind[T any](fn func(ctx context.Context, connectionID string, request T)) decoder {
	return func(ctx context.Context, connectionID string, data json.RawMessage) error {
		var request T
		if len(data) > 0 && string(data) != "null" {
			if err := json.Unmarshal(data, &request); err != nil {
				return err
			}
		}
		fn(ctx, connectionID, request)
		return nil
	}
}

// ServeHTTP holds the session until the client goes away.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Debug("Websocket upgrade failed", "error", err)
		return
	}

	// The session outlives the upgrade request.
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	id := uuid.NewString()
	s := sink.NewWebSocketSink(id, conn, g.config.ConnectionBufferSize, g.config.WriteTimeout, g.log)
	go s.WriteLoop(ctx)

	g.sessions.Store(id, s)
	g.chatService.Connect(s)
	defer func() {
		g.chatService.Disconnect(id)
		g.sessions.Delete(id)
		s.Close()
	}()

	if g.config.ReadLimit > 0 {
		conn.SetReadLimit(g.config.ReadLimit)
	}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.log.Debug("Unexpected websocket close", "connection_id", id, "error", err)
			}
			return
		}
		g.dispatch(ctx, s, data)
	}
}

func (g *Gateway) dispatch(ctx context.Context, s *sink.WebSocketSink, data []byte) {
	var inbound event.Inbound
	if err := json.Unmarshal(data, &inbound); err != nil || inbound.Event == "" {
		g.reject(s, "Invalid frame: expected {\"event\": ..., \"data\": ...}")
		return
	}
	h, ok := g.handlers[inbound.Event]
	if !ok {
		g.reject(s, fmt.Sprintf("Unknown event: %s", inbound.Event))
		return
	}
	if err := h.decode(ctx, s.ID(), inbound.Data); err != nil {
		if h.lenient {
			g.log.Debug("Payload dropped", "connection_id", s.ID(), "event", inbound.Event, "error", err)
			return
		}
		g.rejectWith(s, h.failure, fmt.Sprintf("Invalid payload for %s", inbound.Event))
	}
}

func (g *Gateway) reject(s *sink.WebSocketSink, message string) {
	g.rejectWith(s, event.Error, message)
}

func (g *Gateway) rejectWith(s *sink.WebSocketSink, name event.Name, message string) {
	if err := s.Send(event.Outbound{Event: name, Data: event.NewFailure(message)}); err != nil {
		g.log.Debug("Error frame not delivered", "connection_id", s.ID(), "error", err)
	}
}

// Shutdown refuses new messages, closes every open session then waits for in-flight messages.
// Hijacked connections are not tracked by http.Server, so they are closed here.
func (g *Gateway) Shutdown() {
	g.mu.Lock()
	g.closing = true
	g.mu.Unlock()

	g.sessions.Range(func(_, value any) bool {
		value.(*sink.WebSocketSink).Close()
		return true
	})
	g.Drain()
}

// Drain waits for the messages being sent to go through the pipeline.
func (g *Gateway) Drain() {
	g.inflight.Wait()
}
