package server

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/infrastructure/processor"
	"chat-relay/mocks"
	"chat-relay/runtime"
	"chat-relay/services"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type frame struct {
	Event event.Name      `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type gatewayFixture struct {
	server     *httptest.Server
	gateway    *Gateway
	registry   *runtime.Registry
	repository *mocks.MockIMessageRepository
}

func newGatewayFixture(t *testing.T) gatewayFixture {
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	repository := mocks.NewMockIMessageRepository(ctrl)
	registry := runtime.NewRegistry(log)
	orchestrator := runtime.NewOrchestrator(log, repository, processor.NewClient(log, processor.Config{}), registry)
	chatService := services.NewChatService(log, registry, orchestrator)
	gateway := NewGateway(log, chatService, Config{
		ConnectionBufferSize: 16,
		WriteTimeout:         time.Second,
		ReadLimit:            64 * 1024,
	})
	server := httptest.NewServer(gateway)
	t.Cleanup(server.Close)
	return gatewayFixture{server: server, gateway: gateway, registry: registry, repository: repository}
}

func (f gatewayFixture) dial(t *testing.T) (*websocket.Conn, string) {
	url := "ws" + strings.TrimPrefix(f.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	connected := readFrame(t, conn)
	require.Equal(t, event.Connected, connected.Event)
	var payload event.ConnectedPayload
	require.NoError(t, json.Unmarshal(connected.Data, &payload))
	require.NotEmpty(t, payload.ClientID)
	return conn, payload.ClientID
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func send(t *testing.T, conn *websocket.Conn, name event.Name, data any) {
	require.NoError(t, conn.WriteJSON(map[string]any{"event": name, "data": data}))
}

func join(t *testing.T, conn *websocket.Conn, room string) {
	send(t, conn, event.JoinRoom, map[string]string{"room": room})
	joined := readFrame(t, conn)
	require.Equal(t, event.RoomJoined, joined.Event)
}

func TestGateway_Join_And_Leave(t *testing.T) {
	req := require.New(t)
	f := newGatewayFixture(t)
	conn, _ := f.dial(t)

	send(t, conn, event.JoinRoom, map[string]string{"room": "  general "})
	joined := readFrame(t, conn)
	req.Equal(event.RoomJoined, joined.Event)
	var room event.RoomPayload
	req.NoError(json.Unmarshal(joined.Data, &room))
	req.Equal("general", room.Room)
	req.Equal(1, f.registry.Stats().Rooms)

	send(t, conn, event.LeaveRoom, map[string]string{"room": "general"})
	left := readFrame(t, conn)
	req.Equal(event.RoomLeft, left.Event)
	req.Equal(0, f.registry.Stats().Rooms)
}

func TestGateway_Errors_Keep_Connection_Open(t *testing.T) {
	req := require.New(t)
	f := newGatewayFixture(t)
	conn, _ := f.dial(t)

	tests := []struct {
		name    string
		raw     string
		event   event.Name
		message string
	}{
		{name: "Malformed frame", raw: "not json", event: event.Error, message: "Invalid frame"},
		{name: "Unknown event", raw: `{"event":"dance","data":{}}`, event: event.Error, message: "Unknown event: dance"},
		{name: "Invalid payload", raw: `{"event":"joinRoom","data":"general"}`, event: event.Error, message: "Invalid payload for joinRoom"},
		{name: "Invalid leave payload", raw: `{"event":"leaveRoom","data":[1]}`, event: event.Error, message: "Invalid payload for leaveRoom"},
		{name: "Missing room", raw: `{"event":"joinRoom"}`, event: event.Error, message: "Room name must be between 1 and 50 characters"},
		{name: "Room too long", raw: `{"event":"joinRoom","data":{"room":"` + strings.Repeat("r", 51) + `"}}`, event: event.Error, message: "Room name must be between 1 and 50 characters"},
		{name: "Blank content", raw: `{"event":"sendMessage","data":{"content":"   "}}`, event: event.MessageError, message: "Message content is required"},
		{name: "Non string content", raw: `{"event":"sendMessage","data":{"content":5}}`, event: event.MessageError, message: "Invalid payload for sendMessage"},
	}

	for _, tt := range tests {
		req.NoError(conn.WriteMessage(websocket.TextMessage, []byte(tt.raw)), tt.name)
		got := readFrame(t, conn)
		req.Equal(tt.event, got.Event, tt.name)
		var failure event.Failure
		req.NoError(json.Unmarshal(got.Data, &failure), tt.name)
		req.False(failure.Success, tt.name)
		req.Contains(failure.Message, tt.message, tt.name)
	}

	// Then the connection is still usable
	join(t, conn, "general")
}

func TestGateway_SendMessage_Reaches_Room(t *testing.T) {
	req := require.New(t)
	f := newGatewayFixture(t)
	sender, senderID := f.dial(t)
	member, _ := f.dial(t)
	outsider, _ := f.dial(t)
	join(t, sender, "general")
	join(t, member, "general")
	join(t, outsider, "random")

	f.repository.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, draft domain.Message) (domain.Message, error) {
			return draft, nil
		})
	f.repository.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id string, patch domain.MessagePatch) (*domain.Message, error) {
			return &domain.Message{ID: id, Timestamp: time.Now().UTC(), UpdatedAt: time.Now().UTC()}, nil
		})

	send(t, sender, event.SendMessage, map[string]string{"content": "  Hello  "})

	for _, conn := range []*websocket.Conn{sender, member} {
		got := readFrame(t, conn)
		req.Equal(event.NewMessage, got.Event)
		var payload event.NewMessagePayload
		req.NoError(json.Unmarshal(got.Data, &payload))
		req.True(payload.Success)
		req.Equal("Hello", payload.Data.Content)
		req.Equal("Hello", payload.Data.ProcessedContent)
		req.Equal("general", payload.Data.Room)
		req.Equal("user_"+senderID[:8], payload.Data.UserID)
		req.False(payload.Data.Metadata.LambdaProcessing.Success)
	}

	// And the other room heard nothing
	req.NoError(outsider.SetReadDeadline(time.Now().Add(100 * time.Millisecond)))
	_, _, err := outsider.ReadMessage()
	req.Error(err)
}

func TestGateway_Typing_Skips_Sender(t *testing.T) {
	req := require.New(t)
	f := newGatewayFixture(t)
	sender, senderID := f.dial(t)
	member, _ := f.dial(t)
	join(t, sender, "general")
	join(t, member, "general")

	send(t, sender, event.Typing, map[string]any{"isTyping": "yes"})
	send(t, sender, event.Typing, map[string]any{"room": "general", "isTyping": true})

	got := readFrame(t, member)
	req.Equal(event.UserTyping, got.Event)
	var payload event.UserTypingPayload
	req.NoError(json.Unmarshal(got.Data, &payload))
	req.True(payload.IsTyping)
	req.Equal("general", payload.Room)
	req.Equal("user_"+senderID[:8], payload.UserID)

	req.NoError(sender.SetReadDeadline(time.Now().Add(100 * time.Millisecond)))
	_, _, err := sender.ReadMessage()
	req.Error(err)
}

func TestGateway_Undecodable_Typing_Is_Dropped(t *testing.T) {
	req := require.New(t)
	f := newGatewayFixture(t)
	conn, _ := f.dial(t)

	// Given a typing frame whose payload does not decode
	raw := `{"event":"typing","data":{"isTyping":"yes","room":7}}`
	req.NoError(conn.WriteMessage(websocket.TextMessage, []byte(raw)))

	// When the client keeps talking
	send(t, conn, event.JoinRoom, map[string]string{"room": "general"})

	// Then the next frame is the join answer, nothing was sent back for the typing frame
	got := readFrame(t, conn)
	req.Equal(event.RoomJoined, got.Event)
}

func TestGateway_No_Message_After_Shutdown(t *testing.T) {
	req := require.New(t)
	f := newGatewayFixture(t)

	// Given a gateway that already shut down
	f.gateway.Shutdown()

	// When a message arrives late
	err := f.gateway.handlers[event.SendMessage].decode(context.Background(), "late", json.RawMessage(`{"content":"hi"}`))

	// Then it is accepted but never reaches the repository
	req.NoError(err)
	f.gateway.Drain()
}

func TestGateway_Disconnect_Unregisters(t *testing.T) {
	req := require.New(t)
	f := newGatewayFixture(t)
	conn, _ := f.dial(t)
	join(t, conn, "general")
	req.Equal(1, f.registry.Stats().Connections)

	req.NoError(conn.Close())

	req.Eventually(func() bool {
		stats := f.registry.Stats()
		return stats.Connections == 0 && stats.Rooms == 0
	}, 2*time.Second, 10*time.Millisecond)
	f.gateway.Drain()
}

func TestGateway_Shutdown_Closes_Sessions(t *testing.T) {
	req := require.New(t)
	f := newGatewayFixture(t)
	conn, _ := f.dial(t)
	join(t, conn, "general")

	// When the gateway shuts down
	f.gateway.Shutdown()

	// Then the client sees its connection closed
	req.NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	_, _, err := conn.ReadMessage()
	req.Error(err)

	// And the registry forgets it
	req.Eventually(func() bool {
		return f.registry.Stats().Connections == 0
	}, 2*time.Second, 10*time.Millisecond)
}
