// Package services holds the real-time entry points of the chat.
// Every failure is reported to the originating connection only and never closes it.
package services

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"context"
	goerrors "errors"
	"log/slog"
	"strings"
)

const (
	msgInvalidRoom     = "Room name must be between 1 and 50 characters"
	msgInvalidRoomData = "Invalid room data provided"
	msgJoinFailed      = "Failed to join room"
	msgLeaveFailed     = "Failed to leave room"
	msgContentRequired = "Message content is required"
	msgSendFailed      = "Failed to send message"
)

type IChatService interface {
	Connect(conn contract.Connection)
	Disconnect(connectionID string)
	JoinRoom(connectionID string, request event.JoinRoomRequest)
	LeaveRoom(connectionID string, request event.LeaveRoomRequest)
	SendMessage(ctx context.Context, connectionID string, request event.SendMessageRequest)
	Typing(connectionID string, request event.TypingRequest)
}

type ChatService struct {
	log          *slog.Logger
	registry     contract.IRegistry
	orchestrator contract.IMessageOrchestrator
}

func NewChatService(log *slog.Logger, registry contract.IRegistry,
	orchestrator contract.IMessageOrchestrator) *ChatService {
	return &ChatService{log: log, registry: registry, orchestrator: orchestrator}
}

func (s *ChatService) Connect(conn contract.Connection) {
	s.registry.Register(conn)
	s.log.Info("Client connected", "connection_id", conn.ID())
}

func (s *ChatService) Disconnect(connectionID string) {
	s.registry.Unregister(connectionID)
	s.log.Info("Client disconnected", "connection_id", connectionID)
}

func (s *ChatService) JoinRoom(connectionID string, request event.JoinRoomRequest) {
	err := s.registry.Join(connectionID, request.Room)
	switch {
	case err == nil:
	case goerrors.Is(err, errors.ErrInvalidRoom):
		s.fail(connectionID, event.Error, msgInvalidRoom)
	default:
		s.log.Error("Error joining room", "connection_id", connectionID, "error", err)
		s.fail(connectionID, event.Error, msgJoinFailed)
	}
}

func (s *ChatService) LeaveRoom(connectionID string, request event.LeaveRoomRequest) {
	err := s.registry.Leave(connectionID, request.Room)
	switch {
	case err == nil:
	case goerrors.Is(err, errors.ErrInvalidRoom):
		s.fail(connectionID, event.Error, msgInvalidRoomData)
	default:
		s.log.Error("Error leaving room", "connection_id", connectionID, "error", err)
		s.fail(connectionID, event.Error, msgLeaveFailed)
	}
}

// SendMessage runs the whole pipeline. The room broadcast is done by the orchestrator.
func (s *ChatService) SendMessage(ctx context.Context, connectionID string, request event.SendMessageRequest) {
	if strings.TrimSpace(request.Content) == "" {
		s.fail(connectionID, event.MessageError, msgContentRequired)
		return
	}
	input := domain.MessageInput{
		Content: request.Content,
		Room:    request.Room,
		UserID:  request.UserID,
	}
	if strings.TrimSpace(input.UserID) == "" {
		input.UserID = PlaceholderUserID(connectionID)
	}
	if strings.TrimSpace(input.Room) == "" {
		input.Room = domain.DefaultRoom
	}

	message, err := s.orchestrator.CreateMessage(ctx, input)
	if err != nil {
		s.log.Error("Failed to send message", "connection_id", connectionID, "error", err)
		reason := msgSendFailed
		if goerrors.Is(err, errors.ErrValidation) {
			reason = err.Error()
		}
		s.fail(connectionID, event.MessageError, reason)
		return
	}
	s.log.Info("Message sent", "room", message.Room, "user_id", message.UserID)
}

// Typing relays the indicator to the other members of the room. Nothing is stored.
func (s *ChatService) Typing(connectionID string, request event.TypingRequest) {
	isTyping, ok := request.IsTyping.(bool)
	if !ok {
		return
	}
	room := strings.TrimSpace(request.Room)
	if room == "" {
		room = domain.DefaultRoom
	}
	s.registry.BroadcastExcept(room, connectionID, event.UserTyping, event.UserTypingPayload{
		UserID:   PlaceholderUserID(connectionID),
		IsTyping: isTyping,
		Room:     room,
	})
}

func (s *ChatService) fail(connectionID string, name event.Name, message string) {
	s.registry.Unicast(connectionID, name, event.NewFailure(message))
}

// PlaceholderUserID names a connection that didn't give a user id.
func PlaceholderUserID(connectionID string) string {
	short := connectionID
	if len(short) > 8 {
		short = short[:8]
	}
	return "user_" + short
}
