package services

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/mocks"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const connectionID = "5f0c3d2a-9b1e-4c55-8e0a-2b7d9c1f4e6a"

type serviceFixture struct {
	service      *ChatService
	registry     *mocks.MockIRegistry
	orchestrator *mocks.MockIMessageOrchestrator
}

func newServiceFixture(t *testing.T) serviceFixture {
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockIRegistry(ctrl)
	orchestrator := mocks.NewMockIMessageOrchestrator(ctrl)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return serviceFixture{
		service:      NewChatService(log, registry, orchestrator),
		registry:     registry,
		orchestrator: orchestrator,
	}
}

func TestChatService_Connect_And_Disconnect(t *testing.T) {
	f := newServiceFixture(t)
	ctrl := gomock.NewController(t)
	conn := mocks.NewMockConnection(ctrl)
	conn.EXPECT().ID().Return(connectionID).AnyTimes()

	f.registry.EXPECT().Register(conn).Times(1)
	f.registry.EXPECT().Unregister(connectionID).Times(1)

	f.service.Connect(conn)
	f.service.Disconnect(connectionID)
}

func TestChatService_JoinRoom(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{name: "Success", err: nil},
		{name: "Invalid room", err: errors.ErrInvalidRoom, message: msgInvalidRoom},
		{name: "Unknown connection", err: errors.ErrUnknownConnection, message: msgJoinFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)
			f.registry.EXPECT().Join(connectionID, " general ").Return(tt.err)
			if tt.err != nil {
				f.registry.EXPECT().Unicast(connectionID, event.Error, event.NewFailure(tt.message)).Times(1)
			}

			f.service.JoinRoom(connectionID, event.JoinRoomRequest{Room: " general "})
		})
	}
}

func TestChatService_LeaveRoom(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{name: "Success", err: nil},
		{name: "Missing room", err: errors.ErrInvalidRoom, message: msgInvalidRoomData},
		{name: "Unknown connection", err: errors.ErrUnknownConnection, message: msgLeaveFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)
			f.registry.EXPECT().Leave(connectionID, "general").Return(tt.err)
			if tt.err != nil {
				f.registry.EXPECT().Unicast(connectionID, event.Error, event.NewFailure(tt.message)).Times(1)
			}

			f.service.LeaveRoom(connectionID, event.LeaveRoomRequest{Room: "general"})
		})
	}
}

func TestChatService_SendMessage_Blank_Content(t *testing.T) {
	for _, content := range []string{"", "   ", "\n\t"} {
		f := newServiceFixture(t)

		// Then only the sender hears about it and nothing reaches the pipeline
		f.orchestrator.EXPECT().CreateMessage(gomock.Any(), gomock.Any()).Times(0)
		f.registry.EXPECT().Broadcast(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		f.registry.EXPECT().Unicast(connectionID, event.MessageError, event.NewFailure(msgContentRequired)).Times(1)

		f.service.SendMessage(context.Background(), connectionID, event.SendMessageRequest{Content: content})
	}
}

func TestChatService_SendMessage_Applies_Defaults(t *testing.T) {
	req := require.New(t)
	f := newServiceFixture(t)

	var input domain.MessageInput
	f.orchestrator.EXPECT().CreateMessage(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, in domain.MessageInput) (domain.ProcessedMessage, error) {
			input = in
			return domain.ProcessedMessage{Message: domain.Message{Room: in.Room, UserID: in.UserID}}, nil
		})

	f.service.SendMessage(context.Background(), connectionID, event.SendMessageRequest{Content: "hi"})

	req.Equal("hi", input.Content)
	req.Equal("general", input.Room)
	req.Equal("user_5f0c3d2a", input.UserID)
}

func TestChatService_SendMessage_Keeps_Given_User_And_Room(t *testing.T) {
	f := newServiceFixture(t)

	f.orchestrator.EXPECT().CreateMessage(gomock.Any(), domain.MessageInput{
		Content: "hi",
		Room:    "random",
		UserID:  "alice",
	}).Return(domain.ProcessedMessage{}, nil)

	f.service.SendMessage(context.Background(), connectionID, event.SendMessageRequest{
		Content: "hi",
		Room:    "random",
		UserID:  "alice",
	})
}

func TestChatService_SendMessage_Failure_Goes_To_Sender_Only(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{
			name:    "Validation",
			err:     errors.ErrContentTooLong,
			message: errors.ErrContentTooLong.Error(),
		},
		{
			name:    "Storage",
			err:     fmt.Errorf("%w: disk full", errors.ErrPersistence),
			message: msgSendFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)
			f.orchestrator.EXPECT().CreateMessage(gomock.Any(), gomock.Any()).Return(domain.ProcessedMessage{}, tt.err)
			f.registry.EXPECT().Broadcast(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			f.registry.EXPECT().Unicast(connectionID, event.MessageError, event.NewFailure(tt.message)).Times(1)

			f.service.SendMessage(context.Background(), connectionID, event.SendMessageRequest{
				Content: strings.Repeat("x", 10),
			})
		})
	}
}

func TestChatService_Typing(t *testing.T) {
	f := newServiceFixture(t)

	f.registry.EXPECT().BroadcastExcept("general", connectionID, event.UserTyping, event.UserTypingPayload{
		UserID:   "user_5f0c3d2a",
		IsTyping: true,
		Room:     "general",
	}).Times(1)
	f.registry.EXPECT().BroadcastExcept("random", connectionID, event.UserTyping, event.UserTypingPayload{
		UserID:   "user_5f0c3d2a",
		IsTyping: false,
		Room:     "random",
	}).Times(1)

	f.service.Typing(connectionID, event.TypingRequest{IsTyping: true})
	f.service.Typing(connectionID, event.TypingRequest{Room: "random", IsTyping: false})
}

func TestChatService_Typing_Drops_Non_Boolean(t *testing.T) {
	f := newServiceFixture(t)

	f.registry.EXPECT().BroadcastExcept(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	f.registry.EXPECT().Unicast(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	for _, value := range []any{nil, "true", 1, map[string]any{}} {
		f.service.Typing(connectionID, event.TypingRequest{Room: "general", IsTyping: value})
	}
}

func TestPlaceholderUserID(t *testing.T) {
	req := require.New(t)
	req.Equal("user_5f0c3d2a", PlaceholderUserID(connectionID))
	req.Equal("user_abc", PlaceholderUserID("abc"))
}
