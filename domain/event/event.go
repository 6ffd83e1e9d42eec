// Package event describes the frames exchanged with real-time clients.
// Every frame is an envelope carrying an event name and its payload.
package event

import (
	"chat-relay/domain"
	"encoding/json"
)

type Name string

const (
	Connected    Name = "connected"
	JoinRoom     Name = "joinRoom"
	RoomJoined   Name = "roomJoined"
	LeaveRoom    Name = "leaveRoom"
	RoomLeft     Name = "roomLeft"
	SendMessage  Name = "sendMessage"
	NewMessage   Name = "newMessage"
	MessageError Name = "messageError"
	Typing       Name = "typing"
	UserTyping   Name = "userTyping"
	Error        Name = "error"
)

// Inbound is a frame read from a client. Data is decoded by the handler owning the event.
type Inbound struct {
	Event Name            `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Outbound is a frame written to a client.
type Outbound struct {
	Event Name `json:"event"`
	Data  any  `json:"data,omitempty"`
}

type ConnectedPayload struct {
	Message  string `json:"message"`
	ClientID string `json:"clientId"`
}

type RoomPayload struct {
	Room    string `json:"room"`
	Message string `json:"message"`
}

type NewMessagePayload struct {
	Success bool                    `json:"success"`
	Data    domain.ProcessedMessage `json:"data"`
	Message string                  `json:"message"`
}

// Failure is the payload of error and messageError frames.
type Failure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type UserTypingPayload struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
	Room     string `json:"room"`
}

type JoinRoomRequest struct {
	Room string `json:"room"`
}

type LeaveRoomRequest struct {
	Room string `json:"room"`
}

type SendMessageRequest struct {
	Content string `json:"content"`
	Room    string `json:"room,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

// TypingRequest keeps IsTyping untyped: anything but a JSON boolean drops the event.
type TypingRequest struct {
	Room     string `json:"room,omitempty"`
	IsTyping any    `json:"isTyping"`
}

func NewFailure(message string) Failure {
	return Failure{Success: false, Message: message}
}
