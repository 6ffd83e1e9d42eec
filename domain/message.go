// Package domain contains core concepts of the chat system.
// This file defines Message records and the processing outcome attached to them.
// No runtime, network, or storage logic should be added here.
package domain

import (
	"time"
)

const (
	DefaultRoom      = "general"
	AnonymousUser    = "anonymous"
	MaxContentLength = 1000
	MaxRoomLength    = 50
	DefaultLimit     = 20
	MaxLimit         = 100
)

// Message represents a persisted chat record.
// ID, UserID, Content, Room and Timestamp never change once created.
// Metadata is written exactly once, after the content processor ran.
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	Room      string    `json:"room"`
	Metadata  *Metadata `json:"metadata,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Metadata is the mutable part of a Message.
type Metadata struct {
	LambdaProcessing *ProcessingOutcome `json:"lambdaProcessing,omitempty"`
}

// MessagePatch carries the fields an update is allowed to touch.
type MessagePatch struct {
	Metadata Metadata
}

// ProcessingOutcome records how the content processor handled a message.
// ProcessingTime and Sanitized are only known when the remote call succeeded.
type ProcessingOutcome struct {
	Success        bool     `json:"success"`
	ProcessingTime *float64 `json:"processingTime,omitempty"`
	Sanitized      *bool    `json:"sanitized,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// ProcessingResult is what the content processor client hands back for every call.
type ProcessingResult struct {
	ProcessedContent    string
	ProcessingTimestamp time.Time
	Outcome             ProcessingOutcome
}

// DegradedResult keeps the original content and records why processing did not happen.
func DegradedResult(content, reason string, at time.Time) ProcessingResult {
	return ProcessingResult{
		ProcessedContent:    content,
		ProcessingTimestamp: at,
		Outcome: ProcessingOutcome{
			Success: false,
			Error:   reason,
		},
	}
}

// ProcessedMessage is the final shape returned to callers and broadcast to rooms.
type ProcessedMessage struct {
	Message
	ProcessedContent    string    `json:"processedContent"`
	ProcessingTimestamp time.Time `json:"processingTimestamp"`
}

// MessageInput is the raw creation request, before trimming and defaults.
type MessageInput struct {
	Content string `json:"content"`
	Room    string `json:"room,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

// ListMessagesQuery uses pointers so that an explicit zero is told apart from an absent value.
type ListMessagesQuery struct {
	Room   string
	Limit  *int
	Offset *int
}

type MessagePage struct {
	Messages []Message `json:"messages"`
	Total    int       `json:"total"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}

type SearchQuery struct {
	Room  string
	Terms string
	Limit *int
}
