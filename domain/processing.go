package domain

import (
	"strings"
	"time"
)

// ProcessingRequest is the body sent to the external content processor.
type ProcessingRequest struct {
	MessageID string    `json:"messageId" validate:"required"`
	Content   string    `json:"content" validate:"required,max=1000"`
	UserID    string    `json:"userId"`
	Room      string    `json:"room"`
	Timestamp time.Time `json:"timestamp"`
}

// ProcessingResponse is the body returned by the external content processor.
// ProcessedContent is a pointer: an absent field means the content was left as is.
type ProcessingResponse struct {
	ProcessedContent *string  `json:"processedContent,omitempty"`
	ProcessingTime   *float64 `json:"processingTime,omitempty"`
	Sanitized        *bool    `json:"sanitized,omitempty"`
}

func NewProcessingRequest(message Message) ProcessingRequest {
	return ProcessingRequest{
		MessageID: message.ID,
		Content:   message.Content,
		UserID:    message.UserID,
		Room:      message.Room,
		Timestamp: message.Timestamp,
	}
}

// ValidateProcessingRequest is used by the reference processor service.
func ValidateProcessingRequest(request ProcessingRequest) error {
	request.MessageID = strings.TrimSpace(request.MessageID)
	request.Content = strings.TrimSpace(request.Content)
	if err := validate.Struct(request); err != nil {
		return toDomainError(err)
	}
	return nil
}
