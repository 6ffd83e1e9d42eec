//go:generate go run go.uber.org/mock/mockgen -source=processor.go -destination=../mocks/mock_processor.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"context"
)

// IContentProcessor never fails: an unavailable processor yields a degraded result.
type IContentProcessor interface {
	Process(ctx context.Context, message domain.Message) domain.ProcessingResult
}
