//go:generate go run go.uber.org/mock/mockgen -source=storage.go -destination=../mocks/mock_storage.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"context"
)

// IMessageRepository is the persistence gateway for chat messages.
// FindByID and Update return a nil message, not an error, when the id is unknown.
type IMessageRepository interface {
	Create(ctx context.Context, draft domain.Message) (domain.Message, error)
	FindWithPagination(ctx context.Context, room string, limit, offset int) ([]domain.Message, int, error)
	FindByID(ctx context.Context, id string) (*domain.Message, error)
	Update(ctx context.Context, id string, patch domain.MessagePatch) (*domain.Message, error)
}

// IMessageIndex is a full-text index over finalized messages.
type IMessageIndex interface {
	Index(ctx context.Context, message domain.Message) error
	Search(ctx context.Context, room, terms string, limit int) ([]string, error)
}
