//go:generate go run go.uber.org/mock/mockgen -source=orchestrator.go -destination=../mocks/mock_orchestrator.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"context"
)

type IMessageOrchestrator interface {
	CreateMessage(ctx context.Context, input domain.MessageInput) (domain.ProcessedMessage, error)
	GetMessages(ctx context.Context, query domain.ListMessagesQuery) (domain.MessagePage, error)
	GetMessageByID(ctx context.Context, id string) (*domain.Message, error)
	SearchMessages(ctx context.Context, query domain.SearchQuery) ([]domain.Message, error)
}
