package storage

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"context"
	"log/slog"
)

// IndexedMessageRepository feeds the search index once a message is finalized.
// Indexing failures are only logged, the write itself already succeeded.
type IndexedMessageRepository struct {
	contract.IMessageRepository
	index contract.IMessageIndex
	log   *slog.Logger
}

func NewIndexedMessageRepository(repository contract.IMessageRepository,
	index contract.IMessageIndex, log *slog.Logger) *IndexedMessageRepository {
	return &IndexedMessageRepository{IMessageRepository: repository, index: index, log: log}
}

func (r *IndexedMessageRepository) Update(ctx context.Context, id string, patch domain.MessagePatch) (*domain.Message, error) {
	updated, err := r.IMessageRepository.Update(ctx, id, patch)
	if err != nil || updated == nil {
		return updated, err
	}
	if err := r.index.Index(ctx, *updated); err != nil {
		r.log.Warn("Message not indexed", "message_id", id, "error", err)
	}
	return updated, nil
}
