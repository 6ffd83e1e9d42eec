// Package runtime holds the message pipeline and the live connection table.
// It sequences storage, processing and fan-out without knowing any transport.
package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type Orchestrator struct {
	log         *slog.Logger
	repository  contract.IMessageRepository
	processor   contract.IContentProcessor
	broadcaster contract.Broadcaster
	index       contract.IMessageIndex
	now         func() time.Time
	newID       func() string
}

func NewOrchestrator(log *slog.Logger, repository contract.IMessageRepository,
	processor contract.IContentProcessor, broadcaster contract.Broadcaster) *Orchestrator {
	return &Orchestrator{
		log:         log,
		repository:  repository,
		processor:   processor,
		broadcaster: broadcaster,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

// WithIndex enables SearchMessages on top of a full-text index.
func (o *Orchestrator) WithIndex(index contract.IMessageIndex) *Orchestrator {
	o.index = index
	return o
}

// CreateMessage validates, persists a draft, runs the content processor,
// persists the processing outcome and finally broadcasts the result to the room.
// Nothing reaches the room unless both writes succeeded.
// Once started it runs to completion even if the caller goes away.
func (o *Orchestrator) CreateMessage(ctx context.Context, input domain.MessageInput) (domain.ProcessedMessage, error) {
	normalized, err := domain.NormalizeMessageInput(input)
	if err != nil {
		return domain.ProcessedMessage{}, err
	}
	ctx = context.WithoutCancel(ctx)

	now := o.now()
	draft, err := o.repository.Create(ctx, domain.Message{
		ID:        o.newID(),
		UserID:    normalized.UserID,
		Content:   normalized.Content,
		Room:      normalized.Room,
		Timestamp: now,
		UpdatedAt: now,
	})
	if err != nil {
		o.log.Error("Failed to persist draft message", "room", normalized.Room, "error", err)
		return domain.ProcessedMessage{}, err
	}

	result := o.process(ctx, draft)
	if !result.Outcome.Success {
		o.log.Warn("Content processing degraded", "message_id", draft.ID, "reason", result.Outcome.Error)
	}

	metadata := domain.Metadata{LambdaProcessing: lo.ToPtr(result.Outcome)}
	updated, err := o.repository.Update(ctx, draft.ID, domain.MessagePatch{Metadata: metadata})
	if err != nil {
		// The draft stays stored without metadata and is never broadcast.
		o.log.Error("Failed to persist processing metadata", "message_id", draft.ID, "error", err)
		return domain.ProcessedMessage{}, err
	}
	if updated == nil {
		o.log.Error("Draft vanished before metadata update", "message_id", draft.ID)
		return domain.ProcessedMessage{}, fmt.Errorf("%w: %s", errors.ErrMessageNotFound, draft.ID)
	}

	final := draft
	final.ID = updated.ID
	final.Timestamp = updated.Timestamp
	final.UpdatedAt = updated.UpdatedAt
	final.Metadata = &metadata
	processed := domain.ProcessedMessage{
		Message:             final,
		ProcessedContent:    result.ProcessedContent,
		ProcessingTimestamp: result.ProcessingTimestamp,
	}

	o.broadcaster.Broadcast(processed.Room, event.NewMessage, event.NewMessagePayload{
		Success: true,
		Data:    processed,
		Message: "New message received",
	})
	o.log.Debug("Message broadcast", "message_id", processed.ID, "room", processed.Room)
	return processed, nil
}

// process shields the pipeline from a misbehaving processor:
// a panic becomes a degraded result built locally.
func (o *Orchestrator) process(ctx context.Context, draft domain.Message) (result domain.ProcessingResult) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("Content processor panicked", "message_id", draft.ID, "panic", r)
			result = domain.DegradedResult(draft.Content, fmt.Sprintf("content processor failure: %v", r), o.now())
		}
	}()
	return o.processor.Process(ctx, draft)
}

func (o *Orchestrator) GetMessages(ctx context.Context, query domain.ListMessagesQuery) (domain.MessagePage, error) {
	room, limit, offset, err := domain.ResolveListQuery(query)
	if err != nil {
		return domain.MessagePage{}, err
	}
	messages, total, err := o.repository.FindWithPagination(ctx, room, limit, offset)
	if err != nil {
		return domain.MessagePage{}, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return domain.MessagePage{
		Messages: messages,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}, nil
}

// GetMessageByID returns nil without error when the message doesn't exist.
func (o *Orchestrator) GetMessageByID(ctx context.Context, id string) (*domain.Message, error) {
	normalized, err := domain.NormalizeID(id)
	if err != nil {
		return nil, err
	}
	return o.repository.FindByID(ctx, normalized)
}

// SearchMessages resolves index hits through the repository, keeping relevance order.
// Hits whose record disappeared are skipped.
func (o *Orchestrator) SearchMessages(ctx context.Context, query domain.SearchQuery) ([]domain.Message, error) {
	if o.index == nil {
		return nil, errors.ErrSearchDisabled
	}
	resolved, limit, err := domain.ResolveSearchQuery(query)
	if err != nil {
		return nil, err
	}
	ids, err := o.index.Search(ctx, resolved.Room, resolved.Terms, limit)
	if err != nil {
		return nil, err
	}
	messages := make([]domain.Message, 0, len(ids))
	for _, id := range ids {
		message, err := o.repository.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if message != nil {
			messages = append(messages, *message)
		}
	}
	return messages, nil
}
