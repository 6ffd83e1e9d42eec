package storage

import (
	"chat-relay/domain"
	"context"
	"fmt"
	"log/slog"

	"github.com/blugelabs/bluge"
)

const (
	idField      = "_id"
	roomField    = "room"
	contentField = "content"
	userField    = "userId"
)

// MessageIndex is a Bluge full-text index of message contents, scoped by room.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) *MessageIndex {
	return &MessageIndex{writer: writer, log: log}
}

// Index adds or replaces the document of a message.
func (i *MessageIndex) Index(_ context.Context, message domain.Message) error {
	doc := bluge.NewDocument(message.ID).
		AddField(bluge.NewKeywordField(roomField, message.Room)).
		AddField(bluge.NewKeywordField(userField, message.UserID)).
		AddField(bluge.NewTextField(contentField, message.Content))
	if err := i.writer.Update(doc.ID(), doc); err != nil {
		return persistenceError(fmt.Errorf("indexing message %s: %w", message.ID, err))
	}
	return nil
}

// Search returns the ids of the best matching messages of a room, most relevant first.
func (i *MessageIndex) Search(ctx context.Context, room, terms string, limit int) ([]string, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, persistenceError(err)
	}
	defer func() {
		_ = reader.Close()
	}()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(room).SetField(roomField)).
		AddMust(bluge.NewMatchQuery(terms).SetField(contentField))
	request := bluge.NewTopNSearch(limit, query)

	matches, err := reader.Search(ctx, request)
	if err != nil {
		return nil, persistenceError(err)
	}

	var ids []string
	match, err := matches.Next()
	for err == nil && match != nil {
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == idField {
				ids = append(ids, string(value))
				return false
			}
			return true
		})
		if err != nil {
			break
		}
		match, err = matches.Next()
	}
	if err != nil {
		return nil, persistenceError(err)
	}
	i.log.Debug("Search done", "room", room, "terms", terms, "hits", len(ids))
	return ids, nil
}
