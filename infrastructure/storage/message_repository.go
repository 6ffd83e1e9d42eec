// Package storage holds the persistence gateways and the message search index.
package storage

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	messagePrefix   = "msg:"
	roomIndexPrefix = "idx:room:"
)

// MessageRepository persists messages in BadgerDB.
// Records live under "msg:{id}". A second key
// "idx:room:{hex room}:{timestamp_padded}:{id}" orders each room chronologically:
// the 19-digit zero padding keeps lexicographical order equal to time order
// and the id breaks ties between messages created in the same nanosecond.
type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
	now func() time.Time
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) *MessageRepository {
	return &MessageRepository{
		db:  db,
		log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// diskMessage is the stored shape: times are kept as Unix nanoseconds.
type diskMessage struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Content   string           `json:"content"`
	Room      string           `json:"room"`
	Metadata  *domain.Metadata `json:"metadata,omitempty"`
	Timestamp int64            `json:"timestamp"`
	UpdatedAt int64            `json:"updatedAt"`
}

func (m *MessageRepository) Create(_ context.Context, draft domain.Message) (domain.Message, error) {
	bytes, err := json.Marshal(fromMessage(draft))
	if err != nil {
		return domain.Message{}, persistenceError(err)
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(messageKey(draft.ID), bytes); err != nil {
			return err
		}
		return txn.Set(roomIndexKey(draft.Room, draft.Timestamp, draft.ID), nil)
	})
	if err != nil {
		return domain.Message{}, persistenceError(err)
	}
	m.log.Debug("Message stored", "message_id", draft.ID, "room", draft.Room)
	return toMessage(fromMessage(draft)), nil
}

// FindWithPagination walks the room index in ascending time order.
// Only keys are read to count the room; values are fetched for the requested page.
func (m *MessageRepository) FindWithPagination(_ context.Context, room string, limit, offset int) ([]domain.Message, int, error) {
	var messages []domain.Message
	total := 0
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := roomIndexPrefixFor(room)
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		var ids []string
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if total >= offset && len(ids) < limit {
				ids = append(ids, idFromIndexKey(it.Item().Key()))
			}
			total++
		}

		for _, id := range ids {
			message, err := readMessage(txn, id)
			if err != nil {
				return err
			}
			if message != nil {
				messages = append(messages, *message)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, persistenceError(err)
	}
	return messages, total, nil
}

// FindByID returns nil when no message has this id.
func (m *MessageRepository) FindByID(_ context.Context, id string) (*domain.Message, error) {
	var message *domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		var err error
		message, err = readMessage(txn, id)
		return err
	})
	if err != nil {
		return nil, persistenceError(err)
	}
	return message, nil
}

// Update writes the patch and advances UpdatedAt. Returns nil when no message has this id.
func (m *MessageRepository) Update(_ context.Context, id string, patch domain.MessagePatch) (*domain.Message, error) {
	var updated *domain.Message
	err := m.db.Update(func(txn *badger.Txn) error {
		message, err := readMessage(txn, id)
		if err != nil || message == nil {
			return err
		}
		message.Metadata = &patch.Metadata
		message.UpdatedAt = later(m.now(), message.UpdatedAt)
		bytes, err := json.Marshal(fromMessage(*message))
		if err != nil {
			return err
		}
		if err := txn.Set(messageKey(id), bytes); err != nil {
			return err
		}
		updated = message
		return nil
	})
	if err != nil {
		return nil, persistenceError(err)
	}
	return updated, nil
}

func readMessage(txn *badger.Txn, id string) (*domain.Message, error) {
	item, err := txn.Get(messageKey(id))
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var message domain.Message
	err = item.Value(func(value []byte) error {
		message, err = DecodeMessage(value)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// DecodeMessage reads a value stored under a "msg:" key.
func DecodeMessage(value []byte) (domain.Message, error) {
	var disk diskMessage
	if err := json.Unmarshal(value, &disk); err != nil {
		return domain.Message{}, err
	}
	return toMessage(disk), nil
}

// IsMessageKey tells records apart from room index entries.
func IsMessageKey(key []byte) bool {
	return strings.HasPrefix(string(key), messagePrefix)
}

func messageKey(id string) []byte {
	return []byte(messagePrefix + id)
}

// roomIndexPrefixFor hex-encodes the room so that a room name containing ':'
// can never be the prefix of another room.
func roomIndexPrefixFor(room string) []byte {
	return []byte(fmt.Sprintf("%s%x:", roomIndexPrefix, room))
}

func roomIndexKey(room string, at time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s", roomIndexPrefixFor(room), at.UnixNano(), id))
}

// idFromIndexKey strips "idx:room:{hex}:{ts19}:" from the key.
func idFromIndexKey(key []byte) string {
	separators := 0
	for i, b := range key {
		if b == ':' {
			separators++
			if separators == 4 {
				return string(key[i+1:])
			}
		}
	}
	return ""
}

func fromMessage(message domain.Message) diskMessage {
	return diskMessage{
		ID:        message.ID,
		UserID:    message.UserID,
		Content:   message.Content,
		Room:      message.Room,
		Metadata:  message.Metadata,
		Timestamp: message.Timestamp.UnixNano(),
		UpdatedAt: message.UpdatedAt.UnixNano(),
	}
}

func toMessage(disk diskMessage) domain.Message {
	return domain.Message{
		ID:        disk.ID,
		UserID:    disk.UserID,
		Content:   disk.Content,
		Room:      disk.Room,
		Metadata:  disk.Metadata,
		Timestamp: time.Unix(0, disk.Timestamp).UTC(),
		UpdatedAt: time.Unix(0, disk.UpdatedAt).UTC(),
	}
}

func later(candidate, previous time.Time) time.Time {
	if candidate.Before(previous) {
		return previous
	}
	return candidate
}

func persistenceError(err error) error {
	return fmt.Errorf("%w: %w", errors.ErrPersistence, err)
}
