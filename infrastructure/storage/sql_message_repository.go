package storage

import (
	"chat-relay/domain"
	"context"
	"encoding/json"
	goerrors "errors"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// messageRecord is the SQL row of a message. Metadata is stored as a JSON document.
type messageRecord struct {
	ID        string    `gorm:"primarykey;size:36"`
	UserID    string    `gorm:"size:255;not null"`
	Content   string    `gorm:"size:1000;not null"`
	Room      string    `gorm:"size:50;not null;index:idx_messages_room_timestamp,priority:1"`
	Metadata  *string   `gorm:"type:text"`
	Timestamp time.Time `gorm:"not null;index:idx_messages_room_timestamp,priority:2"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (messageRecord) TableName() string {
	return "messages"
}

// SQLMessageRepository persists messages through GORM.
type SQLMessageRepository struct {
	db  *gorm.DB
	log *slog.Logger
	now func() time.Time
}

func NewSQLMessageRepository(db *gorm.DB, log *slog.Logger) *SQLMessageRepository {
	return &SQLMessageRepository{
		db:  db,
		log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Migrate creates or updates the messages table.
func (r *SQLMessageRepository) Migrate() error {
	if err := r.db.AutoMigrate(&messageRecord{}); err != nil {
		return persistenceError(err)
	}
	return nil
}

func (r *SQLMessageRepository) Create(ctx context.Context, draft domain.Message) (domain.Message, error) {
	record, err := toRecord(draft)
	if err != nil {
		return domain.Message{}, persistenceError(err)
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return domain.Message{}, persistenceError(err)
	}
	r.log.Debug("Message stored", "message_id", record.ID, "room", record.Room)
	return fromRecord(record)
}

func (r *SQLMessageRepository) FindWithPagination(ctx context.Context, room string, limit, offset int) ([]domain.Message, int, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&messageRecord{}).Where("room = ?", room)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, persistenceError(err)
	}

	var records []messageRecord
	err := r.db.WithContext(ctx).
		Where("room = ?", room).
		Order("timestamp ASC").
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, 0, persistenceError(err)
	}

	messages := make([]domain.Message, 0, len(records))
	for _, record := range records {
		message, err := fromRecord(record)
		if err != nil {
			return nil, 0, err
		}
		messages = append(messages, message)
	}
	return messages, int(total), nil
}

// FindByID returns nil when no message has this id.
func (r *SQLMessageRepository) FindByID(ctx context.Context, id string) (*domain.Message, error) {
	var record messageRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if goerrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceError(err)
	}
	message, err := fromRecord(record)
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// Update writes the patch and advances UpdatedAt. Returns nil when no message has this id.
func (r *SQLMessageRepository) Update(ctx context.Context, id string, patch domain.MessagePatch) (*domain.Message, error) {
	metadata, err := json.Marshal(patch.Metadata)
	if err != nil {
		return nil, persistenceError(err)
	}

	var updated *domain.Message
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record messageRecord
		err := tx.First(&record, "id = ?", id).Error
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		record.Metadata = lo.ToPtr(string(metadata))
		record.UpdatedAt = later(r.now(), record.UpdatedAt)
		err = tx.Model(&messageRecord{}).Where("id = ?", id).Updates(map[string]any{
			"metadata":   record.Metadata,
			"updated_at": record.UpdatedAt,
		}).Error
		if err != nil {
			return err
		}
		message, err := fromRecord(record)
		if err != nil {
			return err
		}
		updated = &message
		return nil
	})
	if err != nil {
		return nil, persistenceError(err)
	}
	return updated, nil
}

func toRecord(message domain.Message) (messageRecord, error) {
	record := messageRecord{
		ID:        message.ID,
		UserID:    message.UserID,
		Content:   message.Content,
		Room:      message.Room,
		Timestamp: message.Timestamp.UTC(),
		UpdatedAt: message.UpdatedAt.UTC(),
	}
	if message.Metadata != nil {
		bytes, err := json.Marshal(message.Metadata)
		if err != nil {
			return messageRecord{}, err
		}
		record.Metadata = lo.ToPtr(string(bytes))
	}
	return record, nil
}

func fromRecord(record messageRecord) (domain.Message, error) {
	message := domain.Message{
		ID:        record.ID,
		UserID:    record.UserID,
		Content:   record.Content,
		Room:      record.Room,
		Timestamp: record.Timestamp.UTC(),
		UpdatedAt: record.UpdatedAt.UTC(),
	}
	if record.Metadata != nil {
		var metadata domain.Metadata
		if err := json.Unmarshal([]byte(*record.Metadata), &metadata); err != nil {
			return domain.Message{}, persistenceError(err)
		}
		message.Metadata = &metadata
	}
	return message, nil
}
