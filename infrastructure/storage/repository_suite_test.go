package storage

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

// runRepositorySuite checks the behaviour both persistence gateways share.
func runRepositorySuite(t *testing.T, newRepository func(t *testing.T) contract.IMessageRepository) {
	t.Run("Create then find by id", func(t *testing.T) {
		req := require.New(t)
		repository := newRepository(t)
		draft := newDraft("general", "hello", time.Now().UTC())

		created, err := repository.Create(context.Background(), draft)
		req.NoError(err)
		req.Equal(draft.ID, created.ID)

		found, err := repository.FindByID(context.Background(), draft.ID)
		req.NoError(err)
		req.NotNil(found)
		req.Equal(draft.Content, found.Content)
		req.Equal(draft.Room, found.Room)
		req.Equal(draft.UserID, found.UserID)
		req.True(draft.Timestamp.Equal(found.Timestamp))
		req.True(draft.UpdatedAt.Equal(found.UpdatedAt))
		req.Nil(found.Metadata)
	})

	t.Run("Unknown id", func(t *testing.T) {
		req := require.New(t)
		repository := newRepository(t)

		found, err := repository.FindByID(context.Background(), uuid.NewString())
		req.NoError(err)
		req.Nil(found)

		updated, err := repository.Update(context.Background(), uuid.NewString(), domain.MessagePatch{})
		req.NoError(err)
		req.Nil(updated)
	})

	t.Run("Update records metadata and advances updatedAt", func(t *testing.T) {
		req := require.New(t)
		repository := newRepository(t)
		draft := newDraft("general", "hello", time.Now().UTC().Add(-time.Minute))
		_, err := repository.Create(context.Background(), draft)
		req.NoError(err)

		outcome := domain.ProcessingOutcome{Success: true, ProcessingTime: lo.ToPtr(3.5), Sanitized: lo.ToPtr(false)}
		updated, err := repository.Update(context.Background(), draft.ID, domain.MessagePatch{
			Metadata: domain.Metadata{LambdaProcessing: &outcome},
		})
		req.NoError(err)
		req.NotNil(updated)
		req.Equal(draft.ID, updated.ID)
		req.Equal(&outcome, updated.Metadata.LambdaProcessing)
		req.True(updated.UpdatedAt.After(draft.UpdatedAt))
		req.True(draft.Timestamp.Equal(updated.Timestamp))

		// And the update is durable
		found, err := repository.FindByID(context.Background(), draft.ID)
		req.NoError(err)
		req.Equal(&outcome, found.Metadata.LambdaProcessing)
		req.Equal("hello", found.Content)
	})

	t.Run("Pagination is ascending by timestamp and scoped by room", func(t *testing.T) {
		req := require.New(t)
		repository := newRepository(t)
		at := time.Now().UTC()

		// Given messages stored out of order
		var expected []string
		for _, i := range []int{3, 0, 4, 1, 2} {
			draft := newDraft("general", fmt.Sprintf("message %d", i), at.Add(time.Duration(i)*time.Second))
			_, err := repository.Create(context.Background(), draft)
			req.NoError(err)
		}
		for i := 0; i < 5; i++ {
			expected = append(expected, fmt.Sprintf("message %d", i))
		}
		_, err := repository.Create(context.Background(), newDraft("random", "elsewhere", at))
		req.NoError(err)

		// When reading the whole room
		messages, total, err := repository.FindWithPagination(context.Background(), "general", 20, 0)
		req.NoError(err)
		req.Equal(5, total)
		req.Equal(expected, contents(messages))

		// When reading a page
		messages, total, err = repository.FindWithPagination(context.Background(), "general", 2, 1)
		req.NoError(err)
		req.Equal(5, total)
		req.Equal([]string{"message 1", "message 2"}, contents(messages))

		// When the offset is past the end
		messages, total, err = repository.FindWithPagination(context.Background(), "general", 2, 10)
		req.NoError(err)
		req.Equal(5, total)
		req.Empty(messages)

		// When the room is unknown
		messages, total, err = repository.FindWithPagination(context.Background(), "nowhere", 20, 0)
		req.NoError(err)
		req.Equal(0, total)
		req.Empty(messages)
	})

	t.Run("Rooms sharing a prefix stay apart", func(t *testing.T) {
		req := require.New(t)
		repository := newRepository(t)
		at := time.Now().UTC()
		_, err := repository.Create(context.Background(), newDraft("dev", "short", at))
		req.NoError(err)
		_, err = repository.Create(context.Background(), newDraft("dev:ops", "long", at))
		req.NoError(err)

		messages, total, err := repository.FindWithPagination(context.Background(), "dev", 20, 0)
		req.NoError(err)
		req.Equal(1, total)
		req.Equal([]string{"short"}, contents(messages))
	})
}

func newDraft(room, content string, at time.Time) domain.Message {
	return domain.Message{
		ID:        uuid.NewString(),
		UserID:    "alice",
		Content:   content,
		Room:      room,
		Timestamp: at,
		UpdatedAt: at,
	}
}

func contents(messages []domain.Message) []string {
	return lo.Map(messages, func(item domain.Message, _ int) string { return item.Content })
}
