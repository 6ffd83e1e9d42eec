package runtime

import (
	"chat-relay/domain/event"
	"chat-relay/errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

// Sink records every frame it receives.
type Sink struct {
	mu     sync.Mutex
	id     string
	frames []event.Outbound
}

func NewSink() *Sink {
	return &Sink{id: uuid.NewString()}
}

func (s *Sink) ID() string { return s.id }

func (s *Sink) Send(frame event.Outbound) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, frame)
	return nil
}

func (s *Sink) Close() {}

func (s *Sink) Frames() []event.Outbound {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.Outbound(nil), s.frames...)
}

func (s *Sink) Names() []event.Name {
	return lo.Map(s.Frames(), func(item event.Outbound, _ int) event.Name { return item.Event })
}

func newTestRegistry() *Registry {
	return NewRegistry(logs.GetLoggerFromLevel(slog.LevelDebug))
}

func TestRegistry_Register_Acknowledges_Connection(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry()
	sink := NewSink()

	// Given no connection exists
	req.Empty(registry.sessions)

	// When a connection registers
	registry.Register(sink)

	// Then it is tracked
	req.Len(registry.sessions, 1)
	req.Equal(sink, registry.sessions[sink.ID()])

	// And it receives its own identifier
	frames := sink.Frames()
	req.Len(frames, 1)
	req.Equal(event.Connected, frames[0].Event)
	req.Equal(sink.ID(), frames[0].Data.(event.ConnectedPayload).ClientID)
}

func TestRegistry_Join_One_Room_Multiple_Connections(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry()
	sink1, sink2 := NewSink(), NewSink()
	registry.Register(sink1)
	registry.Register(sink2)

	// When both connections join the same room
	req.NoError(registry.Join(sink1.ID(), "general"))
	req.NoError(registry.Join(sink2.ID(), "  general  "))

	// Then the room has two members
	req.Len(registry.roomMembers, 1)
	req.Len(registry.roomMembers["general"], 2)
	req.Len(registry.GetConnectionsForRoom("general"), 2)

	// And each connection only received its own acknowledgement
	req.Equal([]event.Name{event.Connected, event.RoomJoined}, sink1.Names())
	req.Equal([]event.Name{event.Connected, event.RoomJoined}, sink2.Names())
	req.Equal("general", sink2.Frames()[1].Data.(event.RoomPayload).Room)
}

func TestRegistry_Join_Invalid_Room(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry()
	sink := NewSink()
	registry.Register(sink)

	for _, room := range []string{"", "   ", strings.Repeat("r", 51)} {
		err := registry.Join(sink.ID(), room)
		req.ErrorIs(err, errors.ErrInvalidRoom)
	}

	// Then no membership changed
	req.Empty(registry.roomMembers)
	req.Empty(registry.memberships[sink.ID()])
	req.Equal([]event.Name{event.Connected}, sink.Names())
}

func TestRegistry_Join_Unknown_Connection(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry()

	err := registry.Join(uuid.NewString(), "general")

	req.ErrorIs(err, errors.ErrUnknownConnection)
	req.Empty(registry.roomMembers)
}

func TestRegistry_Leave_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry()
	sink := NewSink()
	registry.Register(sink)
	req.NoError(registry.Join(sink.ID(), "general"))

	// When the connection leaves twice
	req.NoError(registry.Leave(sink.ID(), "general"))
	req.NoError(registry.Leave(sink.ID(), "general"))

	// Then the room doesn't exist anymore
	req.Empty(registry.roomMembers)
	req.Nil(registry.GetConnectionsForRoom("general"))
	req.Equal([]event.Name{event.Connected, event.RoomJoined, event.RoomLeft, event.RoomLeft}, sink.Names())
}

func TestRegistry_Leave_Missing_Room(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry()
	sink := NewSink()
	registry.Register(sink)

	req.ErrorIs(registry.Leave(sink.ID(), ""), errors.ErrInvalidRoom)
	req.ErrorIs(registry.Leave(sink.ID(), "  "), errors.ErrInvalidRoom)
	req.Equal([]event.Name{event.Connected}, sink.Names())
}

func TestRegistry_Unregister_Clears_All_Memberships(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry()
	sink1, sink2 := NewSink(), NewSink()
	registry.Register(sink1)
	registry.Register(sink2)
	req.NoError(registry.Join(sink1.ID(), "general"))
	req.NoError(registry.Join(sink1.ID(), "random"))
	req.NoError(registry.Join(sink2.ID(), "general"))

	// When the first connection disconnects
	registry.Unregister(sink1.ID())

	// Then only the second connection is left
	req.Len(registry.sessions, 1)
	req.NotContains(registry.roomMembers, "random")
	req.Len(registry.roomMembers["general"], 1)
	req.Contains(registry.roomMembers["general"], sink2.ID())
	req.Equal(1, registry.Stats().Rooms)

	// And unregistering again is a no-op
	registry.Unregister(sink1.ID())
	req.Equal(1, registry.Stats().Connections)
}

func TestRegistry_Broadcast_Reaches_Room_Members_Only(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry()
	member, outsider := NewSink(), NewSink()
	registry.Register(member)
	registry.Register(outsider)
	req.NoError(registry.Join(member.ID(), "general"))
	req.NoError(registry.Join(outsider.ID(), "random"))

	// When a frame is broadcast to general
	registry.Broadcast("general", event.NewMessage, "payload")

	// Then only the member received it
	req.Contains(member.Names(), event.NewMessage)
	req.NotContains(outsider.Names(), event.NewMessage)

	// And broadcasting to an empty room does nothing
	registry.Broadcast("nobody-here", event.NewMessage, "payload")
}

func TestRegistry_BroadcastExcept_Skips_Sender(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry()
	sender, other := NewSink(), NewSink()
	registry.Register(sender)
	registry.Register(other)
	req.NoError(registry.Join(sender.ID(), "general"))
	req.NoError(registry.Join(other.ID(), "general"))

	registry.BroadcastExcept("general", sender.ID(), event.UserTyping, event.UserTypingPayload{IsTyping: true})

	req.NotContains(sender.Names(), event.UserTyping)
	req.Contains(other.Names(), event.UserTyping)
}

func TestRegistry_Unicast(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry()
	sink := NewSink()
	registry.Register(sink)

	registry.Unicast(sink.ID(), event.MessageError, event.NewFailure("nope"))
	registry.Unicast(uuid.NewString(), event.MessageError, event.NewFailure("nobody"))

	req.Equal([]event.Name{event.Connected, event.MessageError}, sink.Names())
}

func TestRegistry_Concurrent_Join_Leave_Broadcast(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry()
	const connections = 50

	var wg sync.WaitGroup
	sinks := make([]*Sink, connections)
	for i := 0; i < connections; i++ {
		sinks[i] = NewSink()
		wg.Add(1)
		go func(s *Sink, i int) {
			defer wg.Done()
			registry.Register(s)
			room := fmt.Sprintf("room-%d", i%5)
			_ = registry.Join(s.ID(), room)
			registry.Broadcast(room, event.NewMessage, i)
			if i%2 == 0 {
				registry.Unregister(s.ID())
			}
		}(sinks[i], i)
	}
	wg.Wait()

	// Then only odd connections remain, spread over the five rooms
	stats := registry.Stats()
	req.Equal(connections/2, stats.Connections)
	total := 0
	for i := 0; i < 5; i++ {
		total += len(registry.GetConnectionsForRoom(fmt.Sprintf("room-%d", i)))
	}
	req.Equal(connections/2, total)
}
