package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

type Set map[string]struct{}

// Registry tracks live connections and the rooms they joined.
// Rooms are created on first join and dropped once their last member leaves.
type Registry struct {
	mu          sync.RWMutex
	log         *slog.Logger
	sessions    map[string]contract.Connection // map connection -> Connection
	roomMembers map[string]Set                 // map room to connections
	memberships map[string]Set                 // map connection to rooms
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:         log,
		sessions:    make(map[string]contract.Connection),
		roomMembers: make(map[string]Set),
		memberships: make(map[string]Set),
	}
}

// Register adds a live connection and acknowledges it with its own identifier.
// Registering an id twice replaces the previous connection but keeps its rooms.
func (r *Registry) Register(conn contract.Connection) {
	r.mu.Lock()
	r.sessions[conn.ID()] = conn
	if _, ok := r.memberships[conn.ID()]; !ok {
		r.memberships[conn.ID()] = make(Set)
	}
	r.mu.Unlock()

	r.log.Debug("Connection registered", "connection_id", conn.ID())
	r.send(conn, event.Connected, event.ConnectedPayload{
		Message:  "Connected to chat server",
		ClientID: conn.ID(),
	})
}

// Unregister removes a connection and every membership it held.
func (r *Registry) Unregister(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, connectionID)
	for room := range r.memberships[connectionID] {
		r.removeMember(room, connectionID)
	}
	delete(r.memberships, connectionID)
	r.log.Debug("Connection unregistered", "connection_id", connectionID)
}

// Join adds the connection to a room and acknowledges the joining connection only.
func (r *Registry) Join(connectionID, room string) error {
	name, err := domain.NormalizeRoom(room)
	if err != nil {
		return err
	}

	r.mu.Lock()
	conn, ok := r.sessions[connectionID]
	if !ok {
		r.mu.Unlock()
		return errors.ErrUnknownConnection
	}
	if _, ok := r.roomMembers[name]; !ok {
		r.roomMembers[name] = make(Set)
	}
	r.roomMembers[name][connectionID] = struct{}{}
	r.memberships[connectionID][name] = struct{}{}
	r.mu.Unlock()

	r.log.Debug("Connection joined room", "connection_id", connectionID, "room", name)
	r.send(conn, event.RoomJoined, event.RoomPayload{
		Room:    name,
		Message: fmt.Sprintf("Joined room %s", name),
	})
	return nil
}

// Leave removes the connection from a room. Leaving a room never joined is not an error.
func (r *Registry) Leave(connectionID, room string) error {
	name := strings.TrimSpace(room)
	if name == "" {
		return errors.ErrInvalidRoom
	}

	r.mu.Lock()
	conn, ok := r.sessions[connectionID]
	if !ok {
		r.mu.Unlock()
		return errors.ErrUnknownConnection
	}
	r.removeMember(name, connectionID)
	delete(r.memberships[connectionID], name)
	r.mu.Unlock()

	r.log.Debug("Connection left room", "connection_id", connectionID, "room", name)
	r.send(conn, event.RoomLeft, event.RoomPayload{
		Room:    name,
		Message: fmt.Sprintf("Left room %s", name),
	})
	return nil
}

// Broadcast delivers a frame to every connection joined to the room when the call is made.
func (r *Registry) Broadcast(room string, name event.Name, payload any) {
	r.BroadcastExcept(room, "", name, payload)
}

// BroadcastExcept is Broadcast without the excluded connection.
// Delivery happens outside the lock on a snapshot of the room.
func (r *Registry) BroadcastExcept(room, excludedID string, name event.Name, payload any) {
	for _, conn := range r.GetConnectionsForRoom(room) {
		if conn.ID() == excludedID {
			continue
		}
		r.send(conn, name, payload)
	}
}

// Unicast delivers a frame to a single connection, silently skipping unknown ids.
func (r *Registry) Unicast(connectionID string, name event.Name, payload any) {
	r.mu.RLock()
	conn, ok := r.sessions[connectionID]
	r.mu.RUnlock()
	if !ok {
		return
	}
	r.send(conn, name, payload)
}

// GetConnectionsForRoom resolves the room members into live connections.
// Returns nil if the room doesn't exist or has no members.
func (r *Registry) GetConnectionsForRoom(room string) []contract.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[room]
	if !ok {
		return nil
	}
	var active []contract.Connection
	for connectionID := range members {
		if conn, exists := r.sessions[connectionID]; exists {
			active = append(active, conn)
		}
	}
	return active
}

func (r *Registry) Stats() contract.RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return contract.RegistryStats{
		Connections: len(r.sessions),
		Rooms:       len(r.roomMembers),
	}
}

// removeMember must be called with the write lock held.
func (r *Registry) removeMember(room, connectionID string) {
	members, ok := r.roomMembers[room]
	if !ok {
		return
	}
	delete(members, connectionID)
	if len(members) == 0 {
		delete(r.roomMembers, room)
	}
}

func (r *Registry) send(conn contract.Connection, name event.Name, payload any) {
	if err := conn.Send(event.Outbound{Event: name, Data: payload}); err != nil {
		r.log.Debug("Frame not delivered", "connection_id", conn.ID(), "event", name, "error", err)
	}
}
