//go:generate go run go.uber.org/mock/mockgen -source=registry.go -destination=../mocks/mock_registry.go -package=mocks
package contract

import (
	"chat-relay/domain/event"
)

// Connection is one live duplex session.
// Send must never block: a slow client loses frames, it does not stall the sender.
type Connection interface {
	ID() string
	Send(frame event.Outbound) error
	Close()
}

// Broadcaster is the only part of the registry the orchestrator needs.
type Broadcaster interface {
	Broadcast(room string, name event.Name, payload any)
}

type IRegistry interface {
	Broadcaster
	Register(conn Connection)
	Unregister(connectionID string)
	Join(connectionID, room string) error
	Leave(connectionID, room string) error
	BroadcastExcept(room, excludedID string, name event.Name, payload any)
	Unicast(connectionID string, name event.Name, payload any)
	Stats() RegistryStats
}

type RegistryStats struct {
	Connections int `json:"connections"`
	Rooms       int `json:"rooms"`
}
