// Package event defines what the engine emits: client-facing notifications
// and the domain events consumed by the background pipeline.
package event

import (
	"chat-hub/domain"
	"time"
)

// DomainEvent flows through the fanout pipeline to permanent sinks.
type DomainEvent interface {
	Target() domain.Target
}

// MessageStored is emitted once a message has been persisted and delivered.
type MessageStored struct {
	Message domain.Message
	At      time.Time
}

func (m MessageStored) Target() domain.Target {
	return m.Message.Target()
}
