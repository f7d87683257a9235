// Package domain contains core concepts of the chat system.
// This file defines Message records and related rules.
// Messages are immutable once the store has assigned them an id.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// MessageRecord is what the router hands to the store.
// Room is set for room messages, Participants for private ones, never both.
type MessageRecord struct {
	IsPrivate    bool
	Room         string
	Participants []string
	User         string
	Text         string
	Lang         string
}

// Message is a persisted record, stamped by the store.
type Message struct {
	ID           uuid.UUID `json:"id"`
	IsPrivate    bool      `json:"isPrivate"`
	Room         string    `json:"room,omitempty"`
	Participants []string  `json:"participants,omitempty"`
	User         string    `json:"user"`
	Text         string    `json:"text"`
	Lang         string    `json:"lang,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Target resolves the room or conversation the message belongs to.
func (m Message) Target() Target {
	if !m.IsPrivate {
		return RoomTarget(m.Room)
	}
	if len(m.Participants) != 2 {
		return Target{}
	}
	key, err := DeriveConversationKey(m.Participants[0], m.Participants[1])
	if err != nil {
		return Target{}
	}
	return PrivateTarget(key)
}
