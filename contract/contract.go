//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/domain/search"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is a permanent consumer of the fanout pipeline.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// RoomDirectory owns the list of rooms. The engine only reads from it.
type RoomDirectory interface {
	ListRooms(ctx context.Context) ([]domain.Room, error)
	CreateRoom(ctx context.Context, name string) (domain.Room, error)
	FindRoom(ctx context.Context, id string) (domain.Room, error)
}

// MessageStore persists messages. Create assigns the id and the timestamp.
// Histories are returned oldest first.
type MessageStore interface {
	Create(ctx context.Context, record domain.MessageRecord) (domain.Message, error)
	FindRoomHistory(ctx context.Context, roomID string, limit int) ([]domain.Message, error)
	FindPrivateHistory(ctx context.Context, key domain.ConversationKey, limit int) ([]domain.Message, error)
}

// Transport addresses one connection, a named group or everyone.
// Group membership mirrors what the membership tracker decides.
type Transport interface {
	SendTo(connID string, n event.Notification) error
	Broadcast(group string, n event.Notification, except ...string)
	BroadcastAll(n event.Notification)
	Join(group, connID string)
	Leave(group, connID string)
}

// Dispatcher hands domain events to the background pipeline without blocking.
type Dispatcher interface {
	Dispatch(e event.DomainEvent)
}

type ISearchIndex interface {
	Index(ctx context.Context, message domain.Message) error
	Search(ctx context.Context, query search.Query) ([]domain.Message, error)
}
