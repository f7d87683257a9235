//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=mocks/mock_chat_service.go -package=mocks
package services

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/domain/search"
	"chat-hub/observability"
	"chat-hub/runtime"
	"chat-hub/runtime/workers"
	"context"
)

// IChatService is everything the HTTP API needs from the engine and its stores.
type IChatService interface {
	ListRooms(ctx context.Context) ([]domain.Room, error)
	CreateRoom(ctx context.Context, name string) (domain.Room, error)
	Users() []string
	Search(ctx context.Context, query search.Query) ([]domain.Message, error)
	Stats() Stats
}

type Stats struct {
	runtime.Stats
	DroppedEvents int64                      `json:"dropped_events"`
	Process       observability.ProcessStats `json:"process"`
	Queues        []workers.ChannelCapacity  `json:"queues"`
}

// DropCounter reports events the background pipeline had to drop.
type DropCounter interface {
	Dropped() int64
}

// QueueSampler reports the fill level of the internal queues.
type QueueSampler interface {
	Latest() []workers.ChannelCapacity
}

type ChatService struct {
	hub     *runtime.Hub
	rooms   contract.RoomDirectory
	index   contract.ISearchIndex
	monitor *observability.ProcessMonitor
	drops   DropCounter
	queues  QueueSampler
}

// NewChatService accepts nil monitor, drops and queues; their stats stay zero.
func NewChatService(hub *runtime.Hub, rooms contract.RoomDirectory, index contract.ISearchIndex,
	monitor *observability.ProcessMonitor, drops DropCounter, queues QueueSampler) *ChatService {
	return &ChatService{hub: hub, rooms: rooms, index: index, monitor: monitor, drops: drops, queues: queues}
}

func (s *ChatService) ListRooms(ctx context.Context) ([]domain.Room, error) {
	return s.rooms.ListRooms(ctx)
}

func (s *ChatService) CreateRoom(ctx context.Context, name string) (domain.Room, error) {
	return s.rooms.CreateRoom(ctx, name)
}

func (s *ChatService) Users() []string {
	return s.hub.Users()
}

func (s *ChatService) Search(ctx context.Context, query search.Query) ([]domain.Message, error) {
	return s.index.Search(ctx, query.Bounded())
}

func (s *ChatService) Stats() Stats {
	stats := Stats{Stats: s.hub.Stats()}
	if s.drops != nil {
		stats.DroppedEvents = s.drops.Dropped()
	}
	if s.monitor != nil {
		stats.Process = s.monitor.Latest()
	}
	if s.queues != nil {
		stats.Queues = s.queues.Latest()
	}
	return stats
}
