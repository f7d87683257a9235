// Package runtime holds the session and routing engine: who is connected,
// who is joined where, who is typing, and how messages reach members.
// It owns no I/O of its own and talks to the outside through contract interfaces.
package runtime

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"chat-hub/moderation"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
)

const (
	DefaultRoomHistoryLimit    = 500
	DefaultPrivateHistoryLimit = 1000
)

type HubConfig struct {
	RoomHistoryLimit    int
	PrivateHistoryLimit int
	TypingQuietPeriod   time.Duration
	MaxContentLength    int
}

// Stats is a point-in-time view of the engine.
type Stats struct {
	Connections int   `json:"connections"`
	Users       int   `json:"users"`
	Targets     int   `json:"targets"`
	Delivered   int64 `json:"delivered"`
}

// Hub drives every connection through Connected -> Registered -> Joined -> Disconnected.
// Each structure it owns has its own lock; no lock is held while the store works.
type Hub struct {
	log                 *slog.Logger
	presence            *Presence
	membership          *Membership
	typing              *Typing
	router              *Router
	rooms               contract.RoomDirectory
	store               contract.MessageStore
	transport           contract.Transport
	roomHistoryLimit    int
	privateHistoryLimit int
}

func NewHub(log *slog.Logger, rooms contract.RoomDirectory, store contract.MessageStore,
	transport contract.Transport, dispatcher contract.Dispatcher,
	sanitizer *moderation.Sanitizer, config HubConfig) *Hub {
	h := &Hub{
		log:                 log,
		presence:            NewPresence(),
		membership:          NewMembership(),
		rooms:               rooms,
		store:               store,
		transport:           transport,
		roomHistoryLimit:    lo.Ternary(config.RoomHistoryLimit > 0, config.RoomHistoryLimit, DefaultRoomHistoryLimit),
		privateHistoryLimit: lo.Ternary(config.PrivateHistoryLimit > 0, config.PrivateHistoryLimit, DefaultPrivateHistoryLimit),
	}
	h.typing = NewTyping(config.TypingQuietPeriod, h.notifyTyping)
	h.router = NewRouter(log, rooms, store, transport, dispatcher, sanitizer, config.MaxContentLength)
	return h
}

// Handle applies one decoded command for connID.
func (h *Hub) Handle(ctx context.Context, connID string, cmd domain.Command) error {
	if err := domain.Validate(cmd); err != nil {
		return err
	}
	switch c := cmd.(type) {
	case domain.RegisterCommand:
		return h.Register(connID, c.Name)
	case domain.JoinRoomCommand:
		return h.JoinRoom(ctx, connID, c.RoomID, c.Name)
	case domain.JoinPrivateCommand:
		return h.JoinPrivate(ctx, connID, c.Other)
	case domain.LeaveCommand:
		h.Leave(connID)
		return nil
	case domain.SendMessageCommand:
		_, err := h.Send(ctx, connID, SendRequest{IsPrivate: c.IsPrivate, Room: c.Room, To: c.To, Text: c.Text})
		return err
	case domain.TypingCommand:
		return h.Typing(connID, c.IsPrivate, c.Room, c.To)
	case domain.StopTypingCommand:
		return h.StopTyping(connID, c.IsPrivate, c.Room, c.To)
	default:
		return fmt.Errorf("%w: %s", errors.ErrUnknownEvent, cmd.Type())
	}
}

// Connect tracks a new anonymous connection. Nothing is broadcast.
func (h *Hub) Connect(connID string) {
	h.presence.Connect(connID)
	h.log.Debug("Connection opened", "conn_id", connID)
}

func (h *Hub) Register(connID, name string) error {
	name = domain.NormalizeName(name)
	if err := domain.ValidateDisplayName(name); err != nil {
		return err
	}
	h.presence.Register(connID, name)
	h.rename(connID, name)
	h.send(connID, event.Registered{Name: name})
	h.broadcastUsers()
	return nil
}

// JoinRoom joins roomID under name, or under the registered name when name is empty.
// A name carried by the join is registered only once the room is known to exist.
func (h *Hub) JoinRoom(ctx context.Context, connID, roomID, name string) error {
	registering := name != ""
	if registering {
		name = domain.NormalizeName(name)
		if err := domain.ValidateDisplayName(name); err != nil {
			return err
		}
	} else {
		registered, ok := h.presence.Name(connID)
		if !ok {
			return errors.ErrNotRegistered
		}
		name = registered
	}

	if _, err := h.rooms.FindRoom(ctx, roomID); err != nil {
		if errors.Is(err, errors.ErrUnknownRoom) {
			return fmt.Errorf("room %q: %w", roomID, errors.ErrUnknownRoom)
		}
		return fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
	if registering {
		h.presence.Register(connID, name)
		h.send(connID, event.Registered{Name: name})
	}

	return h.enter(connID, name, domain.RoomTarget(roomID), func() (event.Notification, error) {
		history, err := h.store.FindRoomHistory(ctx, roomID, h.roomHistoryLimit)
		if err != nil {
			return nil, fmt.Errorf("%w: room history: %v", errors.ErrPersistence, err)
		}
		return event.History{Room: roomID, Messages: nonNil(history)}, nil
	})
}

// JoinPrivate joins the conversation between the registered name and other.
func (h *Hub) JoinPrivate(ctx context.Context, connID, other string) error {
	name, ok := h.presence.Name(connID)
	if !ok {
		return errors.ErrNotRegistered
	}
	other = domain.NormalizeName(other)
	if err := domain.ValidateDisplayName(other); err != nil {
		return err
	}
	key, err := domain.DeriveConversationKey(name, other)
	if err != nil {
		return err
	}

	return h.enter(connID, name, domain.PrivateTarget(key), func() (event.Notification, error) {
		history, err := h.store.FindPrivateHistory(ctx, key, h.privateHistoryLimit)
		if err != nil {
			return nil, fmt.Errorf("%w: private history: %v", errors.ErrPersistence, err)
		}
		return event.PrivateHistory{With: other, Messages: nonNil(history)}, nil
	})
}

// Leave quits the current target without disconnecting.
func (h *Hub) Leave(connID string) {
	if departure, ok := h.membership.LeaveCurrent(connID); ok {
		h.vacate(connID, departure)
	}
}

func (h *Hub) Send(ctx context.Context, connID string, req SendRequest) (domain.Message, error) {
	name, ok := h.presence.Name(connID)
	if !ok {
		return domain.Message{}, errors.ErrNotRegistered
	}
	req.Author = name
	return h.router.Send(ctx, req)
}

func (h *Hub) Typing(connID string, isPrivate bool, room, to string) error {
	name, target, err := h.typingTarget(connID, isPrivate, room, to)
	if err != nil {
		return err
	}
	h.typing.Start(target, name, connID)
	return nil
}

func (h *Hub) StopTyping(connID string, isPrivate bool, room, to string) error {
	name, target, err := h.typingTarget(connID, isPrivate, room, to)
	if err != nil {
		return err
	}
	h.typing.Stop(target, name, connID)
	return nil
}

// Disconnect always runs the whole cleanup, whatever state the connection is in.
func (h *Hub) Disconnect(connID string) {
	departure, joined := h.membership.LeaveCurrent(connID)
	h.presence.Remove(connID)
	if joined {
		h.vacate(connID, departure)
	}
	h.broadcastUsers()
	h.log.Debug("Connection closed", "conn_id", connID)
}

// Users lists the distinct registered names.
func (h *Hub) Users() []string {
	return h.presence.Names()
}

func (h *Hub) Snapshot(target domain.Target) []string {
	return h.membership.Snapshot(target)
}

func (h *Hub) Stats() Stats {
	return Stats{
		Connections: h.presence.Connections(),
		Users:       len(h.presence.Names()),
		Targets:     h.membership.Targets(),
		Delivered:   h.router.Delivered(),
	}
}

// enter joins target, then sends the history to the joining connection only,
// then tells the members. The connection stays joined if the history cannot be read.
func (h *Hub) enter(connID, name string, target domain.Target, history func() (event.Notification, error)) error {
	result := h.membership.Join(target, connID, name)
	if result.Left != nil {
		h.vacate(connID, *result.Left)
	}
	h.transport.Join(target.Group(), connID)
	h.log.Debug("Joined", "conn_id", connID, "target", target.String())

	n, err := history()
	if err == nil {
		h.send(connID, n)
	}
	h.transport.Broadcast(target.Group(), event.NewRoomUsers(target, result.Members))
	h.broadcastUsers()
	return err
}

// vacate mirrors a departure on the transport and tells the members left behind.
func (h *Hub) vacate(connID string, departure Departure) {
	h.transport.Leave(departure.Target.Group(), connID)
	h.typing.Clear(departure.Target, departure.Name, connID)
	if len(departure.ConnIDs) > 0 {
		h.transport.Broadcast(departure.Target.Group(), event.NewRoomUsers(departure.Target, departure.Remaining))
	}
}

func (h *Hub) typingTarget(connID string, isPrivate bool, room, to string) (string, domain.Target, error) {
	name, ok := h.presence.Name(connID)
	if !ok {
		return "", domain.Target{}, errors.ErrNotRegistered
	}
	if !isPrivate {
		if room == "" {
			return "", domain.Target{}, errors.ErrUnknownRoom
		}
		return name, domain.RoomTarget(room), nil
	}
	key, err := domain.DeriveConversationKey(name, to)
	if err != nil {
		return "", domain.Target{}, err
	}
	return name, domain.PrivateTarget(key), nil
}

// notifyTyping runs under the typing lock. It only writes to the transport.
func (h *Hub) notifyTyping(target domain.Target, name string, active bool, typists []string) {
	h.transport.Broadcast(target.Group(), event.Typing{
		User:      name,
		Target:    target.ID,
		IsPrivate: target.IsPrivate(),
		Active:    active,
	}, typists...)
}

// rename keeps the joined target in step with a new registered name.
func (h *Hub) rename(connID, name string) {
	renamed, joined := h.membership.Rename(connID, name)
	if !joined || renamed.Previous == name {
		return
	}
	h.typing.Clear(renamed.Target, renamed.Previous, connID)
	h.transport.Broadcast(renamed.Target.Group(), event.NewRoomUsers(renamed.Target, renamed.Members))
}

func (h *Hub) broadcastUsers() {
	h.transport.BroadcastAll(event.NewGlobalUsers(h.presence.Names()))
}

func (h *Hub) send(connID string, n event.Notification) {
	if err := h.transport.SendTo(connID, n); err != nil {
		h.log.Warn("Notification not sent", "conn_id", connID, "event", n.EventName(), "error", err)
	}
}

func nonNil(messages []domain.Message) []domain.Message {
	if messages == nil {
		return []domain.Message{}
	}
	return messages
}
