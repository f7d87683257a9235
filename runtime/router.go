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
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"
)

// DefaultMaxContentLength caps message text, in runes.
const DefaultMaxContentLength = 2000

// SendRequest is a message as received, before validation.
// Room is used for room sends, To for private ones.
type SendRequest struct {
	IsPrivate bool
	Room      string
	To        string
	Author    string
	Text      string
}

// Router validates, persists and delivers messages, in that order.
// Nothing is broadcast unless the store accepted the message.
type Router struct {
	log              *slog.Logger
	rooms            contract.RoomDirectory
	store            contract.MessageStore
	transport        contract.Transport
	dispatcher       contract.Dispatcher
	sanitizer        *moderation.Sanitizer
	maxContentLength int
	delivered        atomic.Int64
}

func NewRouter(log *slog.Logger, rooms contract.RoomDirectory, store contract.MessageStore,
	transport contract.Transport, dispatcher contract.Dispatcher,
	sanitizer *moderation.Sanitizer, maxContentLength int) *Router {
	if maxContentLength <= 0 {
		maxContentLength = DefaultMaxContentLength
	}
	return &Router{
		log:              log,
		rooms:            rooms,
		store:            store,
		transport:        transport,
		dispatcher:       dispatcher,
		sanitizer:        sanitizer,
		maxContentLength: maxContentLength,
	}
}

func (r *Router) Send(ctx context.Context, req SendRequest) (domain.Message, error) {
	record, err := r.toRecord(ctx, req)
	if err != nil {
		return domain.Message{}, err
	}

	msg, err := r.store.Create(ctx, record)
	if err != nil {
		r.log.Error("Message not stored", "author", req.Author, "private", req.IsPrivate, "error", err)
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}

	r.transport.Broadcast(msg.Target().Group(), event.MessageDelivered{Message: msg})
	r.delivered.Add(1)

	if r.dispatcher != nil {
		r.dispatcher.Dispatch(event.MessageStored{Message: msg, At: time.Now().UTC()})
	}
	return msg, nil
}

// Delivered counts messages stored and broadcast since start.
func (r *Router) Delivered() int64 {
	return r.delivered.Load()
}

func (r *Router) toRecord(ctx context.Context, req SendRequest) (domain.MessageRecord, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return domain.MessageRecord{}, errors.ErrEmptyText
	}
	if utf8.RuneCountInString(text) > r.maxContentLength {
		return domain.MessageRecord{}, errors.ErrContentTooLong
	}
	author := domain.NormalizeName(req.Author)
	if author == "" {
		return domain.MessageRecord{}, errors.ErrEmptyName
	}

	sanitized := r.sanitizer.Sanitize(text)
	record := domain.MessageRecord{
		IsPrivate: req.IsPrivate,
		User:      author,
		Text:      sanitized.Text,
		Lang:      sanitized.Lang,
	}

	if req.IsPrivate {
		participants, err := domain.Participants(author, req.To)
		if err != nil {
			return domain.MessageRecord{}, err
		}
		record.Participants = participants
		return record, nil
	}

	if _, err := r.rooms.FindRoom(ctx, req.Room); err != nil {
		if errors.Is(err, errors.ErrUnknownRoom) {
			return domain.MessageRecord{}, fmt.Errorf("room %q: %w", req.Room, errors.ErrUnknownRoom)
		}
		return domain.MessageRecord{}, fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
	record.Room = req.Room
	return record, nil
}
