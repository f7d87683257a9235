package repositories

import (
	"chat-hub/domain"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	roomMessagePrefix    = "msg:r:"
	privateMessagePrefix = "msg:p:"
	// Greater than any 19 digit timestamp, used to seek to the newest key of a prefix
	newestSeekSuffix = "9999999999999999999;"
)

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) *MessageRepository {
	return &MessageRepository{db: db, log: log}
}

// Create stamps the record with an id and a timestamp, then persists it.
// The key is "msg:{kind}:{hex target}:{timestamp padded}:{uuid}":
//  1. the hex encoding keeps one target's prefix from matching another target's keys
//  2. the 19 digit padding makes lexicographical order chronological
//  3. the uuid separates two messages stored within the same nanosecond
func (m *MessageRepository) Create(_ context.Context, record domain.MessageRecord) (domain.Message, error) {
	msg := domain.Message{
		ID:           uuid.New(),
		IsPrivate:    record.IsPrivate,
		Room:         record.Room,
		Participants: record.Participants,
		User:         record.User,
		Text:         record.Text,
		Lang:         record.Lang,
		Timestamp:    time.Now().UTC(),
	}

	prefix, err := messagePrefix(msg)
	if err != nil {
		return domain.Message{}, err
	}
	key := fmt.Sprintf("%s%019d:%s", prefix, msg.Timestamp.UnixNano(), msg.ID)

	bytes, err := json.Marshal(msg)
	if err != nil {
		return domain.Message{}, err
	}
	if err := m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	}); err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

func (m *MessageRepository) FindRoomHistory(_ context.Context, roomID string, limit int) ([]domain.Message, error) {
	return m.latest(roomPrefix(roomID), limit)
}

func (m *MessageRepository) FindPrivateHistory(_ context.Context, key domain.ConversationKey, limit int) ([]domain.Message, error) {
	return m.latest(privatePrefix(key), limit)
}

// latest scans the prefix backwards from its newest key, keeps at most limit
// messages and returns them oldest first. A non positive limit keeps everything.
func (m *MessageRepository) latest(prefix string, limit int) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		options.Prefix = []byte(prefix)
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek([]byte(prefix + newestSeekSuffix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			if limit > 0 && len(messages) == limit {
				m.log.Debug("History limit reached", "limit", limit)
				break
			}
			var msg domain.Message
			if err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &msg)
			}); err != nil {
				return err
			}
			messages = append(messages, msg)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Reverse(messages)
	return messages, nil
}

func messagePrefix(msg domain.Message) (string, error) {
	if !msg.IsPrivate {
		return roomPrefix(msg.Room), nil
	}
	if len(msg.Participants) != 2 {
		return "", fmt.Errorf("private message needs two participants, got %d", len(msg.Participants))
	}
	key, err := domain.DeriveConversationKey(msg.Participants[0], msg.Participants[1])
	if err != nil {
		return "", err
	}
	return privatePrefix(key), nil
}

func roomPrefix(roomID string) string {
	return roomMessagePrefix + hex.EncodeToString([]byte(roomID)) + ":"
}

func privatePrefix(key domain.ConversationKey) string {
	return privateMessagePrefix + hex.EncodeToString([]byte(key)) + ":"
}
