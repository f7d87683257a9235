package repositories

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/oklog/ulid/v2"
)

const roomKeyPrefix = "room:"

// RoomRepository is the room directory. The default room always exists.
type RoomRepository struct {
	db  *badger.DB
	log *slog.Logger
}

// NewRoomRepository seeds the default room when the store does not have it yet.
func NewRoomRepository(db *badger.DB, log *slog.Logger) (*RoomRepository, error) {
	r := &RoomRepository{db: db, log: log}
	_, err := r.FindRoom(context.Background(), domain.DefaultRoomID)
	switch {
	case err == nil:
		return r, nil
	case !errors.Is(err, errors.ErrUnknownRoom):
		return nil, err
	}
	if err := r.save(domain.DefaultRoom()); err != nil {
		return nil, err
	}
	log.Debug("Default room created", "room", domain.DefaultRoomID)
	return r, nil
}

// ListRooms returns the default room first, then the others by creation time.
func (r *RoomRepository) ListRooms(_ context.Context) ([]domain.Room, error) {
	var rooms []domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = []byte(roomKeyPrefix)
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var room domain.Room
			if err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &room)
			}); err != nil {
				return err
			}
			rooms = append(rooms, room)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rooms, func(i, j int) bool {
		if rooms[i].ID == domain.DefaultRoomID || rooms[j].ID == domain.DefaultRoomID {
			return rooms[i].ID == domain.DefaultRoomID
		}
		return rooms[i].ID < rooms[j].ID
	})
	return rooms, nil
}

// CreateRoom stores a new room under a fresh ULID, so ids sort by creation time.
func (r *RoomRepository) CreateRoom(_ context.Context, name string) (domain.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Room{}, errors.ErrEmptyRoomName
	}
	room := domain.Room{ID: ulid.Make().String(), Name: name}
	if err := r.save(room); err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

func (r *RoomRepository) FindRoom(_ context.Context, id string) (domain.Room, error) {
	var room domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(roomKeyPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &room)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Room{}, errors.ErrUnknownRoom
	}
	return room, err
}

func (r *RoomRepository) save(room domain.Room) error {
	bytes, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(roomKeyPrefix+room.ID), bytes)
	})
}
