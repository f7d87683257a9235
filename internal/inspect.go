package internal

import (
	"chat-hub/domain"
	"encoding/json"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// InspectRow is one badger entry flattened for display.
type InspectRow struct {
	Key       string
	Type      string
	Timestamp string
	Target    string
	Author    string
	Detail    string
}

type RowMapper func(key string, val []byte) InspectRow

// DefaultMapper picks the mapper matching the key namespace.
func DefaultMapper(key string, val []byte) InspectRow {
	switch {
	case strings.HasPrefix(key, "msg:"):
		return MessageMapper(key, val)
	case strings.HasPrefix(key, "room:"):
		return RoomMapper(key, val)
	}
	return RawMapper(key, val)
}

func RawMapper(key string, val []byte) InspectRow {
	return InspectRow{Key: key, Type: "RAW", Detail: truncate(string(val), 80)}
}

func MessageMapper(key string, val []byte) InspectRow {
	var msg domain.Message
	if err := json.Unmarshal(val, &msg); err != nil {
		return RawMapper(key, val)
	}
	row := InspectRow{
		Key:       key,
		Type:      "ROOM",
		Timestamp: msg.Timestamp.Format(time.DateTime),
		Target:    msg.Room,
		Author:    msg.User,
		Detail:    truncate(msg.Text, 60),
	}
	if msg.IsPrivate {
		row.Type = "PRIVATE"
		row.Target = strings.Join(msg.Participants, " <-> ")
	}
	return row
}

func RoomMapper(key string, val []byte) InspectRow {
	var room domain.Room
	if err := json.Unmarshal(val, &room); err != nil {
		return RawMapper(key, val)
	}
	return InspectRow{Key: key, Type: "ROOM_DEF", Target: room.ID, Detail: room.Name}
}

// Scan maps at most limit entries under prefix, in key order. A limit <= 0 means no limit.
func Scan(db *badger.DB, prefix string, limit int, mapper RowMapper) ([]InspectRow, error) {
	if mapper == nil {
		mapper = DefaultMapper
	}
	var rows []InspectRow
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			if limit > 0 && len(rows) >= limit {
				return nil
			}
			item := it.Item()
			key := string(item.KeyCopy(nil))
			if err := item.Value(func(v []byte) error {
				rows = append(rows, mapper(key, v))
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	return rows, err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
