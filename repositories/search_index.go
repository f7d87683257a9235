package repositories

import (
	"chat-hub/domain"
	"chat-hub/domain/search"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/blugelabs/bluge"
)

const (
	textField    = "text"
	roomField    = "room"
	userField    = "user"
	sourceField  = "source"
	createdField = "timestamp"
)

// SearchIndex keeps a full-text index of room messages in bluge.
// The whole message is kept as a stored field so results never go back to badger.
type SearchIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewSearchIndex(writer *bluge.Writer, log *slog.Logger) *SearchIndex {
	return &SearchIndex{writer: writer, log: log}
}

// Index adds or replaces the document of msg.
func (i *SearchIndex) Index(_ context.Context, msg domain.Message) error {
	source, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	doc := bluge.NewDocument(msg.ID.String()).
		AddField(bluge.NewTextField(textField, msg.Text)).
		AddField(bluge.NewKeywordField(roomField, msg.Room)).
		AddField(bluge.NewKeywordField(userField, msg.User)).
		AddField(bluge.NewDateTimeField(createdField, msg.Timestamp)).
		AddField(bluge.NewStoredOnlyField(sourceField, source))
	if err := i.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("index message %s: %w", msg.ID, err)
	}
	return nil
}

// Search matches the terms against message text, best matches first.
func (i *SearchIndex) Search(ctx context.Context, query search.Query) ([]domain.Message, error) {
	query = query.Bounded()
	if query.Terms == "" {
		return []domain.Message{}, nil
	}

	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	q := bluge.NewBooleanQuery().AddMust(bluge.NewMatchQuery(query.Terms).SetField(textField))
	if query.RoomID != "" {
		q.AddMust(bluge.NewTermQuery(query.RoomID).SetField(roomField))
	}

	matches, err := reader.Search(ctx, bluge.NewTopNSearch(query.Limit, q))
	if err != nil {
		return nil, err
	}

	messages := []domain.Message{}
	match, err := matches.Next()
	for err == nil && match != nil {
		var msg domain.Message
		var decodeErr error
		if err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == sourceField {
				decodeErr = json.Unmarshal(value, &msg)
				return false
			}
			return true
		}); err != nil {
			break
		}
		if decodeErr != nil {
			i.log.Warn("Skipping undecodable search hit", "error", decodeErr)
		} else {
			messages = append(messages, msg)
		}
		match, err = matches.Next()
	}
	if err != nil {
		return nil, err
	}
	return messages, nil
}
