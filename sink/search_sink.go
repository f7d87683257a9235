package sink

import (
	"chat-hub/contract"
	"chat-hub/domain/event"
	"context"
	"log/slog"
)

// SearchSink feeds room messages to the search index. Private messages are never indexed.
type SearchSink struct {
	index contract.ISearchIndex
	log   *slog.Logger
}

func NewSearchSink(index contract.ISearchIndex, log *slog.Logger) SearchSink {
	return SearchSink{index: index, log: log}
}

func (s SearchSink) Consume(ctx context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MessageStored:
		if evt.Message.IsPrivate {
			return nil
		}
		return s.index.Index(ctx, evt.Message)
	default:
		s.log.Debug("Event ignored by search sink", "target", e.Target().String())
		return nil
	}
}
