package workers

import (
	"chat-hub/contract"
	"chat-hub/domain/event"
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const DefaultSinkTimeout = 5 * time.Second

// EventFanout hands domain events to every permanent sink.
//
// It is best effort: Dispatch never blocks the caller and drops the event when
// the buffer is full; a slow sink is cut off after sinkTimeout; there are no
// retries. Sinks therefore only carry side effects such as search indexing,
// never the delivery of messages itself.
type EventFanout struct {
	log         *slog.Logger
	events      chan event.DomainEvent
	sinks       []contract.EventSink
	sinkTimeout time.Duration
	dropped     atomic.Int64
}

func NewEventFanout(log *slog.Logger, bufferSize int, sinkTimeout time.Duration, sinks ...contract.EventSink) *EventFanout {
	if sinkTimeout <= 0 {
		sinkTimeout = DefaultSinkTimeout
	}
	return &EventFanout{
		log:         log,
		events:      make(chan event.DomainEvent, bufferSize),
		sinks:       sinks,
		sinkTimeout: sinkTimeout,
	}
}

// Dispatch queues e for the sinks.
func (w *EventFanout) Dispatch(e event.DomainEvent) {
	select {
	case w.events <- e:
	default:
		w.dropped.Add(1)
		w.log.Warn("Fanout buffer full, dropping event", "target", e.Target().String())
	}
}

// Queue exposes the buffer to the capacity sampler.
func (w *EventFanout) Queue() NamedChannel {
	return NamedChannel{Name: "fanout", Channel: w.events}
}

// Dropped counts events lost because the buffer was full.
func (w *EventFanout) Dropped() int64 {
	return w.dropped.Load()
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return nil
		case e := <-w.events:
			w.Fanout(ctx, e)
		}
	}
}

// Fanout gives e to each sink in turn, each one bounded by the sink timeout.
func (w *EventFanout) Fanout(ctx context.Context, e event.DomainEvent) {
	for _, sink := range w.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, e); err != nil {
			w.log.Warn("Sink failed", "sink", sinkName(sink), "error", err)
		}
		cancel()
	}
}

func sinkName(sink contract.EventSink) string {
	if named, ok := sink.(contract.Worker); ok {
		return contract.GetWorkerName(named)
	}
	return "sink"
}
