package workers

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

const DefaultLowCapacityThreshold = 80

type NamedChannel struct {
	Name    string
	Channel any
}

type ChannelCapacity struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Length   int    `json:"length"`
}

// Usage is the filled share of the buffer, in percent.
func (c ChannelCapacity) Usage() int {
	if c.Capacity == 0 {
		return 0
	}
	return c.Length * 100 / c.Capacity
}

// ChannelCapacityWorker periodically samples the length and capacity of internal queues.
// Reading len(channel) and cap(channel) is non-blocking, so this won't interfere
// with other goroutines. A queue filled above threshold percent is logged as a warning.
type ChannelCapacityWorker struct {
	log            *slog.Logger
	channels       []NamedChannel
	threshold      int
	metricInterval time.Duration

	mu     sync.RWMutex
	latest []ChannelCapacity
}

func NewChannelCapacityWorker(log *slog.Logger, channels []NamedChannel,
	threshold int, metricInterval time.Duration) *ChannelCapacityWorker {
	if threshold <= 0 {
		threshold = DefaultLowCapacityThreshold
	}
	if metricInterval <= 0 {
		metricInterval = time.Second
	}
	return &ChannelCapacityWorker{
		log: log, channels: channels,
		threshold:      threshold,
		metricInterval: metricInterval,
	}
}

func (w *ChannelCapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping capacity sampling")
			return nil
		case <-ticker.C:
			w.Sample()
		}
	}
}

// Sample reads every channel once and keeps the result for Latest.
func (w *ChannelCapacityWorker) Sample() []ChannelCapacity {
	samples := make([]ChannelCapacity, 0, len(w.channels))
	for _, nc := range w.channels {
		v := reflect.ValueOf(nc.Channel)
		// Verify if this is a channel
		if v.Kind() != reflect.Chan {
			w.log.Error("Provided object is not a channel", "name", nc.Name)
			continue
		}
		sample := ChannelCapacity{Name: nc.Name, Capacity: v.Cap(), Length: v.Len()}
		if sample.Usage() >= w.threshold {
			w.log.Warn("Queue almost full", "name", sample.Name, "length", sample.Length, "capacity", sample.Capacity)
		}
		samples = append(samples, sample)
	}

	w.mu.Lock()
	w.latest = samples
	w.mu.Unlock()
	return samples
}

func (w *ChannelCapacityWorker) Latest() []ChannelCapacity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]ChannelCapacity(nil), w.latest...)
}
