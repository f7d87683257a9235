package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestChannelCapacityWorker_Sample(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given a queue three quarters full and something that is not a channel
	queue := make(chan int, 4)
	queue <- 1
	queue <- 2
	queue <- 3
	worker := NewChannelCapacityWorker(log, []NamedChannel{
		{Name: "queue", Channel: queue},
		{Name: "bogus", Channel: 42},
	}, 50, time.Hour)

	// When sampling
	samples := worker.Sample()

	// Then only the channel is reported
	req.Equal([]ChannelCapacity{{Name: "queue", Capacity: 4, Length: 3}}, samples)
	req.Equal(75, samples[0].Usage())
	req.Equal(samples, worker.Latest())
}

func TestChannelCapacityWorker_RunSamplesOnTicker(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fanout := NewEventFanout(log, 8, time.Second)
	worker := NewChannelCapacityWorker(log, []NamedChannel{fanout.Queue()}, 0, 10*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	req.Eventually(func() bool { return len(worker.Latest()) == 1 }, time.Second, 5*time.Millisecond)
	req.Equal(8, worker.Latest()[0].Capacity)

	cancel()
	req.NoError(<-done)
}

func TestChannelCapacity_UsageOfUnbuffered(t *testing.T) {
	require.New(t).Zero(ChannelCapacity{Name: "sync"}.Usage())
}
