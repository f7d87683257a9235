// Package observability samples the health of the running process for /api/stats.
package observability

import (
	"context"
	"log/slog"
	"os"
	goruntime "runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/process"
)

const DefaultSampleInterval = 5 * time.Second

type ProcessStats struct {
	PID        int32     `json:"pid"`
	RSSMb      uint64    `json:"rss_mb"`
	CPUPercent float64   `json:"cpu_percent"`
	AllocMemMb uint64    `json:"alloc_mem_mb"`
	NumGC      uint32    `json:"num_gc"`
	Goroutines int       `json:"goroutines"`
	SampledAt  time.Time `json:"sampled_at"`
}

// ProcessMonitor is a worker refreshing the stats of the current process on a ticker.
type ProcessMonitor struct {
	mu       sync.RWMutex
	log      *slog.Logger
	interval time.Duration
	latest   ProcessStats
}

func NewProcessMonitor(log *slog.Logger, interval time.Duration) *ProcessMonitor {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	return &ProcessMonitor{log: log, interval: interval}
}

func (m *ProcessMonitor) Run(ctx context.Context) error {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}
	m.sample(proc)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.log.Debug("Context done, stopping process monitor")
			return nil
		case <-ticker.C:
			m.sample(proc)
		}
	}
}

// Latest is the last sample, zero until the first one is taken.
func (m *ProcessMonitor) Latest() ProcessStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}

func (m *ProcessMonitor) sample(proc *process.Process) {
	stats := ProcessStats{PID: proc.Pid, Goroutines: goruntime.NumGoroutine(), SampledAt: time.Now().UTC()}

	if memory, err := proc.MemoryInfo(); err != nil {
		m.log.Debug("Error while reading process memory", "error", err)
	} else {
		stats.RSSMb = memory.RSS / 1024 / 1024
	}
	if cpu, err := proc.CPUPercent(); err != nil {
		m.log.Debug("Error while reading process cpu usage", "error", err)
	} else {
		stats.CPUPercent = cpu
	}

	var mem goruntime.MemStats
	goruntime.ReadMemStats(&mem)
	stats.AllocMemMb = mem.Alloc / 1024 / 1024
	stats.NumGC = mem.NumGC

	m.mu.Lock()
	m.latest = stats
	m.mu.Unlock()
}
