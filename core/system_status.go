package core

import (
	"bufio"
	"context"
	"os"
	"strconv"
	"strings"
	"time"
)

// SystemStatus is the aggregate returned by GET /status.
type SystemStatus struct {
	Activities struct {
		Count        int `json:"count"`
		Participants int `json:"participants"`
	} `json:"activities"`
	RosterQueue *QueueMetrics `json:"roster_queue,omitempty"`
	Memory      struct {
		UsedBytes  uint64 `json:"used_bytes"`
		TotalBytes uint64 `json:"total_bytes"`
	} `json:"memory"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// CollectSystemStatus gathers registry counts, queue depth (when Redis is configured),
// host memory and uptime. Queue errors are ignored.
func CollectSystemStatus(ctx context.Context, registry *Registry, metrics *MetricsService, startedAt time.Time) SystemStatus {
	var st SystemStatus

	st.Activities.Count, st.Activities.Participants = registry.Counts()

	if metrics != nil {
		if qm, err := metrics.Queue(ctx); err == nil {
			st.RosterQueue = &qm
		}
	}

	used, total := readMemInfo()
	st.Memory.UsedBytes = used
	st.Memory.TotalBytes = total

	if !startedAt.IsZero() {
		st.UptimeSeconds = int64(time.Since(startedAt).Seconds())
	}
	return st
}

// readMemInfo returns used and total bytes using /proc/meminfo.
// If unavailable, returns zeros.
func readMemInfo() (used, total uint64) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, 0
	}
	defer f.Close()
	var memTotal, memAvailable uint64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "MemTotal:"):
			memTotal = parseKiBLine(line)
		case strings.HasPrefix(line, "MemAvailable:"):
			memAvailable = parseKiBLine(line)
		}
	}
	if memTotal == 0 {
		return 0, 0
	}
	if memAvailable <= memTotal {
		used = (memTotal - memAvailable) * 1024
	}
	return used, memTotal * 1024
}

func parseKiBLine(line string) uint64 {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0
	}
	v, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0
	}
	return v
}
