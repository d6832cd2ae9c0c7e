package health

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Pinger is anything that can report whether its backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function such as cache.Ping to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthChecker struct {
	db        Pinger
	cache     Pinger
	diskPath  string
	startedAt time.Time
}

type HealthStatus struct {
	Status   string          `json:"status"`
	Database ComponentHealth `json:"database"`
	Cache    ComponentHealth `json:"cache"`
}

type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
}

// DetailedStatus adds host figures to the readiness result.
type DetailedStatus struct {
	HealthStatus
	UptimeSeconds int64     `json:"uptime_seconds"`
	Memory        *HostStat `json:"memory,omitempty"`
	Disk          *HostStat `json:"disk,omitempty"`
}

type HostStat struct {
	UsedPercent float64 `json:"used_percent"`
	UsedBytes   uint64  `json:"used_bytes"`
	TotalBytes  uint64  `json:"total_bytes"`
}

// NewHealthChecker takes the store and an optional cache pinger.
func NewHealthChecker(db Pinger, cache Pinger) *HealthChecker {
	return &HealthChecker{db: db, cache: cache, diskPath: "/", startedAt: time.Now()}
}

// CheckBasic is healthy when the database answers. A cache outage degrades
// the status but the service keeps billing without it.
func (h *HealthChecker) CheckBasic(ctx context.Context) HealthStatus {
	dbHealth := check(ctx, h.db)
	cacheHealth := ComponentHealth{Status: "disabled"}
	if h.cache != nil {
		cacheHealth = check(ctx, h.cache)
	}

	status := "healthy"
	switch {
	case dbHealth.Status != "healthy":
		status = "unhealthy"
	case cacheHealth.Status == "unhealthy":
		status = "degraded"
	}

	return HealthStatus{
		Status:   status,
		Database: dbHealth,
		Cache:    cacheHealth,
	}
}

func (h *HealthChecker) CheckDetailed(ctx context.Context) DetailedStatus {
	out := DetailedStatus{
		HealthStatus:  h.CheckBasic(ctx),
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		out.Memory = &HostStat{UsedPercent: vm.UsedPercent, UsedBytes: vm.Used, TotalBytes: vm.Total}
	}
	if du, err := disk.UsageWithContext(ctx, h.diskPath); err == nil {
		out.Disk = &HostStat{UsedPercent: du.UsedPercent, UsedBytes: du.Used, TotalBytes: du.Total}
	}
	return out
}

func check(ctx context.Context, p Pinger) ComponentHealth {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return ComponentHealth{
			Status:       "unhealthy",
			ResponseTime: responseTime,
			Error:        err.Error(),
		}
	}

	return ComponentHealth{
		Status:       "healthy",
		ResponseTime: responseTime,
	}
}
