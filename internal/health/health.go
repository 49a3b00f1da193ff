package health

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Pinger is anything that can report reachability: the record store, the cache
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	store   Pinger
	cache   Pinger
	started time.Time
}

type HealthStatus struct {
	Status string          `json:"status"`
	Store  ComponentHealth `json:"store"`
	Cache  ComponentHealth `json:"cache"`
}

type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
}

// DetailedStatus adds host figures to the basic status
type DetailedStatus struct {
	HealthStatus
	Uptime        string  `json:"uptime"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsedMB  uint64  `json:"memory_used_mb"`
	MemoryTotalMB uint64  `json:"memory_total_mb"`
}

// NewHealthChecker takes the store and an optional cache (nil when Redis is off)
func NewHealthChecker(store, cache Pinger) *HealthChecker {
	return &HealthChecker{store: store, cache: cache, started: time.Now()}
}

// CheckBasic is unhealthy only when the store is down; a failing cache degrades
func (h *HealthChecker) CheckBasic(ctx context.Context) HealthStatus {
	storeHealth := check(ctx, h.store)
	cacheHealth := ComponentHealth{Status: "disabled"}
	if h.cache != nil {
		cacheHealth = check(ctx, h.cache)
	}

	status := "healthy"
	switch {
	case storeHealth.Status != "healthy":
		status = "unhealthy"
	case cacheHealth.Status == "unhealthy":
		status = "degraded"
	}

	return HealthStatus{
		Status: status,
		Store:  storeHealth,
		Cache:  cacheHealth,
	}
}

func (h *HealthChecker) CheckDetailed(ctx context.Context) DetailedStatus {
	d := DetailedStatus{
		HealthStatus: h.CheckBasic(ctx),
		Uptime:       time.Since(h.started).Round(time.Second).String(),
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		d.MemoryPercent = vm.UsedPercent
		d.MemoryUsedMB = vm.Used / 1024 / 1024
		d.MemoryTotalMB = vm.Total / 1024 / 1024
	}
	if pct, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pct) > 0 {
		d.CPUPercent = pct[0]
	}
	return d
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
