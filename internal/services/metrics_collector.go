package services

import (
	"context"
	"log"
	"sync"
	"time"

	"megacrm-backend/internal/metrics"

	"github.com/shirou/gopsutil/v3/mem"
)

// MetricsCollector periodically publishes the dashboard figures and host
// memory as Prometheus gauges, so alerting does not need to poll the API.
type MetricsCollector struct {
	dashboard       *DashboardService
	collectInterval time.Duration
	stopChan        chan struct{}
	wg              sync.WaitGroup
}

func NewMetricsCollector(dashboard *DashboardService, interval time.Duration) *MetricsCollector {
	if interval <= 0 {
		interval = time.Minute
	}
	return &MetricsCollector{
		dashboard:       dashboard,
		collectInterval: interval,
		stopChan:        make(chan struct{}),
	}
}

// Start collects once and then on every tick until Stop
func (c *MetricsCollector) Start() {
	log.Println("[MetricsCollector] Starting metrics collector...")

	c.Collect(context.Background())

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.collectInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.Collect(context.Background())
			case <-c.stopChan:
				log.Println("[MetricsCollector] Stopping metrics collector...")
				return
			}
		}
	}()
}

func (c *MetricsCollector) Stop() {
	close(c.stopChan)
	c.wg.Wait()
}

// Collect refreshes every gauge once. Employees that disappeared since the
// last run are dropped from the vectors.
func (c *MetricsCollector) Collect(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	stats, err := c.dashboard.ByEmployee(ctx)
	if err != nil {
		log.Printf("[MetricsCollector] employee stats: %v", err)
	} else {
		metrics.EmployeeClients.Reset()
		metrics.EmployeeEnrolled.Reset()
		metrics.EmployeeAlerts.Reset()
		for _, s := range stats {
			metrics.EmployeeClients.WithLabelValues(s.Key).Set(float64(s.Clients))
			metrics.EmployeeEnrolled.WithLabelValues(s.Key).Set(float64(s.Enrolled))
			metrics.EmployeeAlerts.WithLabelValues(s.Key).Set(float64(s.Alerts))
		}
	}

	if d, err := c.dashboard.Dashboard(ctx); err == nil {
		metrics.EnrollmentRate.Set(d.Rate)
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		metrics.HostMemoryPercent.Set(vm.UsedPercent)
	}
}
