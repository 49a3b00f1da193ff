// Package metrics declares the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "megacrm_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "megacrm_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	ClientsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "megacrm_clients_created_total",
		Help: "Client records added",
	})

	ClientsReassigned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "megacrm_clients_reassigned_total",
		Help: "Client records moved between employees",
	})

	LedgerAppends = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "megacrm_ledger_appends_total",
		Help: "Rows appended to payment and finance ledgers",
	}, []string{"kind"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "megacrm_cache_lookups_total",
		Help: "Snapshot cache lookups by result",
	}, []string{"result"})

	StoreRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "megacrm_store_retries_total",
		Help: "Record store operations retried after a transient error",
	}, []string{"op"})

	RealtimeClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "megacrm_realtime_clients",
		Help: "Connected websocket clients",
	})
)

// Gauges refreshed by the stats collector
var (
	EmployeeClients = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "megacrm_employee_clients",
		Help: "Clients per employee table",
	}, []string{"employee"})

	EmployeeEnrolled = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "megacrm_employee_enrolled",
		Help: "Enrolled clients per employee table",
	}, []string{"employee"})

	EmployeeAlerts = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "megacrm_employee_alerts",
		Help: "Clients with an active alert per employee table",
	}, []string{"employee"})

	EnrollmentRate = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "megacrm_enrollment_rate_percent",
		Help: "Enrolled clients over all clients",
	})

	HostMemoryPercent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "megacrm_host_memory_used_percent",
		Help: "Host memory in use",
	})
)
