// Package metrics provides Prometheus metrics for the orgchart service
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the orgchart service
type Metrics struct {
	// gRPC request metrics
	GrpcRequestsTotal    *prometheus.CounterVec
	GrpcRequestDuration  *prometheus.HistogramVec
	GrpcRequestsInFlight prometheus.Gauge

	// Store metrics
	StoreOperationsTotal   *prometheus.CounterVec
	StoreOperationDuration *prometheus.HistogramVec

	// Hierarchy metrics
	MutationsTotal       *prometheus.CounterVec
	DepartmentsTotal     prometheus.Gauge
	PriorityEntriesTotal prometheus.Gauge
	HierarchyDepth       prometheus.Gauge
	SearchQueriesTotal   prometheus.Counter

	// Server metrics
	ServerUptimeSeconds prometheus.Gauge
	ServerStartTime     time.Time

	registry *prometheus.Registry
}

// NewMetrics creates all metrics on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := newMetrics(reg)
	m.registry = reg
	return m
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		ServerStartTime: time.Now(),
	}

	m.GrpcRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgchart_grpc_requests_total",
			Help: "Total number of gRPC requests",
		},
		[]string{"method", "status"},
	)

	m.GrpcRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orgchart_grpc_request_duration_seconds",
			Help:    "Duration of gRPC requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	m.GrpcRequestsInFlight = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "orgchart_grpc_requests_in_flight",
			Help: "Number of gRPC requests currently being processed",
		},
	)

	m.StoreOperationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgchart_store_operations_total",
			Help: "Total number of state load/save operations",
		},
		[]string{"operation", "status"},
	)

	m.StoreOperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orgchart_store_operation_duration_seconds",
			Help:    "Duration of state load/save operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	m.MutationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgchart_mutations_total",
			Help: "Total number of hierarchy mutations by operation and outcome",
		},
		[]string{"op", "status"},
	)

	m.DepartmentsTotal = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "orgchart_departments_total",
			Help: "Number of departments in the hierarchy",
		},
	)

	m.PriorityEntriesTotal = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "orgchart_priority_entries_total",
			Help: "Number of entries in the priority index",
		},
	)

	m.HierarchyDepth = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "orgchart_hierarchy_depth",
			Help: "Number of levels in the hierarchy",
		},
	)

	m.SearchQueriesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "orgchart_search_queries_total",
			Help: "Total number of department searches",
		},
	)

	m.ServerUptimeSeconds = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "orgchart_server_uptime_seconds",
			Help: "Server uptime in seconds",
		},
	)

	return m
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RunUptime updates the uptime gauge every interval until stop is closed
func (m *Metrics) RunUptime(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.ServerUptimeSeconds.Set(time.Since(m.ServerStartTime).Seconds())
		case <-stop:
			return
		}
	}
}

// RecordGrpcRequest records a gRPC request with its status
func (m *Metrics) RecordGrpcRequest(method string, status string, duration time.Duration) {
	m.GrpcRequestsTotal.WithLabelValues(method, status).Inc()
	m.GrpcRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordStoreOperation records a state load or save
func (m *Metrics) RecordStoreOperation(operation string, status string, duration time.Duration) {
	m.StoreOperationsTotal.WithLabelValues(operation, status).Inc()
	m.StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordMutation records the outcome of an add, edit or delete
func (m *Metrics) RecordMutation(op string, status string) {
	m.MutationsTotal.WithLabelValues(op, status).Inc()
}

// UpdateHierarchyStats updates the size gauges
func (m *Metrics) UpdateHierarchyStats(departments, priorityEntries, depth int) {
	m.DepartmentsTotal.Set(float64(departments))
	m.PriorityEntriesTotal.Set(float64(priorityEntries))
	m.HierarchyDepth.Set(float64(depth))
}
