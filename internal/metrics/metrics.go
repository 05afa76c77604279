// ============================================================================
// gopool Metrics - Prometheus Monitoring
// ============================================================================
//
// Package: internal/metrics
// File: metrics.go
// Purpose: Collect and expose pool saturation metrics for Prometheus
//
// Monitoring Philosophy:
//   Based on RED (Rate, Errors, Duration) and USE (Utilization, Saturation,
//   Errors). The Collector wires into a gopool.Pool through its Hooks, not
//   through any data this package owns itself.
//
// Metric Categories:
//
//   1. Submission Counters - Cumulative, monotonically increasing:
//      - gopool_tasks_submitted_total: Total tasks accepted by Submit
//      - gopool_tasks_rejected_total: Total tasks rejected (queue stayed full)
//      - gopool_workers_spawned_total: Total workers started (Start + growth)
//      - gopool_workers_evicted_total: Total workers self-terminated when idle
//
//   2. Performance Metrics (Histogram):
//      - gopool_task_duration_seconds: Task execution wall time
//        * Buckets: Prometheus defaults (5ms .. 10s)
//
//   3. Status Metrics (Gauge) - Instantaneous values, refreshed from Stats:
//      - gopool_queue_depth: Tasks currently waiting for a worker
//      - gopool_workers_current: Workers currently registered
//      - gopool_workers_idle: Workers currently idle
//
// Prometheus Query Examples:
//
//   # Submission rate
//   rate(gopool_tasks_submitted_total[1m])
//
//   # Rejection ratio
//   rate(gopool_tasks_rejected_total[5m]) /
//     (rate(gopool_tasks_submitted_total[5m]) + rate(gopool_tasks_rejected_total[5m]))
//
//   # 95th percentile task latency
//   histogram_quantile(0.95, gopool_task_duration_seconds_bucket)
//
//   # Queue backlog
//   gopool_queue_depth
//
// HTTP Endpoint:
//   Exposed via /metrics, scraped by Prometheus. Default port: 9090.
//
// ============================================================================

package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ChuLiYu/gopool/pkg/gopool"
)

// Collector collects Prometheus metrics describing a Pool's behaviour. It
// does not read Pool state directly — StatSource is polled periodically by
// WatchStats, and the counters are fed via the Hooks returned by Hooks().
type Collector struct {
	tasksSubmitted prometheus.Counter
	tasksRejected  prometheus.Counter
	workersSpawned prometheus.Counter
	workersEvicted prometheus.Counter
	taskDuration   prometheus.Histogram
	queueDepth     prometheus.Gauge
	workersCurrent prometheus.Gauge
	workersIdle    prometheus.Gauge
}

// NewCollector creates and registers a new metrics collector.
func NewCollector() *Collector {
	c := &Collector{
		tasksSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gopool_tasks_submitted_total",
			Help: "Total number of tasks accepted by Submit",
		}),
		tasksRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gopool_tasks_rejected_total",
			Help: "Total number of tasks rejected because the queue stayed full",
		}),
		workersSpawned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gopool_workers_spawned_total",
			Help: "Total number of worker goroutines started",
		}),
		workersEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gopool_workers_evicted_total",
			Help: "Total number of worker goroutines self-terminated after an idle timeout",
		}),
		taskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gopool_task_duration_seconds",
			Help:    "Task execution duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gopool_queue_depth",
			Help: "Current number of tasks waiting for a worker",
		}),
		workersCurrent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gopool_workers_current",
			Help: "Current number of registered workers",
		}),
		workersIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gopool_workers_idle",
			Help: "Current number of idle workers",
		}),
	}

	prometheus.MustRegister(
		c.tasksSubmitted,
		c.tasksRejected,
		c.workersSpawned,
		c.workersEvicted,
		c.taskDuration,
		c.queueDepth,
		c.workersCurrent,
		c.workersIdle,
	)

	return c
}

// Hooks returns the gopool.Hooks that feed this collector's counters and
// histogram. Pass the result to gopool.WithHooks when constructing a Pool.
func (c *Collector) Hooks() gopool.Hooks {
	return gopool.Hooks{
		OnSubmit:      c.tasksSubmitted.Inc,
		OnReject:      c.tasksRejected.Inc,
		OnWorkerSpawn: c.workersSpawned.Inc,
		OnWorkerEvict: c.workersEvicted.Inc,
		OnTaskDone: func(d time.Duration, _ error) {
			c.taskDuration.Observe(d.Seconds())
		},
	}
}

// StatSource is satisfied by *gopool.Pool; accepting the interface rather
// than the concrete type keeps this package testable without a live Pool.
type StatSource interface {
	Stats() gopool.Stats
}

// WatchStats polls src every interval and refreshes the gauge metrics until
// ctx is cancelled. Counters are updated via the Hooks returned above;
// gauges reflect point-in-time Pool state, so they need a poller instead.
func (c *Collector) WatchStats(ctx context.Context, src StatSource, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := src.Stats()
			c.queueDepth.Set(float64(s.QueueDepth))
			c.workersCurrent.Set(float64(s.CurrentWorkers))
			c.workersIdle.Set(float64(s.IdleWorkers))
		}
	}
}

// StartServer starts the Prometheus metrics HTTP server on the given port.
func StartServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	return http.ListenAndServe(addr, mux)
}
