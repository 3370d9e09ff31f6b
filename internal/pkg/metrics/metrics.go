// Package metrics exposes Prometheus counters for the order pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "orders"

// UnknownChannel is the channel label for dispatches to unregistered names.
const UnknownChannel = "unknown"

// Registry holds every collector of this package plus the Go and process
// collectors.
var Registry = prometheus.NewRegistry()

var (
	ordersProcessedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "processed_total",
			Help:      "Count of orders persisted and confirmed.",
		},
	)
	ordersFailedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failed_total",
			Help:      "Count of pipeline failures by stage.",
		},
		[]string{"stage"},
	)
	notificationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Count of notification dispatches by channel and result.",
		},
		[]string{"channel", "result"},
	)
	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
)

var registerMetrics sync.Once

// Register all metrics.
func Register() {
	registerMetrics.Do(func() {
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		Registry.MustRegister(ordersProcessedCounter)
		Registry.MustRegister(ordersFailedCounter)
		Registry.MustRegister(notificationsCounter)
		Registry.MustRegister(stageDuration)
	})
}

// Handler serves the metrics in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordOrderProcessed records an order that completed every stage.
func RecordOrderProcessed() {
	ordersProcessedCounter.Inc()
}

// RecordOrderFailed records a pipeline failure at stage.
func RecordOrderFailed(stage string) {
	ordersFailedCounter.WithLabelValues(stage).Inc()
}

// RecordNotification records a dispatch attempt on channel. channel must be
// a registered name or UnknownChannel.
func RecordNotification(channel string, ok bool) {
	notificationsCounter.WithLabelValues(channel, resultLabel(ok)).Inc()
}

// NotificationsCounter returns the dispatch counter for channel and result.
func NotificationsCounter(channel string, ok bool) prometheus.Counter {
	return notificationsCounter.WithLabelValues(channel, resultLabel(ok))
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func ObserveStage(stage string, seconds float64) {
	stageDuration.WithLabelValues(stage).Observe(seconds)
}
