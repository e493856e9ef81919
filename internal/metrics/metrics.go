// Package metrics exposes hitqueue counters, gauges and latency histograms in
// Prometheus format.
//
// Every Collector owns a private registry, so several schedulers (and tests)
// can coexist in one process. All methods are safe on a nil *Collector, which
// lets callers treat metrics as optional.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hitqueue"

// Collector records queue and delivery metrics.
type Collector struct {
	registry *prometheus.Registry

	enqueued        prometheus.Counter
	enqueueRejected prometheus.Counter
	delivered       prometheus.Counter
	failures        prometheus.Counter
	storeResets     prometheus.Counter
	queueDepth      prometheus.Gauge
	deliveryLatency prometheus.Histogram
}

// NewCollector creates a collector registered on its own registry, labelled
// with the queue name.
func NewCollector(queueName string) *Collector {
	labels := prometheus.Labels{"queue": queueName}
	c := &Collector{
		registry: prometheus.NewRegistry(),
		enqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "hits_enqueued_total",
			Help:        "Total number of hits durably accepted",
			ConstLabels: labels,
		}),
		enqueueRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "enqueue_rejected_total",
			Help:        "Total number of hits the store refused to persist",
			ConstLabels: labels,
		}),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "hits_delivered_total",
			Help:        "Total number of hits removed after successful processing",
			ConstLabels: labels,
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "hit_failures_total",
			Help:        "Total number of failed delivery attempts",
			ConstLabels: labels,
		}),
		storeResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "store_resets_total",
			Help:        "Total number of corruption resets that discarded the queue file",
			ConstLabels: labels,
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "queue_depth",
			Help:        "Current number of stored hits",
			ConstLabels: labels,
		}),
		deliveryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "delivery_seconds",
			Help:        "Time from handing a hit to the processor until its result",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}),
	}

	c.registry.MustRegister(
		c.enqueued,
		c.enqueueRejected,
		c.delivered,
		c.failures,
		c.storeResets,
		c.queueDepth,
		c.deliveryLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// RecordEnqueue counts an accepted (true) or rejected (false) enqueue.
func (c *Collector) RecordEnqueue(accepted bool) {
	if c == nil {
		return
	}
	if accepted {
		c.enqueued.Inc()
		return
	}
	c.enqueueRejected.Inc()
}

// RecordResult counts one processor outcome and observes its latency.
func (c *Collector) RecordResult(success bool, latency time.Duration) {
	if c == nil {
		return
	}
	c.deliveryLatency.Observe(latency.Seconds())
	if success {
		c.delivered.Inc()
		return
	}
	c.failures.Inc()
}

// RecordStoreReset counts a corruption reset.
func (c *Collector) RecordStoreReset() {
	if c == nil {
		return
	}
	c.storeResets.Inc()
}

// SetQueueDepth publishes the current stored record count.
func (c *Collector) SetQueueDepth(n int) {
	if c == nil {
		return
	}
	c.queueDepth.Set(float64(n))
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
