package host

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector records the actions processed by a group.
type Collector struct {
	registry *prometheus.Registry

	actionsTotal   *prometheus.CounterVec
	actionsLatency *prometheus.HistogramVec
	pending        prometheus.Gauge
}

func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "unique"
	}
	c := &Collector{registry: prometheus.NewRegistry()}

	c.actionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "actions",
			Name:      "total",
			Help:      "Total number of processed actions by operation and result code",
		},
		[]string{"operation", "result"},
	)
	c.actionsLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "actions",
			Name:      "latency_seconds",
			Help:      "Time between action submit and completion",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
	c.pending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "actions",
			Name:      "pending",
			Help:      "Number of actions waiting in the last drained batch",
		},
	)
	c.registry.MustRegister(c.actionsTotal, c.actionsLatency, c.pending)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) RecordAction(act *Action) {
	result := act.ErrorCode
	if result == "" {
		result = "OK"
	}
	c.actionsTotal.WithLabelValues(act.Operation, result).Inc()
	c.actionsLatency.WithLabelValues(act.Operation).Observe(act.UpdatedAt.Sub(act.CreatedAt).Seconds())
}

func (c *Collector) RecordPending(n int) {
	c.pending.Set(float64(n))
}

// Register adds extra collectors, such as registry gauges, to the registry.
func (c *Collector) Register(cs ...prometheus.Collector) {
	c.registry.MustRegister(cs...)
}
