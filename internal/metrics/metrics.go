// Package metrics exposes Prometheus instrumentation for the stores and the bus.
// All methods are safe to call on a nil *Metrics.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/teamtime/internal/bus"
)

// Metrics groups the collectors registered by New.
type Metrics struct {
	mutations     *prometheus.CounterVec
	storageErrors *prometheus.CounterVec
	messages      *prometheus.CounterVec
	events        prometheus.Gauge
	groups        prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "teamtime",
			Name:      "store_mutations_total",
			Help:      "Store mutations by store and operation.",
		}, []string{"store", "op"}),
		storageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "teamtime",
			Name:      "storage_errors_total",
			Help:      "Swallowed persistence failures by key and operation.",
		}, []string{"key", "op"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "teamtime",
			Name:      "bus_messages_total",
			Help:      "Messages delivered on the notification bus by kind.",
		}, []string{"kind"}),
		events: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "teamtime",
			Name:      "events",
			Help:      "Number of events held by the event store.",
		}),
		groups: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "teamtime",
			Name:      "groups",
			Help:      "Number of groups held by the group store.",
		}),
	}
	reg.MustRegister(m.mutations, m.storageErrors, m.messages, m.events, m.groups)
	return m
}

// Mutation counts a successful store mutation.
func (m *Metrics) Mutation(store, op string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(store, op).Inc()
}

// StorageError counts a persistence failure that was logged and swallowed.
func (m *Metrics) StorageError(key, op string) {
	if m == nil {
		return
	}
	m.storageErrors.WithLabelValues(key, op).Inc()
}

// SetEvents records the current event count.
func (m *Metrics) SetEvents(n int) {
	if m == nil {
		return
	}
	m.events.Set(float64(n))
}

// SetGroups records the current group count.
func (m *Metrics) SetGroups(n int) {
	if m == nil {
		return
	}
	m.groups.Set(float64(n))
}

// Observe subscribes to every message on b and counts it by kind.
// The returned function stops observing.
func (m *Metrics) Observe(b *bus.Bus) func() {
	if m == nil {
		return func() {}
	}
	return b.SubscribeAll(func(ctx context.Context, msg bus.Message) {
		m.messages.WithLabelValues(msg.Kind().String()).Inc()
	})
}
