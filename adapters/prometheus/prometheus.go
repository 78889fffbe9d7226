// Package prometheus implements the resolver and runtime metrics interfaces
// with Prometheus collectors.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/super-flat/actorsdi/actors"
	"github.com/super-flat/actorsdi/di"
)

// resolverMetrics implements di.Metrics using Prometheus
type resolverMetrics struct {
	produced     *prometheus.CounterVec
	failed       *prometheus.CounterVec
	released     *prometheus.CounterVec
	liveBindings prometheus.Gauge
}

// NewResolverMetrics creates the resolver collectors and registers them with reg
func NewResolverMetrics(reg prometheus.Registerer) di.Metrics {
	m := &resolverMetrics{
		produced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "actorsdi_resolver_actors_produced_total",
			Help: "Total number of actors built through the container",
		}, []string{"kind"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "actorsdi_resolver_produce_failures_total",
			Help: "Total number of failed actor constructions",
		}, []string{"kind"}),
		released: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "actorsdi_resolver_scopes_released_total",
			Help: "Total number of actor scopes disposed",
		}, []string{"success"}),
		liveBindings: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "actorsdi_resolver_live_bindings",
			Help: "Number of live actors holding a container scope",
		}),
	}
	reg.MustRegister(m.produced, m.failed, m.released, m.liveBindings)
	return m
}

func (m *resolverMetrics) ActorProduced(kind string) {
	m.produced.WithLabelValues(kind).Inc()
}

func (m *resolverMetrics) ProduceFailed(kind string) {
	m.failed.WithLabelValues(kind).Inc()
}

func (m *resolverMetrics) ScopeReleased(success bool) {
	m.released.WithLabelValues(boolToStr(success)).Inc()
}

func (m *resolverMetrics) LiveBindings(count int) {
	m.liveBindings.Set(float64(count))
}

// runtimeMetrics implements actors.Metrics using Prometheus
type runtimeMetrics struct {
	liveActors prometheus.Gauge
	started    prometheus.Counter
	messages   *prometheus.CounterVec
}

// NewRuntimeMetrics creates the runtime collectors and registers them with reg
func NewRuntimeMetrics(reg prometheus.Registerer) actors.Metrics {
	m := &runtimeMetrics{
		liveActors: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "actorsdi_runtime_live_actors",
			Help: "Number of running actors",
		}),
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "actorsdi_runtime_actors_started_total",
			Help: "Total number of actors started",
		}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "actorsdi_runtime_messages_total",
			Help: "Total number of messages processed",
		}, []string{"success"}),
	}
	reg.MustRegister(m.liveActors, m.started, m.messages)
	return m
}

func (m *runtimeMetrics) ActorStarted() {
	m.started.Inc()
	m.liveActors.Inc()
}

func (m *runtimeMetrics) ActorStopped() {
	m.liveActors.Dec()
}

func (m *runtimeMetrics) MessageProcessed(success bool) {
	m.messages.WithLabelValues(boolToStr(success)).Inc()
}

func boolToStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
