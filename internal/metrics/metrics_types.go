package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics of the routing engine. A nil *Registry is
// valid and records nothing.
type Registry struct {
	// Connection metrics
	ConnectionsTotal *prometheus.CounterVec
	Edges            *prometheus.GaugeVec

	// State machine metrics
	ActiveNodes            prometheus.Gauge
	CycleNodes             prometheus.Gauge
	StateTransitionsTotal  *prometheus.CounterVec
	TailTimeDeferralsTotal prometheus.Counter

	// Render metrics
	RenderDuration                *prometheus.HistogramVec
	RenderedNodesTotal            prometheus.Counter
	AutomationEventsReplayedTotal prometheus.Counter

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with all metrics initialized.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}
	r.initGraphMetrics()
	r.initRenderMetrics()
	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
