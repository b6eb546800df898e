package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRenderMetrics() {
	r.RenderDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "patchgraph_render_duration_seconds",
			Help:    "Duration of offline render passes in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	r.RenderedNodesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "patchgraph_rendered_nodes_total",
			Help: "Total number of nodes materialized by offline renders",
		},
	)

	r.AutomationEventsReplayedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "patchgraph_automation_events_replayed_total",
			Help: "Total number of automation events replayed onto native params",
		},
	)
}
