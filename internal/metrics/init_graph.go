package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.ConnectionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "patchgraph_connections_total",
			Help: "Total number of connect and disconnect calls",
		},
		[]string{"op", "status"}, // connect/disconnect, ok/duplicate/error
	)

	r.Edges = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "patchgraph_edges",
			Help: "Current number of edges by state",
		},
		[]string{"state"}, // active, passive
	)

	r.ActiveNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "patchgraph_active_nodes",
			Help: "Current number of active nodes",
		},
	)

	r.CycleNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "patchgraph_cycle_nodes",
			Help: "Current number of nodes that are part of a cycle",
		},
	)

	r.StateTransitionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "patchgraph_state_transitions_total",
			Help: "Total number of node state transitions",
		},
		[]string{"state"}, // active, passive
	)

	r.TailTimeDeferralsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "patchgraph_tail_time_deferrals_total",
			Help: "Total number of deactivations deferred by a node's tail time",
		},
	)
}
