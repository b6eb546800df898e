// Package metrics exposes Prometheus metrics for connection management, the
// active/passive state machine and offline rendering.
package metrics

import (
	"time"
)

// RecordConnection records one connect or disconnect call.
func (r *Registry) RecordConnection(op, status string) {
	if r == nil {
		return
	}
	r.ConnectionsTotal.WithLabelValues(op, status).Inc()
}

// UpdateGraphMetrics sets the edge, active node and cycle node gauges.
func (r *Registry) UpdateGraphMetrics(activeEdges, passiveEdges, activeNodes, cycleNodes int) {
	if r == nil {
		return
	}
	r.Edges.WithLabelValues("active").Set(float64(activeEdges))
	r.Edges.WithLabelValues("passive").Set(float64(passiveEdges))
	r.ActiveNodes.Set(float64(activeNodes))
	r.CycleNodes.Set(float64(cycleNodes))
}

// RecordStateTransition records a node becoming active or passive.
func (r *Registry) RecordStateTransition(active bool) {
	if r == nil {
		return
	}
	state := "passive"
	if active {
		state = "active"
	}
	r.StateTransitionsTotal.WithLabelValues(state).Inc()
}

// RecordTailTimeDeferral records a deactivation postponed by a tail time.
func (r *Registry) RecordTailTimeDeferral() {
	if r == nil {
		return
	}
	r.TailTimeDeferralsTotal.Inc()
}

// RecordRender records one finished render pass.
func (r *Registry) RecordRender(status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.RenderDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordRenderedNode records one node materialization.
func (r *Registry) RecordRenderedNode() {
	if r == nil {
		return
	}
	r.RenderedNodesTotal.Inc()
}

// RecordAutomationReplay records replayed automation events.
func (r *Registry) RecordAutomationReplay(events int) {
	if r == nil {
		return
	}
	r.AutomationEventsReplayedTotal.Add(float64(events))
}
