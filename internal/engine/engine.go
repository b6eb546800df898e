// Package engine defines the capabilities this module consumes from a native
// media engine: creating native nodes, wiring their ports, and scheduling
// parameter automation.
//
// # Why Engine Package Exists
//
// The connection store, the state machine and the graph renderer never touch
// a concrete engine. Real-time contexts mirror edges through these interfaces
// at connect time, and offline renders materialize the abstract graph through
// them. Keeping the boundary narrow lets the same core drive a real engine,
// the in-memory simengine used by the CLI, or a test double.
package engine

import "context"

// Options carries the construction options of one node, as decoded from a
// patch file or set programmatically. Values are plain Go values (float64,
// string, bool, []any, map[string]any).
type Options map[string]any

// Float returns the option as a float64, or def when it is absent or not a number.
func (o Options) Float(key string, def float64) float64 {
	switch v := o[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

// String returns the option as a string, or def when it is absent.
func (o Options) String(key, def string) string {
	if v, ok := o[key].(string); ok {
		return v
	}
	return def
}

// Engine creates native nodes. Implementations must be safe for concurrent use,
// since offline renders materialize sibling subgraphs in parallel.
type Engine interface {
	// CreateNode materializes one native node of the given kind.
	CreateNode(ctx context.Context, kind string, opts Options) (NativeNode, error)
	// Destination returns the engine's final sink node.
	Destination() NativeNode
}

// OfflineEngine is an engine that renders its whole graph in one pass.
type OfflineEngine interface {
	Engine
	// StartRendering runs the native render pass. It is called once the
	// abstract graph has been fully materialized and wired.
	StartRendering(ctx context.Context) (RenderResult, error)
}

// RenderResult summarizes a finished native render pass.
type RenderResult struct {
	Frames     int
	SampleRate float64
	Nodes      int
	Links      int
}

// NativeNode is one materialized processing unit.
type NativeNode interface {
	Connect(dst NativeNode, output, input int) error
	Disconnect(dst NativeNode, output, input int) error
	ConnectParam(dst NativeParam, output int) error
	DisconnectParam(dst NativeParam, output int) error
	// Param returns the native automatable input with the given name.
	Param(name string) (NativeParam, bool)
}

// ScheduledNode is a native node that originates signal between a start and
// a stop time, and reports when it has ended.
type ScheduledNode interface {
	NativeNode
	Start(when float64) error
	Stop(when float64) error
	// OnEnded registers a callback fired once the node has stopped producing output.
	// Callbacks must not run synchronously inside Start or Stop.
	OnEnded(fn func())
}

// NativeParam receives scheduling calls for one automatable input.
type NativeParam interface {
	SetValueAtTime(value, startTime float64) error
	LinearRampToValueAtTime(value, endTime float64) error
	ExponentialRampToValueAtTime(value, endTime float64) error
	SetTargetAtTime(target, startTime, timeConstant float64) error
	SetValueCurveAtTime(values []float64, startTime, duration float64) error
	CancelScheduledValues(cancelTime float64) error
}

// NodeRenderer is the per-node materialization capability. The graph renderer
// calls Materialize at most once per target engine for a given node.
type NodeRenderer interface {
	Materialize(ctx context.Context, target Engine) (NativeNode, error)
}

// NodeRendererFunc adapts a function to the NodeRenderer interface.
type NodeRendererFunc func(ctx context.Context, target Engine) (NativeNode, error)

// Materialize calls f(ctx, target).
func (f NodeRendererFunc) Materialize(ctx context.Context, target Engine) (NativeNode, error) {
	return f(ctx, target)
}
