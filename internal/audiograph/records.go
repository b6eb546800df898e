package audiograph

import (
	"time"

	"github.com/specialistvlad/patchgraph/internal/automation"
	"github.com/specialistvlad/patchgraph/internal/engine"
	"github.com/specialistvlad/patchgraph/internal/handle"
)

// Origin describes where a node's activity comes from.
type Origin int

const (
	// OriginDerived nodes are active iff at least one input edge is active.
	OriginDerived Origin = iota
	// OriginScheduled nodes originate signal between start and ended.
	OriginScheduled
	// OriginPersistent nodes have indeterminate internal state. They start
	// active and are never demoted automatically.
	OriginPersistent
)

func (o Origin) String() string {
	switch o {
	case OriginDerived:
		return "derived"
	case OriginScheduled:
		return "scheduled"
	case OriginPersistent:
		return "persistent"
	}
	return "unknown"
}

// ListenerID identifies one state listener registered on a source node.
type ListenerID uint64

// Edge is an outgoing edge as seen from its source. Exactly one of Dest and
// Param is set.
type Edge struct {
	Dest   handle.Node
	Param  handle.Param
	Output int
	Input  int
}

// ToParam reports whether the edge feeds a param.
func (e Edge) ToParam() bool { return !e.Param.IsZero() }

// ActiveInput is an edge in a destination's active set.
type ActiveInput struct {
	Source   handle.Node
	Output   int
	Listener ListenerID
}

// PassiveInput is an edge in a destination's passive set, keyed by source.
// Input is always 0 for param destinations.
type PassiveInput struct {
	Output   int
	Input    int
	Listener ListenerID
}

// Listener ties a state listener to the edge it was registered for. When the
// source changes state, the edge moves between the destination's sets.
type Listener struct {
	ID   ListenerID
	Edge Edge
}

// NodeInit describes a node being registered.
type NodeInit struct {
	Kind     string
	Inputs   int
	Outputs  int
	Origin   Origin
	TailTime time.Duration
	Renderer engine.NodeRenderer
	Native   engine.NativeNode
}

// NodeRecord is the connection record of one node.
type NodeRecord struct {
	Kind       string
	NumOutputs int
	Origin     Origin
	TailTime   time.Duration

	// ActiveInputs holds one set per input port; its length never changes.
	ActiveInputs  [][]ActiveInput
	PassiveInputs map[handle.Node][]PassiveInput
	Outputs       []Edge
	Listeners     []Listener
	Params        []handle.Param

	// Renderer is set for nodes of offline contexts.
	Renderer engine.NodeRenderer
	// Native is set for nodes of real-time contexts.
	Native engine.NativeNode

	Active bool
}

// NumInputs returns the fixed input port count.
func (r *NodeRecord) NumInputs() int { return len(r.ActiveInputs) }

// HasActiveInputs reports whether any input port holds an active edge.
func (r *NodeRecord) HasActiveInputs() bool {
	for _, port := range r.ActiveInputs {
		if len(port) > 0 {
			return true
		}
	}
	return false
}

// ParamRecord is the connection record of one param.
type ParamRecord struct {
	Owner   handle.Node
	Name    string
	Default float64

	ActiveInputs  []ActiveInput
	PassiveInputs map[handle.Node][]PassiveInput

	// Automation is set for params of offline contexts.
	Automation *automation.Log
	// Native is set for params of real-time contexts.
	Native engine.NativeParam
}
