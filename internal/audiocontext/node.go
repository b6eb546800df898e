package audiocontext

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/patchgraph/internal/audiograph"
	"github.com/specialistvlad/patchgraph/internal/engine"
	"github.com/specialistvlad/patchgraph/internal/handle"
	"github.com/specialistvlad/patchgraph/internal/render"
)

// Origin re-exports the activity origins of nodes.
type Origin = audiograph.Origin

const (
	OriginDerived    = audiograph.OriginDerived
	OriginScheduled  = audiograph.OriginScheduled
	OriginPersistent = audiograph.OriginPersistent
)

// ParamSpec declares one automatable input.
type ParamSpec struct {
	Name    string
	Default float64
}

// NodeSpec describes a node to create.
type NodeSpec struct {
	Kind     string
	Inputs   int
	Outputs  int
	Origin   Origin
	TailTime time.Duration
	Params   []ParamSpec
	// Options are passed to the engine when the node is materialized.
	Options engine.Options
}

func (s NodeSpec) validate() error {
	if s.Kind == "" {
		return fmt.Errorf("%w: empty kind", ErrInvalidSpec)
	}
	if s.Inputs < 0 || s.Outputs < 0 {
		return fmt.Errorf("%w: %s has negative port count", ErrInvalidSpec, s.Kind)
	}
	if s.TailTime < 0 {
		return fmt.Errorf("%w: %s has negative tail time", ErrInvalidSpec, s.Kind)
	}
	seen := make(map[string]bool, len(s.Params))
	for _, p := range s.Params {
		if p.Name == "" || seen[p.Name] {
			return fmt.Errorf("%w: %s declares param %q twice or unnamed", ErrInvalidSpec, s.Kind, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// Node is the proxy of one processing unit.
type Node struct {
	ctx    *Context
	h      handle.Node
	kind   string
	params map[string]*Param
	order  []*Param
}

// CreateNode registers a node. Real-time contexts create the native node
// first, outside the context lock.
func (c *Context) CreateNode(ctx context.Context, spec NodeSpec) (*Node, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	var (
		native       engine.NativeNode
		nativeParams []engine.NativeParam
	)
	if !c.offline {
		var err error
		native, err = c.native.CreateNode(ctx, spec.Kind, spec.Options)
		if err != nil {
			return nil, nativeErr("create "+spec.Kind, err)
		}
		if _, ok := native.(engine.ScheduledNode); spec.Origin == OriginScheduled && !ok {
			return nil, fmt.Errorf("%w: native %s cannot be scheduled", ErrInvalidSpec, spec.Kind)
		}
		for _, p := range spec.Params {
			np, ok := native.Param(p.Name)
			if !ok {
				return nil, nativeErr("create "+spec.Kind, fmt.Errorf("%q: %w", p.Name, render.ErrParamMissing))
			}
			nativeParams = append(nativeParams, np)
		}
	}

	n := &Node{ctx: c, kind: spec.Kind, params: make(map[string]*Param, len(spec.Params))}
	err := c.mutate(func() error {
		if c.closed {
			return ErrContextClosed
		}
		init := audiograph.NodeInit{
			Kind:     spec.Kind,
			Inputs:   spec.Inputs,
			Outputs:  spec.Outputs,
			Origin:   spec.Origin,
			TailTime: spec.TailTime,
			Native:   native,
		}
		if c.offline {
			init.Renderer = &nodeRenderer{c: c, n: n, spec: spec}
		}
		n.h = c.store.AddNode(init)
		for i, p := range spec.Params {
			var np engine.NativeParam
			if !c.offline {
				np = nativeParams[i]
			}
			ph, err := c.store.AddParam(n.h, p.Name, p.Default, np)
			if err != nil {
				return err
			}
			param := &Param{node: n, h: ph, name: p.Name}
			n.params[p.Name] = param
			n.order = append(n.order, param)
		}
		if spec.Origin == OriginScheduled {
			c.schedules[n.h] = &schedule{}
		}
		c.nodes[n.h] = n
		if spec.Origin == OriginPersistent {
			c.changes = append(c.changes, StateChange{ContextID: c.id, Node: n.h, Kind: n.kind, Active: true})
		}
		c.logger.Debug("Created node.", "node", n.h, "kind", spec.Kind, "origin", spec.Origin)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if sn, ok := native.(engine.ScheduledNode); ok && spec.Origin == OriginScheduled {
		sn.OnEnded(func() {
			if err := n.NotifyEnded(); err != nil {
				c.logger.Warn("Ended notification failed.", "node", n.h, "error", err)
			}
		})
	}
	return n, nil
}

// Handle returns the node's store handle.
func (n *Node) Handle() handle.Node { return n.h }

// Kind returns the node kind.
func (n *Node) Kind() string { return n.kind }

// Context returns the owning context.
func (n *Node) Context() *Context { return n.ctx }

// Param returns the named param.
func (n *Node) Param(name string) (*Param, bool) {
	p, ok := n.params[name]
	return p, ok
}

// Params returns the node's params in declaration order.
func (n *Node) Params() []*Param {
	return append([]*Param(nil), n.order...)
}

// IsActive reports the node's current state. Released nodes are passive.
func (n *Node) IsActive() bool {
	n.ctx.mu.RLock()
	defer n.ctx.mu.RUnlock()
	rec, err := n.ctx.store.Node(n.h)
	return err == nil && rec.Active
}

// InCycle reports whether the node is part of a cycle.
func (n *Node) InCycle() bool {
	n.ctx.mu.RLock()
	defer n.ctx.mu.RUnlock()
	return n.ctx.cycles.InCycle(n.h)
}

// Native returns the native node of a real-time context, or nil.
func (n *Node) Native() engine.NativeNode {
	n.ctx.mu.RLock()
	defer n.ctx.mu.RUnlock()
	rec, err := n.ctx.store.Node(n.h)
	if err != nil {
		return nil
	}
	return rec.Native
}

func (n *Node) String() string {
	return fmt.Sprintf("%s(%s)", n.kind, n.h)
}

// nodeRenderer materializes a node of an offline context and replays its
// recorded start and stop times. It runs under the read lock held by Render.
type nodeRenderer struct {
	c    *Context
	n    *Node
	spec NodeSpec
}

func (r *nodeRenderer) Materialize(ctx context.Context, target engine.Engine) (engine.NativeNode, error) {
	native, err := target.CreateNode(ctx, r.spec.Kind, r.spec.Options)
	if err != nil {
		return nil, err
	}
	sched := r.c.schedules[r.n.h]
	if sched == nil || sched.start == nil {
		return native, nil
	}
	sn, ok := native.(engine.ScheduledNode)
	if !ok {
		return nil, fmt.Errorf("native %s cannot be scheduled", r.spec.Kind)
	}
	if err := sn.Start(*sched.start); err != nil {
		return nil, err
	}
	if sched.stop != nil {
		if err := sn.Stop(*sched.stop); err != nil {
			return nil, err
		}
	}
	return native, nil
}
