package simengine

import (
	"fmt"

	"github.com/specialistvlad/patchgraph/internal/engine"
)

// Node is a native node living in an Engine. It implements engine.ScheduledNode
// regardless of kind; only scheduled kinds are ever started.
type Node struct {
	eng    *Engine
	kind   string
	label  string
	opts   engine.Options
	strict bool
	params map[string]*Param

	start *float64
	stop  *float64
	ended []func()
	done  bool
}

// Label returns the node's transcript label, e.g. `gain#3`.
func (n *Node) Label() string { return n.label }

// Kind returns the kind the node was created with.
func (n *Node) Kind() string { return n.kind }

// Options returns the options the node was created with.
func (n *Node) Options() engine.Options { return n.opts }

// Schedule returns the start and stop times issued to the node, if any.
func (n *Node) Schedule() (start, stop *float64) {
	n.eng.mu.Lock()
	defer n.eng.mu.Unlock()
	return n.start, n.stop
}

// Connect implements engine.NativeNode.
func (n *Node) Connect(dst engine.NativeNode, output, input int) error {
	d, err := n.peer(dst)
	if err != nil {
		return err
	}
	n.eng.mu.Lock()
	defer n.eng.mu.Unlock()
	l := Link{From: n.label, To: d.label, Output: output, Input: input}
	n.eng.links[l] = struct{}{}
	n.eng.record("connect %s", l)
	return nil
}

// Disconnect implements engine.NativeNode.
func (n *Node) Disconnect(dst engine.NativeNode, output, input int) error {
	d, err := n.peer(dst)
	if err != nil {
		return err
	}
	n.eng.mu.Lock()
	defer n.eng.mu.Unlock()
	l := Link{From: n.label, To: d.label, Output: output, Input: input}
	if _, ok := n.eng.links[l]; !ok {
		return fmt.Errorf("disconnect %s: %w", l, ErrNotConnected)
	}
	delete(n.eng.links, l)
	n.eng.record("disconnect %s", l)
	return nil
}

// ConnectParam implements engine.NativeNode.
func (n *Node) ConnectParam(dst engine.NativeParam, output int) error {
	p, err := n.peerParam(dst)
	if err != nil {
		return err
	}
	n.eng.mu.Lock()
	defer n.eng.mu.Unlock()
	l := Link{From: n.label, To: p.node.label, Param: p.name, Output: output}
	n.eng.links[l] = struct{}{}
	n.eng.record("connect %s", l)
	return nil
}

// DisconnectParam implements engine.NativeNode.
func (n *Node) DisconnectParam(dst engine.NativeParam, output int) error {
	p, err := n.peerParam(dst)
	if err != nil {
		return err
	}
	n.eng.mu.Lock()
	defer n.eng.mu.Unlock()
	l := Link{From: n.label, To: p.node.label, Param: p.name, Output: output}
	if _, ok := n.eng.links[l]; !ok {
		return fmt.Errorf("disconnect %s: %w", l, ErrNotConnected)
	}
	delete(n.eng.links, l)
	n.eng.record("disconnect %s", l)
	return nil
}

// Param implements engine.NativeNode.
func (n *Node) Param(name string) (engine.NativeParam, bool) {
	n.eng.mu.Lock()
	defer n.eng.mu.Unlock()
	if p, ok := n.params[name]; ok {
		return p, true
	}
	if n.strict {
		return nil, false
	}
	p := &Param{node: n, name: name}
	n.params[name] = p
	return p, true
}

// Start implements engine.ScheduledNode.
func (n *Node) Start(when float64) error {
	n.eng.mu.Lock()
	defer n.eng.mu.Unlock()
	if n.start != nil {
		return fmt.Errorf("%s already started", n.label)
	}
	n.start = &when
	n.eng.record("start %s at %g", n.label, when)
	return nil
}

// Stop implements engine.ScheduledNode.
func (n *Node) Stop(when float64) error {
	n.eng.mu.Lock()
	defer n.eng.mu.Unlock()
	if n.start == nil {
		return fmt.Errorf("%s stopped before start", n.label)
	}
	n.stop = &when
	n.eng.record("stop %s at %g", n.label, when)
	return nil
}

// OnEnded implements engine.ScheduledNode.
func (n *Node) OnEnded(fn func()) {
	n.eng.mu.Lock()
	defer n.eng.mu.Unlock()
	n.ended = append(n.ended, fn)
}

// End simulates the native ended notification. Callbacks run once, outside
// the engine lock, in registration order.
func (n *Node) End() {
	n.eng.mu.Lock()
	if n.done {
		n.eng.mu.Unlock()
		return
	}
	n.done = true
	callbacks := append([]func(){}, n.ended...)
	n.eng.record("ended %s", n.label)
	n.eng.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

func (n *Node) peer(dst engine.NativeNode) (*Node, error) {
	d, ok := dst.(*Node)
	if !ok || d.eng != n.eng {
		return nil, fmt.Errorf("%s: destination does not belong to this engine", n.label)
	}
	return d, nil
}

func (n *Node) peerParam(dst engine.NativeParam) (*Param, error) {
	p, ok := dst.(*Param)
	if !ok || p.node.eng != n.eng {
		return nil, fmt.Errorf("%s: param does not belong to this engine", n.label)
	}
	return p, nil
}
