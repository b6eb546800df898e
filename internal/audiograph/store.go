package audiograph

import (
	"fmt"

	"github.com/specialistvlad/patchgraph/internal/automation"
	"github.com/specialistvlad/patchgraph/internal/engine"
	"github.com/specialistvlad/patchgraph/internal/handle"
)

// Store holds the connection records of one context.
type Store struct {
	nodes        arena[NodeRecord]
	params       arena[ParamRecord]
	nextListener ListenerID
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// AddNode registers a node and returns its handle. The record starts with one
// empty active set per input port and, for persistent nodes, active.
func (s *Store) AddNode(init NodeInit) handle.Node {
	rec := &NodeRecord{
		Kind:          init.Kind,
		NumOutputs:    init.Outputs,
		Origin:        init.Origin,
		TailTime:      init.TailTime,
		ActiveInputs:  make([][]ActiveInput, init.Inputs),
		PassiveInputs: make(map[handle.Node][]PassiveInput),
		Renderer:      init.Renderer,
		Native:        init.Native,
		Active:        init.Origin == OriginPersistent,
	}
	idx, gen := s.nodes.alloc(rec)
	return handle.NewNode(idx, gen)
}

// AddParam registers a param owned by owner. Params of offline contexts get
// an automation log; native is set for real-time contexts.
func (s *Store) AddParam(owner handle.Node, name string, def float64, native engine.NativeParam) (handle.Param, error) {
	o, err := s.Node(owner)
	if err != nil {
		return handle.Param{}, err
	}
	rec := &ParamRecord{
		Owner:         owner,
		Name:          name,
		Default:       def,
		PassiveInputs: make(map[handle.Node][]PassiveInput),
		Native:        native,
	}
	if native == nil {
		rec.Automation = automation.NewLog()
	}
	idx, gen := s.params.alloc(rec)
	h := handle.NewParam(idx, gen)
	o.Params = append(o.Params, h)
	return h, nil
}

// Node resolves a node handle.
func (s *Store) Node(h handle.Node) (*NodeRecord, error) {
	rec, ok := s.nodes.get(h.Index(), h.Generation())
	if !ok {
		return nil, newError("Node", h, ErrRecordMissing)
	}
	return rec, nil
}

// Param resolves a param handle.
func (s *Store) Param(h handle.Param) (*ParamRecord, error) {
	rec, ok := s.params.get(h.Index(), h.Generation())
	if !ok {
		return nil, newError("Param", h, ErrRecordMissing)
	}
	return rec, nil
}

// Nodes returns the handles of all live nodes in slot order.
func (s *Store) Nodes() []handle.Node {
	out := make([]handle.Node, 0, s.nodes.live)
	s.nodes.each(func(idx, gen uint32, _ *NodeRecord) {
		out = append(out, handle.NewNode(idx, gen))
	})
	return out
}

// Len returns the number of live node and param records.
func (s *Store) Len() (nodes, params int) {
	return s.nodes.live, s.params.live
}

// AddEdge inserts e, leaving src, into the destination's active or passive
// set and registers the state listener that tracks it. Nothing is mutated
// when an error is returned.
func (s *Store) AddEdge(src handle.Node, e Edge, active bool) (ListenerID, error) {
	e = normalize(e)
	from, err := s.Node(src)
	if err != nil {
		return 0, err
	}
	side, err := s.inputSide("AddEdge", from, e)
	if err != nil {
		return 0, err
	}
	if _, err := insertUnique(from.Outputs, e, func(o Edge) bool { return o == e }); err != nil {
		return 0, newError("AddEdge", src, fmt.Errorf("%s: %w", describe(e), err))
	}
	if side.find(src, e.Output) != nowhere {
		return 0, newError("AddEdge", src, fmt.Errorf("%s present on destination only: %w", describe(e), ErrDuplicateEdge))
	}

	s.nextListener++
	id := s.nextListener
	from.Outputs = append(from.Outputs, e)
	from.Listeners = append(from.Listeners, Listener{ID: id, Edge: e})
	side.insert(src, e.Output, id, active)
	return id, nil
}

// RemoveEdge deletes e and its listener. It reports whether the edge was
// active at the time of removal.
func (s *Store) RemoveEdge(src handle.Node, e Edge) (bool, error) {
	e = normalize(e)
	from, err := s.Node(src)
	if err != nil {
		return false, err
	}
	side, err := s.inputSide("RemoveEdge", from, e)
	if err != nil {
		return false, err
	}
	if _, err := pickOne(from.Outputs, func(o Edge) bool { return o == e }); err != nil {
		return false, newError("RemoveEdge", src, fmt.Errorf("%s: %w", describe(e), err))
	}
	li, err := pickOne(from.Listeners, func(l Listener) bool { return l.Edge == e })
	if err != nil {
		return false, newError("RemoveEdge", src, fmt.Errorf("listener for %s: %w", describe(e), ErrListenerNotFound))
	}
	where := side.find(src, e.Output)
	if where == nowhere {
		return false, newError("RemoveEdge", src, fmt.Errorf("%s missing on destination: %w", describe(e), ErrEdgeNotFound))
	}

	from.Outputs, _, _ = removeOne(from.Outputs, func(o Edge) bool { return o == e })
	if err := s.removeListener(from, from.Listeners[li].ID); err != nil {
		return false, newError("RemoveEdge", src, err)
	}
	side.remove(src, e.Output, where)
	return where == inActive, nil
}

// SetEdgeActive moves e between the destination's active and passive sets,
// keeping its listener. It reports whether the edge moved.
func (s *Store) SetEdgeActive(src handle.Node, e Edge, active bool) (bool, error) {
	e = normalize(e)
	from, err := s.Node(src)
	if err != nil {
		return false, err
	}
	side, err := s.inputSide("SetEdgeActive", from, e)
	if err != nil {
		return false, err
	}
	where := side.find(src, e.Output)
	switch {
	case where == nowhere:
		return false, newError("SetEdgeActive", src, fmt.Errorf("%s: %w", describe(e), ErrEdgeNotFound))
	case (where == inActive) == active:
		return false, nil
	}
	id := side.remove(src, e.Output, where)
	side.insert(src, e.Output, id, active)
	return true, nil
}

// IsActiveEdge reports whether e is currently in its destination's active set.
func (s *Store) IsActiveEdge(src handle.Node, e Edge) (bool, error) {
	e = normalize(e)
	from, err := s.Node(src)
	if err != nil {
		return false, err
	}
	side, err := s.inputSide("IsActiveEdge", from, e)
	if err != nil {
		return false, err
	}
	switch side.find(src, e.Output) {
	case inActive:
		return true, nil
	case inPassive:
		return false, nil
	}
	return false, newError("IsActiveEdge", src, fmt.Errorf("%s: %w", describe(e), ErrEdgeNotFound))
}

// HasEdge reports whether e leaves src.
func (s *Store) HasEdge(src handle.Node, e Edge) bool {
	e = normalize(e)
	from, err := s.Node(src)
	if err != nil {
		return false
	}
	_, err = pickOne(from.Outputs, func(o Edge) bool { return o == e })
	return err == nil
}

// Listeners returns a snapshot of src's listeners in registration order.
func (s *Store) Listeners(src handle.Node) ([]Listener, error) {
	from, err := s.Node(src)
	if err != nil {
		return nil, err
	}
	return append([]Listener(nil), from.Listeners...), nil
}

// DestinationNode returns the node an edge lands on: the destination itself,
// or the owner of the destination param.
func (s *Store) DestinationNode(e Edge) (handle.Node, error) {
	if !e.ToParam() {
		return e.Dest, nil
	}
	p, err := s.Param(e.Param)
	if err != nil {
		return handle.Node{}, err
	}
	return p.Owner, nil
}

// Successors returns the distinct nodes reachable from h over one edge, in
// first-edge order. Param edges count towards the param's owner.
func (s *Store) Successors(h handle.Node) ([]handle.Node, error) {
	rec, err := s.Node(h)
	if err != nil {
		return nil, err
	}
	seen := make(map[handle.Node]struct{}, len(rec.Outputs))
	out := make([]handle.Node, 0, len(rec.Outputs))
	for _, e := range rec.Outputs {
		dst, err := s.DestinationNode(e)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[dst]; ok {
			continue
		}
		seen[dst] = struct{}{}
		out = append(out, dst)
	}
	return out, nil
}

// Adjacency counts the edges leaving src that land on dst or one of its params.
func (s *Store) Adjacency(src, dst handle.Node) (int, error) {
	rec, err := s.Node(src)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range rec.Outputs {
		to, err := s.DestinationNode(e)
		if err != nil {
			return 0, err
		}
		if to == dst {
			n++
		}
	}
	return n, nil
}

// EdgeCounts returns the number of active and passive edges in the store.
func (s *Store) EdgeCounts() (active, passive int) {
	count := func(act []ActiveInput, pas map[handle.Node][]PassiveInput) {
		active += len(act)
		for _, set := range pas {
			passive += len(set)
		}
	}
	s.nodes.each(func(_, _ uint32, rec *NodeRecord) {
		for _, port := range rec.ActiveInputs {
			count(port, nil)
		}
		count(nil, rec.PassiveInputs)
	})
	s.params.each(func(_, _ uint32, rec *ParamRecord) {
		count(rec.ActiveInputs, rec.PassiveInputs)
	})
	return active, passive
}

// RemoveNode detaches every edge touching h, releases its params and then
// the node itself. The detached edges are returned as (source, edge) pairs.
func (s *Store) RemoveNode(h handle.Node) ([]Detached, error) {
	rec, err := s.Node(h)
	if err != nil {
		return nil, err
	}
	var detached []Detached
	detach := func(src handle.Node, e Edge) error {
		wasActive, err := s.RemoveEdge(src, e)
		if err != nil {
			return err
		}
		detached = append(detached, Detached{Source: src, Edge: e, Active: wasActive})
		return nil
	}

	for len(rec.Outputs) > 0 {
		if err := detach(h, rec.Outputs[0]); err != nil {
			return detached, err
		}
	}
	for _, in := range s.incoming(h, rec) {
		if err := detach(in.Source, in.Edge); err != nil {
			return detached, err
		}
	}
	for _, ph := range rec.Params {
		p, err := s.Param(ph)
		if err != nil {
			return detached, err
		}
		for _, in := range incomingParam(ph, p) {
			if err := detach(in.Source, in.Edge); err != nil {
				return detached, err
			}
		}
		s.params.release(ph.Index(), ph.Generation())
	}
	s.nodes.release(h.Index(), h.Generation())
	return detached, nil
}

// Reset releases every record. Outstanding handles stop resolving.
func (s *Store) Reset() {
	s.params.each(func(idx, gen uint32, _ *ParamRecord) { s.params.release(idx, gen) })
	s.nodes.each(func(idx, gen uint32, _ *NodeRecord) { s.nodes.release(idx, gen) })
}

// Detached is an edge removed by RemoveNode.
type Detached struct {
	Source handle.Node
	Edge   Edge
	Active bool
}

func (s *Store) incoming(h handle.Node, rec *NodeRecord) []Detached {
	var out []Detached
	for input, port := range rec.ActiveInputs {
		for _, in := range port {
			out = append(out, Detached{Source: in.Source, Edge: Edge{Dest: h, Output: in.Output, Input: input}})
		}
	}
	for src, set := range rec.PassiveInputs {
		for _, in := range set {
			out = append(out, Detached{Source: src, Edge: Edge{Dest: h, Output: in.Output, Input: in.Input}})
		}
	}
	return out
}

func incomingParam(h handle.Param, rec *ParamRecord) []Detached {
	var out []Detached
	for _, in := range rec.ActiveInputs {
		out = append(out, Detached{Source: in.Source, Edge: Edge{Param: h, Output: in.Output}})
	}
	for src, set := range rec.PassiveInputs {
		for _, in := range set {
			out = append(out, Detached{Source: src, Edge: Edge{Param: h, Output: in.Output}})
		}
	}
	return out
}

func (s *Store) removeListener(from *NodeRecord, id ListenerID) error {
	var err error
	from.Listeners, _, err = removeOne(from.Listeners, func(l Listener) bool { return l.ID == id })
	if err != nil {
		return fmt.Errorf("listener %d: %w", id, ErrListenerNotFound)
	}
	return nil
}

func normalize(e Edge) Edge {
	if e.ToParam() {
		e.Dest = handle.Node{}
		e.Input = 0
	}
	return e
}

func describe(e Edge) string {
	if e.ToParam() {
		return fmt.Sprintf("output %d -> %s", e.Output, e.Param)
	}
	return fmt.Sprintf("output %d -> %s input %d", e.Output, e.Dest, e.Input)
}
