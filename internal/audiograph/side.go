package audiograph

import (
	"fmt"

	"github.com/specialistvlad/patchgraph/internal/handle"
)

type location int

const (
	nowhere location = iota
	inActive
	inPassive
)

// inputSide is the destination half of an edge: the active set of one port
// (or of a param) and the passive map it shares with the other ports.
type inputSide struct {
	active  *[]ActiveInput
	passive map[handle.Node][]PassiveInput
	input   int
}

func (s *Store) inputSide(op string, from *NodeRecord, e Edge) (inputSide, error) {
	if e.Output < 0 || e.Output >= from.NumOutputs {
		return inputSide{}, &GraphError{Op: op, Entity: describe(e), Cause: fmt.Errorf("output %d of %d: %w", e.Output, from.NumOutputs, ErrIndexSize)}
	}
	if e.ToParam() {
		p, err := s.Param(e.Param)
		if err != nil {
			return inputSide{}, err
		}
		return inputSide{active: &p.ActiveInputs, passive: p.PassiveInputs}, nil
	}
	to, err := s.Node(e.Dest)
	if err != nil {
		return inputSide{}, err
	}
	if e.Input < 0 || e.Input >= to.NumInputs() {
		return inputSide{}, &GraphError{Op: op, Entity: describe(e), Cause: fmt.Errorf("input %d of %d: %w", e.Input, to.NumInputs(), ErrIndexSize)}
	}
	return inputSide{active: &to.ActiveInputs[e.Input], passive: to.PassiveInputs, input: e.Input}, nil
}

func (d inputSide) find(src handle.Node, output int) location {
	for _, in := range *d.active {
		if in.Source == src && in.Output == output {
			return inActive
		}
	}
	for _, in := range d.passive[src] {
		if in.Output == output && in.Input == d.input {
			return inPassive
		}
	}
	return nowhere
}

func (d inputSide) insert(src handle.Node, output int, id ListenerID, active bool) {
	if active {
		*d.active = append(*d.active, ActiveInput{Source: src, Output: output, Listener: id})
		return
	}
	d.passive[src] = append(d.passive[src], PassiveInput{Output: output, Input: d.input, Listener: id})
}

// remove deletes the entry found at where and returns its listener.
func (d inputSide) remove(src handle.Node, output int, where location) ListenerID {
	if where == inActive {
		var removed ActiveInput
		*d.active, removed, _ = removeOne(*d.active, func(in ActiveInput) bool {
			return in.Source == src && in.Output == output
		})
		return removed.Listener
	}
	set, removed, _ := removeOne(d.passive[src], func(in PassiveInput) bool {
		return in.Output == output && in.Input == d.input
	})
	if set == nil {
		delete(d.passive, src)
	} else {
		d.passive[src] = set
	}
	return removed.Listener
}
