package audiograph

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/specialistvlad/patchgraph/internal/handle"
)

const propNodes = 4

// op packs one random store operation into an int: source, destination,
// output, input and the action.
type op int

func (o op) decode(nodes []handle.Node) (handle.Node, Edge, int) {
	v := int(o)
	src := nodes[v%propNodes]
	dst := nodes[(v/propNodes)%propNodes]
	out := (v / (propNodes * propNodes)) % 2
	in := (v / (propNodes * propNodes * 2)) % 2
	action := (v / (propNodes * propNodes * 4)) % 4
	return src, Edge{Dest: dst, Output: out, Input: in}, action
}

func newPropStore() (*Store, []handle.Node) {
	s := New()
	nodes := make([]handle.Node, propNodes)
	for i := range nodes {
		nodes[i] = s.AddNode(NodeInit{Kind: "mixer", Inputs: 2, Outputs: 2})
	}
	return s, nodes
}

func apply(s *Store, nodes []handle.Node, ops []int) {
	for _, raw := range ops {
		src, e, action := op(raw).decode(nodes)
		switch action {
		case 0, 1:
			_, _ = s.AddEdge(src, e, action == 1)
		case 2:
			_, _ = s.RemoveEdge(src, e)
		case 3:
			_, _ = s.SetEdgeActive(src, e, true)
		}
	}
}

// checkSymmetry verifies that every output has exactly one destination entry
// and every destination entry has exactly one output and one listener.
func checkSymmetry(s *Store) error {
	outputs := 0
	for _, h := range s.Nodes() {
		rec, _ := s.Node(h)
		if len(rec.Listeners) != len(rec.Outputs) {
			return fmt.Errorf("%s: %d listeners for %d outputs", h, len(rec.Listeners), len(rec.Outputs))
		}
		for _, e := range rec.Outputs {
			outputs++
			side, err := s.inputSide("check", rec, e)
			if err != nil {
				return err
			}
			if side.find(h, e.Output) == nowhere {
				return fmt.Errorf("%s %s missing on destination", h, describe(e))
			}
		}
	}
	active, passive := s.EdgeCounts()
	if active+passive != outputs {
		return fmt.Errorf("%d outputs but %d destination entries", outputs, active+passive)
	}
	return nil
}

// checkExclusive verifies that a (source, output) pair occupies at most one
// slot of a given input port.
func checkExclusive(s *Store) error {
	for _, h := range s.Nodes() {
		rec, _ := s.Node(h)
		for input, port := range rec.ActiveInputs {
			seen := map[ActiveInput]int{}
			for _, in := range port {
				key := ActiveInput{Source: in.Source, Output: in.Output}
				seen[key]++
				for _, p := range rec.PassiveInputs[in.Source] {
					if p.Output == in.Output && p.Input == input {
						seen[key]++
					}
				}
				if seen[key] > 1 {
					return fmt.Errorf("%s input %d holds %v twice", h, input, key)
				}
			}
		}
	}
	return nil
}

func dump(s *Store) string {
	var b strings.Builder
	for _, h := range s.Nodes() {
		rec, _ := s.Node(h)
		fmt.Fprintf(&b, "%s active=%v passive=%v outputs=%v listeners=%d\n",
			h, rec.ActiveInputs, rec.PassiveInputs, rec.Outputs, len(rec.Listeners))
	}
	return b.String()
}

func TestStoreProperties(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	opsGen := gen.SliceOf(gen.IntRange(0, propNodes*propNodes*16-1))

	properties.Property("edges are mirrored on both endpoints", prop.ForAll(
		func(ops []int) bool {
			s, nodes := newPropStore()
			apply(s, nodes, ops)
			return checkSymmetry(s) == nil
		},
		opsGen,
	))

	properties.Property("an edge occupies one slot per port", prop.ForAll(
		func(ops []int) bool {
			s, nodes := newPropStore()
			apply(s, nodes, ops)
			return checkExclusive(s) == nil
		},
		opsGen,
	))

	properties.Property("add then remove restores the store", prop.ForAll(
		func(ops []int, extra int, active bool) bool {
			s, nodes := newPropStore()
			apply(s, nodes, ops)
			src, e, _ := op(extra).decode(nodes)
			if s.HasEdge(src, e) {
				return true
			}
			before := dump(s)
			if _, err := s.AddEdge(src, e, active); err != nil {
				return false
			}
			if _, err := s.RemoveEdge(src, e); err != nil {
				return false
			}
			return dump(s) == before
		},
		opsGen,
		gen.IntRange(0, propNodes*propNodes*4-1),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
