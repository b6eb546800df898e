package cycle_test

import (
	"testing"

	"github.com/specialistvlad/patchgraph/internal/audiograph"
	"github.com/specialistvlad/patchgraph/internal/cycle"
	"github.com/specialistvlad/patchgraph/internal/handle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGraph(t *testing.T, n int) (*audiograph.Store, []handle.Node) {
	t.Helper()
	s := audiograph.New()
	nodes := make([]handle.Node, n)
	for i := range nodes {
		nodes[i] = s.AddNode(audiograph.NodeInit{Kind: "gain", Inputs: 1, Outputs: 1})
	}
	return s, nodes
}

func link(t *testing.T, s *audiograph.Store, src, dst handle.Node) {
	t.Helper()
	_, err := s.AddEdge(src, audiograph.Edge{Dest: dst}, false)
	require.NoError(t, err)
}

func TestWouldCreateCycle(t *testing.T) {
	s, n := newGraph(t, 4)
	a, b, c, d := n[0], n[1], n[2], n[3]
	link(t, s, a, b)
	link(t, s, b, c)

	testCases := []struct {
		name     string
		src, dst handle.Node
		want     bool
	}{
		{"closing edge", c, a, true},
		{"direct back edge", b, a, true},
		{"self edge", d, d, true},
		{"forward edge", a, c, false},
		{"unrelated node", d, a, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := cycle.WouldCreateCycle(s, tc.src, tc.dst)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWouldCreateCycle_ThroughParam(t *testing.T) {
	s, n := newGraph(t, 2)
	a, b := n[0], n[1]
	p, err := s.AddParam(a, "gain", 1, nil)
	require.NoError(t, err)
	_, err = s.AddEdge(b, audiograph.Edge{Param: p}, false)
	require.NoError(t, err)

	got, err := cycle.WouldCreateCycle(s, a, b)
	require.NoError(t, err)
	assert.True(t, got, "an edge into a param reaches the param's owner")
}

func TestFind(t *testing.T) {
	// a -> b -> d, a -> c -> d; closing d -> a creates two cycles.
	s, n := newGraph(t, 4)
	a, b, c, d := n[0], n[1], n[2], n[3]
	link(t, s, a, b)
	link(t, s, a, c)
	link(t, s, b, d)
	link(t, s, c, d)

	cycles, err := cycle.Find(s, d, a)
	require.NoError(t, err)
	assert.ElementsMatch(t, [][]handle.Node{{a, b, d}, {a, c, d}}, cycles)

	none, err := cycle.Find(s, a, d)
	require.NoError(t, err)
	assert.Empty(t, none)

	self, err := cycle.Find(s, b, b)
	require.NoError(t, err)
	assert.Equal(t, [][]handle.Node{{b}}, self)
}

func TestCounters(t *testing.T) {
	_, n := newGraph(t, 3)
	a, b, c := n[0], n[1], n[2]
	counters := cycle.NewCounters()

	entered := counters.Mark([][]handle.Node{{a, b}})
	assert.Equal(t, []handle.Node{a, b}, entered)
	entered = counters.Mark([][]handle.Node{{b, c}})
	assert.Equal(t, []handle.Node{c}, entered)

	assert.Equal(t, 2, counters.Count(b))
	assert.Equal(t, 3, counters.Len())

	left, err := counters.Unmark([][]handle.Node{{a, b}})
	require.NoError(t, err)
	assert.Equal(t, []handle.Node{a}, left)
	assert.True(t, counters.InCycle(b))
	assert.False(t, counters.InCycle(a))

	_, err = counters.Unmark([][]handle.Node{{a}})
	assert.ErrorIs(t, err, cycle.ErrUnbalanced)
	assert.True(t, counters.InCycle(c), "failed unmark changes nothing")
}
