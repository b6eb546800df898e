package audiocontext

import (
	"testing"
	"time"

	"github.com/specialistvlad/patchgraph/internal/metrics"
	"github.com/specialistvlad/patchgraph/internal/simengine"
	"github.com/stretchr/testify/require"
)

var (
	oscSpec = NodeSpec{
		Kind:    "oscillator",
		Outputs: 1,
		Origin:  OriginScheduled,
		Params:  []ParamSpec{{Name: "frequency", Default: 440}},
	}
	gainSpec = NodeSpec{
		Kind:    "gain",
		Inputs:  1,
		Outputs: 1,
		Params:  []ParamSpec{{Name: "gain", Default: 1}},
	}
	filterSpec = NodeSpec{
		Kind:     "biquad",
		Inputs:   1,
		Outputs:  1,
		TailTime: time.Second,
	}
	workletSpec = NodeSpec{
		Kind:    "worklet",
		Inputs:  1,
		Outputs: 1,
		Origin:  OriginPersistent,
	}
)

type harness struct {
	ctx   *Context
	eng   *simengine.Engine
	clock *ManualClock
}

func newRealtime(t *testing.T) *harness {
	t.Helper()
	eng := simengine.New(simengine.Config{})
	clock := NewManualClock()
	c, err := New(Options{Engine: eng, Clock: clock, Metrics: metrics.NewRegistry()})
	require.NoError(t, err)
	return &harness{ctx: c, eng: eng, clock: clock}
}

func newOffline(t *testing.T) *harness {
	t.Helper()
	clock := NewManualClock()
	c, err := New(Options{Offline: true, Clock: clock})
	require.NoError(t, err)
	return &harness{ctx: c, clock: clock}
}

func (h *harness) node(t *testing.T, spec NodeSpec) *Node {
	t.Helper()
	n, err := h.ctx.CreateNode(t.Context(), spec)
	require.NoError(t, err)
	return n
}

func (h *harness) connect(t *testing.T, src, dst *Node) {
	t.Helper()
	added, err := src.Connect(dst, 0, 0)
	require.NoError(t, err)
	require.True(t, added)
}

func label(n *Node) string {
	return n.Native().(*simengine.Node).Label()
}

func wired(src, dst *Node) simengine.Link {
	return simengine.Link{From: label(src), To: label(dst)}
}
