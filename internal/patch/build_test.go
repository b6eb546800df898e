package patch_test

import (
	"testing"

	"github.com/specialistvlad/patchgraph/internal/audiocontext"
	"github.com/specialistvlad/patchgraph/internal/automation"
	"github.com/specialistvlad/patchgraph/internal/engine"
	"github.com/specialistvlad/patchgraph/internal/patch"
	"github.com/specialistvlad/patchgraph/internal/registry"
	"github.com/specialistvlad/patchgraph/internal/simengine"
	"github.com/specialistvlad/patchgraph/modules/biquadfilter"
	"github.com/specialistvlad/patchgraph/modules/gain"
	"github.com/specialistvlad/patchgraph/modules/oscillator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	(&gain.Module{}).Register(r)
	(&oscillator.Module{}).Register(r)
	require.NoError(t, r.Validate(t.Context()))
	return r
}

func start(v float64) *float64 { return &v }

func examplePatch() *patch.Patch {
	return &patch.Patch{
		SampleRate: 44100,
		Length:     100,
		Nodes: []*patch.Node{
			{Kind: "oscillator", Name: "osc", Start: start(0), Stop: start(1), Options: engine.Options{"type": "square"}},
			{Kind: "oscillator", Name: "lfo", Start: start(0)},
			{Kind: "gain", Name: "amp", Automation: []*patch.Automation{{
				Param:  "gain",
				Events: []automation.Event{{Kind: automation.SetValue, Value: 0.5, Time: 0}},
			}}},
		},
		Connections: []*patch.Connection{
			{From: patch.Address{Node: "osc"}, To: patch.Address{Node: "amp"}},
			{From: patch.Address{Node: "amp"}, To: patch.Address{Node: patch.Destination}},
			{From: patch.Address{Node: "lfo"}, To: patch.Address{Node: "amp", Param: "gain"}},
			{From: patch.Address{Node: "osc"}, To: patch.Address{Node: "amp"}},
		},
	}
}

func TestBuild_Offline(t *testing.T) {
	c, err := audiocontext.New(audiocontext.Options{Offline: true})
	require.NoError(t, err)

	g, err := patch.Build(t.Context(), examplePatch(), newRegistry(t), c)
	require.NoError(t, err)
	assert.Equal(t, []string{"osc", "lfo", "amp"}, g.Names())

	amp, ok := g.Node("amp")
	require.True(t, ok)
	assert.True(t, amp.IsActive())
	p, _ := amp.Param("gain")
	assert.Len(t, p.Events(), 1)

	dest, ok := g.Node(patch.Destination)
	require.True(t, ok)
	assert.Equal(t, c.Destination(), dest)

	target := simengine.New(simengine.Config{Frames: 100})
	res, err := c.StartRendering(t.Context(), target)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Links)
	assert.Equal(t, 2, target.CreatedCount("oscillator"))
}

func TestBuild_Realtime(t *testing.T) {
	eng := simengine.New(simengine.Config{})
	c, err := audiocontext.New(audiocontext.Options{Engine: eng})
	require.NoError(t, err)

	_, err = patch.Build(t.Context(), examplePatch(), newRegistry(t), c)
	require.NoError(t, err)
	assert.Len(t, eng.Links(), 3)
	assert.Equal(t, 2, eng.CreatedCount("oscillator"))
}

func TestBuild_SampleRateReachesFilters(t *testing.T) {
	r := newRegistry(t)
	(&biquadfilter.Module{}).Register(r)
	eng := simengine.New(simengine.Config{})
	c, err := audiocontext.New(audiocontext.Options{Engine: eng})
	require.NoError(t, err)

	p := &patch.Patch{
		SampleRate: 8000,
		Length:     100,
		Nodes: []*patch.Node{
			{Kind: "biquad_filter", Name: "lp", Options: engine.Options{"frequency": 200.0}},
			{Kind: "biquad_filter", Name: "pinned", Options: engine.Options{"sample_rate": 48000.0}},
			{Kind: "gain", Name: "amp"},
		},
	}
	g, err := patch.Build(t.Context(), p, r, c)
	require.NoError(t, err)

	rate := func(name string) any {
		n, ok := g.Node(name)
		require.True(t, ok)
		return n.Native().(*simengine.Node).Options()["sample_rate"]
	}
	assert.Equal(t, 8000.0, rate("lp"))
	assert.Equal(t, 48000.0, rate("pinned"))
	assert.Nil(t, rate("amp"), "kinds without the option are left alone")
	assert.Nil(t, p.Nodes[0].Options["sample_rate"], "declarations are not mutated")
}

func TestBuild_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(p *patch.Patch)
		wantErr error
	}{
		{
			name:    "unknown kind",
			mutate:  func(p *patch.Patch) { p.Nodes[0].Kind = "theremin" },
			wantErr: registry.ErrUnknownKind,
		},
		{
			name:    "unknown node",
			mutate:  func(p *patch.Patch) { p.Connections[0].To.Node = "nowhere" },
			wantErr: patch.ErrUnknownNode,
		},
		{
			name:    "unknown param",
			mutate:  func(p *patch.Patch) { p.Connections[2].To.Param = "pan" },
			wantErr: patch.ErrUnknownParam,
		},
		{
			name:    "unknown automated param",
			mutate:  func(p *patch.Patch) { p.Nodes[2].Automation[0].Param = "pan" },
			wantErr: patch.ErrUnknownParam,
		},
		{
			name:    "port out of range",
			mutate:  func(p *patch.Patch) { p.Connections[0].From.Port = 3 },
			wantErr: audiocontext.ErrIndexSize,
		},
		{
			name:    "start on a derived node",
			mutate:  func(p *patch.Patch) { p.Nodes[2].Start = start(0) },
			wantErr: audiocontext.ErrInvalidState,
		},
		{
			name:    "bad option",
			mutate:  func(p *patch.Patch) { p.Nodes[0].Options = engine.Options{"type": 1.0} },
			wantErr: registry.ErrInvalidOption,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := audiocontext.New(audiocontext.Options{Offline: true})
			require.NoError(t, err)
			p := examplePatch()
			tc.mutate(p)
			_, err = patch.Build(t.Context(), p, newRegistry(t), c)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
