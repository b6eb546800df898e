package audiocontext

import (
	"testing"
	"time"

	"github.com/specialistvlad/patchgraph/internal/simengine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart_CascadesAndMirrors(t *testing.T) {
	h := newRealtime(t)
	osc, amp := h.node(t, oscSpec), h.node(t, gainSpec)
	dest := h.ctx.Destination()
	h.connect(t, osc, amp)
	h.connect(t, amp, dest)
	assert.Empty(t, h.eng.Links(), "passive edges are not mirrored")

	var changes []StateChange
	h.ctx.Watch(func(sc StateChange) { changes = append(changes, sc) })

	require.NoError(t, osc.Start(0))
	assert.True(t, osc.IsActive())
	assert.True(t, amp.IsActive())
	assert.True(t, dest.IsActive())
	assert.ElementsMatch(t, []simengine.Link{wired(osc, amp), wired(amp, dest)}, h.eng.Links())

	require.Len(t, changes, 3)
	assert.Equal(t, "oscillator", changes[0].Kind)
	assert.Equal(t, "gain", changes[1].Kind)
	assert.Equal(t, "destination", changes[2].Kind)
	assert.Equal(t, h.ctx.ID(), changes[0].ContextID)

	osc.Native().(*simengine.Node).End()
	assert.False(t, osc.IsActive())
	assert.False(t, amp.IsActive())
	assert.False(t, dest.IsActive())
	assert.Empty(t, h.eng.Links())
	require.Len(t, changes, 6)
	assert.False(t, changes[5].Active)
}

func TestStart_Misuse(t *testing.T) {
	h := newRealtime(t)
	osc, amp := h.node(t, oscSpec), h.node(t, gainSpec)

	assert.ErrorIs(t, osc.Stop(1), ErrInvalidState, "stop before start")
	require.NoError(t, osc.Start(0))
	assert.ErrorIs(t, osc.Start(1), ErrInvalidState, "start twice")
	require.NoError(t, osc.Stop(2))

	assert.ErrorIs(t, amp.Start(0), ErrInvalidState)
	assert.ErrorIs(t, amp.Deactivate(), ErrInvalidState)
	assert.ErrorIs(t, osc.Activate(), ErrInvalidState)

	start, stop := osc.Native().(*simengine.Node).Schedule()
	require.NotNil(t, start)
	require.NotNil(t, stop)
	assert.Equal(t, 2.0, *stop)
}

func TestTailTime_Debounce(t *testing.T) {
	h := newRealtime(t)
	osc, filter := h.node(t, oscSpec), h.node(t, filterSpec)
	h.connect(t, osc, filter)
	h.connect(t, filter, h.ctx.Destination())
	require.NoError(t, osc.Start(0))
	require.True(t, filter.IsActive())

	require.NoError(t, osc.NotifyEnded())
	assert.True(t, filter.IsActive(), "tail time keeps the node active")
	assert.True(t, h.eng.HasLink(wired(filter, h.ctx.Destination())))
	assert.Equal(t, 1, h.clock.Pending())

	h.clock.Advance(999 * time.Millisecond)
	assert.True(t, filter.IsActive())

	h.clock.Advance(time.Millisecond)
	assert.False(t, filter.IsActive())
	assert.False(t, h.ctx.Destination().IsActive())
	assert.Empty(t, h.eng.Links())
}

func TestTailTime_NewInputCancelsCheck(t *testing.T) {
	h := newRealtime(t)
	first, second := h.node(t, oscSpec), h.node(t, oscSpec)
	filter := h.node(t, filterSpec)
	h.connect(t, first, filter)
	require.NoError(t, first.Start(0))
	require.NoError(t, first.NotifyEnded())
	require.Equal(t, 1, h.clock.Pending())

	require.NoError(t, second.Start(0))
	h.connect(t, second, filter)
	assert.Zero(t, h.clock.Pending(), "an active input cancels the pending check")

	h.clock.Advance(5 * time.Second)
	assert.True(t, filter.IsActive())

	require.NoError(t, second.NotifyEnded())
	h.clock.Advance(time.Second)
	assert.False(t, filter.IsActive())
}

func TestPersistent_NeverAutoDemoted(t *testing.T) {
	h := newRealtime(t)
	osc, worklet := h.node(t, oscSpec), h.node(t, workletSpec)
	assert.True(t, worklet.IsActive(), "persistent nodes start active")

	h.connect(t, worklet, h.ctx.Destination())
	assert.True(t, h.eng.HasLink(wired(worklet, h.ctx.Destination())))

	h.connect(t, osc, worklet)
	require.NoError(t, osc.Start(0))
	require.NoError(t, osc.NotifyEnded())
	assert.True(t, worklet.IsActive())

	require.NoError(t, worklet.Deactivate())
	assert.False(t, worklet.IsActive())
	assert.False(t, h.ctx.Destination().IsActive())
	assert.Empty(t, h.eng.Links())

	require.NoError(t, worklet.Activate())
	assert.True(t, h.ctx.Destination().IsActive())
}

func TestEnded_Idempotent(t *testing.T) {
	h := newOffline(t)
	osc := h.node(t, oscSpec)
	var count int
	h.ctx.Watch(func(StateChange) { count++ })

	require.NoError(t, osc.Start(0))
	require.NoError(t, osc.NotifyEnded())
	require.NoError(t, osc.NotifyEnded())
	assert.Equal(t, 2, count)
}

func TestWatch_Unregister(t *testing.T) {
	h := newOffline(t)
	osc := h.node(t, oscSpec)
	var count int
	stop := h.ctx.Watch(func(StateChange) { count++ })
	stop()

	require.NoError(t, osc.Start(0))
	assert.Zero(t, count)
}
