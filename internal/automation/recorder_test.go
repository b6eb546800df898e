package automation_test

import (
	"errors"
	"math"
	"testing"

	"github.com/specialistvlad/patchgraph/internal/automation"
	"github.com/specialistvlad/patchgraph/internal/simengine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParam(t *testing.T) *simengine.Param {
	t.Helper()
	eng := simengine.New(simengine.Config{})
	node, err := eng.CreateNode(t.Context(), "gain", nil)
	require.NoError(t, err)
	p, ok := node.Param("gain")
	require.True(t, ok)
	return p.(*simengine.Param)
}

func TestLog_ReplayPreservesCallOrder(t *testing.T) {
	log := automation.NewLog()
	require.NoError(t, log.Record(automation.Event{Kind: automation.SetValue, Value: 1, Time: 0}))
	require.NoError(t, log.Record(automation.Event{Kind: automation.LinearRamp, Value: 2, Time: 1}))
	// Recorded out of time order on purpose; replay keeps call order.
	require.NoError(t, log.Record(automation.Event{Kind: automation.SetTarget, Value: 0.5, Time: 0.25, TimeConstant: 0.1}))

	p := newParam(t)
	n, err := log.Replay(p)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{
		"setValueAtTime(1, 0)",
		"linearRampToValueAtTime(2, 1)",
		"setTargetAtTime(0.5, 0.25, 0.1)",
	}, p.Calls())
}

func TestLog_AllKinds(t *testing.T) {
	log := automation.NewLog()
	events := []automation.Event{
		{Kind: automation.SetValue, Value: 0.3, Time: 0},
		{Kind: automation.ExponentialRamp, Value: 0.9, Time: 2},
		{Kind: automation.SetValueCurve, Values: []float64{0, 1, 0}, Time: 3, Duration: 1.5},
		{Kind: automation.CancelScheduledValues, Time: 4},
	}
	for _, e := range events {
		require.NoError(t, log.Record(e))
	}

	p := newParam(t)
	_, err := log.Replay(p)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"setValueAtTime(0.3, 0)",
		"exponentialRampToValueAtTime(0.9, 2)",
		"setValueCurveAtTime([0 1 0], 3, 1.5)",
		"cancelScheduledValues(4)",
	}, p.Calls())
}

func TestLog_RecordCopiesCurve(t *testing.T) {
	log := automation.NewLog()
	curve := []float64{1, 2}
	require.NoError(t, log.Record(automation.Event{Kind: automation.SetValueCurve, Values: curve, Time: 0, Duration: 1}))
	curve[0] = 99

	assert.Equal(t, []float64{1, 2}, log.Events()[0].Values)
}

func TestEvent_Validate(t *testing.T) {
	testCases := []struct {
		name  string
		event automation.Event
	}{
		{"negative time", automation.Event{Kind: automation.SetValue, Time: -1}},
		{"nan time", automation.Event{Kind: automation.SetValue, Time: math.NaN()}},
		{"exponential to zero", automation.Event{Kind: automation.ExponentialRamp, Value: 0, Time: 1}},
		{"negative time constant", automation.Event{Kind: automation.SetTarget, Time: 1, TimeConstant: -0.5}},
		{"short curve", automation.Event{Kind: automation.SetValueCurve, Values: []float64{1}, Duration: 1}},
		{"zero duration curve", automation.Event{Kind: automation.SetValueCurve, Values: []float64{1, 2}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			log := automation.NewLog()
			err := log.Record(tc.event)
			require.Error(t, err)
			assert.True(t, errors.Is(err, automation.ErrInvalidArgument))
			assert.Zero(t, log.Len())
		})
	}
}

func TestApply_UnsupportedKind(t *testing.T) {
	err := automation.Apply(newParam(t), automation.Event{Kind: automation.Kind(42)})
	assert.ErrorIs(t, err, automation.ErrUnsupportedKind)
}

func TestParseKind(t *testing.T) {
	k, err := automation.ParseKind("linear_ramp")
	require.NoError(t, err)
	assert.Equal(t, automation.LinearRamp, k)

	_, err = automation.ParseKind("wobble")
	assert.ErrorIs(t, err, automation.ErrUnsupportedKind)
}
