package audiocontext

import (
	"fmt"

	"github.com/specialistvlad/patchgraph/internal/automation"
	"github.com/specialistvlad/patchgraph/internal/handle"
)

// Param is the proxy of one automatable input. Offline params record
// automation calls for replay at render time; real-time params forward them
// to the native param.
type Param struct {
	node *Node
	h    handle.Param
	name string
}

// Handle returns the param's store handle.
func (p *Param) Handle() handle.Param { return p.h }

// Name returns the param name.
func (p *Param) Name() string { return p.name }

// Node returns the owning node.
func (p *Param) Node() *Node { return p.node }

func (p *Param) String() string {
	return fmt.Sprintf("%s.%s", p.node, p.name)
}

// SetValueAtTime sets the value at startTime.
func (p *Param) SetValueAtTime(value, startTime float64) error {
	return p.schedule(automation.Event{Kind: automation.SetValue, Value: value, Time: startTime})
}

// LinearRampToValueAtTime ramps linearly from the previous event to value,
// reaching it at endTime.
func (p *Param) LinearRampToValueAtTime(value, endTime float64) error {
	return p.schedule(automation.Event{Kind: automation.LinearRamp, Value: value, Time: endTime})
}

// ExponentialRampToValueAtTime ramps exponentially to value by endTime.
// value must be non-zero.
func (p *Param) ExponentialRampToValueAtTime(value, endTime float64) error {
	return p.schedule(automation.Event{Kind: automation.ExponentialRamp, Value: value, Time: endTime})
}

// SetTargetAtTime approaches target from startTime with the given time
// constant.
func (p *Param) SetTargetAtTime(target, startTime, timeConstant float64) error {
	return p.schedule(automation.Event{Kind: automation.SetTarget, Value: target, Time: startTime, TimeConstant: timeConstant})
}

// SetValueCurveAtTime follows values, spread evenly over duration from
// startTime. The curve needs at least two points.
func (p *Param) SetValueCurveAtTime(values []float64, startTime, duration float64) error {
	return p.schedule(automation.Event{Kind: automation.SetValueCurve, Values: values, Time: startTime, Duration: duration})
}

// CancelScheduledValues cancels every event scheduled at or after cancelTime.
func (p *Param) CancelScheduledValues(cancelTime float64) error {
	return p.schedule(automation.Event{Kind: automation.CancelScheduledValues, Time: cancelTime})
}

// Schedule issues an arbitrary automation event.
func (p *Param) Schedule(e automation.Event) error {
	return p.schedule(e)
}

// Events returns the automation recorded so far. Real-time params record
// nothing.
func (p *Param) Events() []automation.Event {
	c := p.node.ctx
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, err := c.store.Param(p.h)
	if err != nil || rec.Automation == nil {
		return nil
	}
	return rec.Automation.Events()
}

func (p *Param) schedule(e automation.Event) error {
	c := p.node.ctx
	return c.mutate(func() error {
		if c.closed {
			return ErrContextClosed
		}
		rec, err := c.store.Param(p.h)
		if err != nil {
			return err
		}
		if rec.Automation != nil {
			return rec.Automation.Record(e)
		}
		if err := e.Validate(); err != nil {
			return err
		}
		if err := automation.Apply(rec.Native, e); err != nil {
			return nativeErr(e.Kind.String(), err)
		}
		return nil
	})
}
