package simengine

import (
	"fmt"
	"strings"
)

// Param is a native param of a simulated node. It keeps the scheduling calls
// it received in order.
type Param struct {
	node  *Node
	name  string
	calls []string
}

// Name returns the param name.
func (p *Param) Name() string { return p.name }

// Calls returns the scheduling calls received, in order.
func (p *Param) Calls() []string {
	p.node.eng.mu.Lock()
	defer p.node.eng.mu.Unlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

func (p *Param) SetValueAtTime(value, startTime float64) error {
	p.record("setValueAtTime(%g, %g)", value, startTime)
	return nil
}

func (p *Param) LinearRampToValueAtTime(value, endTime float64) error {
	p.record("linearRampToValueAtTime(%g, %g)", value, endTime)
	return nil
}

func (p *Param) ExponentialRampToValueAtTime(value, endTime float64) error {
	p.record("exponentialRampToValueAtTime(%g, %g)", value, endTime)
	return nil
}

func (p *Param) SetTargetAtTime(target, startTime, timeConstant float64) error {
	p.record("setTargetAtTime(%g, %g, %g)", target, startTime, timeConstant)
	return nil
}

func (p *Param) SetValueCurveAtTime(values []float64, startTime, duration float64) error {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%g", v)
	}
	p.record("setValueCurveAtTime([%s], %g, %g)", strings.Join(parts, " "), startTime, duration)
	return nil
}

func (p *Param) CancelScheduledValues(cancelTime float64) error {
	p.record("cancelScheduledValues(%g)", cancelTime)
	return nil
}

func (p *Param) record(format string, args ...any) {
	p.node.eng.mu.Lock()
	defer p.node.eng.mu.Unlock()
	call := fmt.Sprintf(format, args...)
	p.calls = append(p.calls, call)
	p.node.eng.record("param %s.%s %s", p.node.label, p.name, call)
}
