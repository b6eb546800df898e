package automation

import (
	"fmt"

	"github.com/specialistvlad/patchgraph/internal/engine"
)

// Log is the ordered record of automation calls issued against one param.
// Order is call order, not time order; the native engine sorts by time once
// the calls are replayed. A Log is not safe for concurrent mutation; the owning
// context serializes Record calls.
type Log struct {
	events []Event
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Record validates e and appends it to the log.
func (l *Log) Record(e Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if e.Values != nil {
		e.Values = append([]float64(nil), e.Values...)
	}
	l.events = append(l.events, e)
	return nil
}

// Len returns the number of recorded events.
func (l *Log) Len() int {
	return len(l.events)
}

// Events returns a copy of the recorded events in call order.
func (l *Log) Events() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Replay issues every recorded event against p in recorded order. It stops at
// the first failing call.
func (l *Log) Replay(p engine.NativeParam) (int, error) {
	for i, e := range l.events {
		if err := Apply(p, e); err != nil {
			return i, fmt.Errorf("replaying event %d (%s): %w", i, e.Kind, err)
		}
	}
	return len(l.events), nil
}

// Apply issues the native scheduling call equivalent to e.
func Apply(p engine.NativeParam, e Event) error {
	switch e.Kind {
	case SetValue:
		return p.SetValueAtTime(e.Value, e.Time)
	case LinearRamp:
		return p.LinearRampToValueAtTime(e.Value, e.Time)
	case ExponentialRamp:
		return p.ExponentialRampToValueAtTime(e.Value, e.Time)
	case SetTarget:
		return p.SetTargetAtTime(e.Value, e.Time, e.TimeConstant)
	case SetValueCurve:
		return p.SetValueCurveAtTime(e.Values, e.Time, e.Duration)
	case CancelScheduledValues:
		return p.CancelScheduledValues(e.Time)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, e.Kind)
	}
}
