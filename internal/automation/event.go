// Package automation records parameter-automation calls issued against an
// offline param and replays them, in call order, onto a native param once the
// graph has been rendered.
package automation

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnsupportedKind means the recorder and the replayer disagree on the
	// set of automation kinds. It is never recovered from.
	ErrUnsupportedKind = errors.New("unsupported automation kind")
	// ErrInvalidArgument is returned for out-of-range automation arguments.
	ErrInvalidArgument = errors.New("invalid automation argument")
)

// Kind enumerates the supported automation calls.
type Kind int

const (
	SetValue Kind = iota
	LinearRamp
	ExponentialRamp
	SetTarget
	SetValueCurve
	CancelScheduledValues
)

var kindNames = map[Kind]string{
	SetValue:              "set_value",
	LinearRamp:            "linear_ramp",
	ExponentialRamp:       "exponential_ramp",
	SetTarget:             "set_target",
	SetValueCurve:         "set_value_curve",
	CancelScheduledValues: "cancel_scheduled_values",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a patch-file event name to its Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedKind, name)
}

// Event is one recorded automation call. Which fields are meaningful depends on Kind:
//
//	SetValue              Value, Time
//	LinearRamp            Value, Time (end time)
//	ExponentialRamp       Value, Time (end time)
//	SetTarget             Value (target), Time (start), TimeConstant
//	SetValueCurve         Values, Time (start), Duration
//	CancelScheduledValues Time
type Event struct {
	Kind         Kind
	Value        float64
	Time         float64
	TimeConstant float64
	Values       []float64
	Duration     float64
}

// Validate checks the event's arguments against the rules of its kind.
func (e Event) Validate() error {
	if _, ok := kindNames[e.Kind]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, e.Kind)
	}
	if !validTime(e.Time) {
		return fmt.Errorf("%w: %s time must be finite and non-negative, got %v", ErrInvalidArgument, e.Kind, e.Time)
	}
	switch e.Kind {
	case SetValue, LinearRamp:
		if !isFinite(e.Value) {
			return fmt.Errorf("%w: %s value must be finite", ErrInvalidArgument, e.Kind)
		}
	case ExponentialRamp:
		if !isFinite(e.Value) || e.Value == 0 {
			return fmt.Errorf("%w: %s value must be finite and non-zero", ErrInvalidArgument, e.Kind)
		}
	case SetTarget:
		if !isFinite(e.Value) {
			return fmt.Errorf("%w: %s target must be finite", ErrInvalidArgument, e.Kind)
		}
		if !validTime(e.TimeConstant) {
			return fmt.Errorf("%w: %s time constant must be finite and non-negative", ErrInvalidArgument, e.Kind)
		}
	case SetValueCurve:
		if len(e.Values) < 2 {
			return fmt.Errorf("%w: %s needs at least two values, got %d", ErrInvalidArgument, e.Kind, len(e.Values))
		}
		for _, v := range e.Values {
			if !isFinite(v) {
				return fmt.Errorf("%w: %s values must be finite", ErrInvalidArgument, e.Kind)
			}
		}
		if !isFinite(e.Duration) || e.Duration <= 0 {
			return fmt.Errorf("%w: %s duration must be positive", ErrInvalidArgument, e.Kind)
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validTime(t float64) bool {
	return isFinite(t) && t >= 0
}
