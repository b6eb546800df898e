package patch

import (
	"context"
	"fmt"

	"github.com/specialistvlad/patchgraph/internal/automation"
	"github.com/specialistvlad/patchgraph/internal/ctxlog"
	"github.com/specialistvlad/patchgraph/internal/engine"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

func translateNode(ctx context.Context, file string, nb *nodeBlock) (*Node, error) {
	logger := ctxlog.FromContext(ctx)

	opts, err := translateOptions(nb.Options)
	if err != nil {
		return nil, fmt.Errorf("%s: node %q: options: %w", file, nb.Name, err)
	}
	n := &Node{
		Kind:    nb.Kind,
		Name:    nb.Name,
		Start:   nb.Start,
		Stop:    nb.Stop,
		Options: opts,
		File:    file,
	}
	if n.Stop != nil && n.Start == nil {
		return nil, fmt.Errorf("%s: node %q: stop without start", file, nb.Name)
	}

	seen := make(map[string]bool, len(nb.Automation))
	for _, ab := range nb.Automation {
		if seen[ab.Param] {
			return nil, fmt.Errorf("%s: node %q: %w: automation %q", file, nb.Name, ErrDuplicateBlock, ab.Param)
		}
		seen[ab.Param] = true
		a := &Automation{Param: ab.Param}
		for i, eb := range ab.Events {
			e, err := translateEvent(eb)
			if err != nil {
				return nil, fmt.Errorf("%s: node %q: automation %q: event %d: %w", file, nb.Name, ab.Param, i, err)
			}
			a.Events = append(a.Events, e)
		}
		n.Automation = append(n.Automation, a)
	}

	logger.Debug("Translated node block.", "kind", n.Kind, "name", n.Name, "options", len(n.Options), "automations", len(n.Automation))
	return n, nil
}

func translateEvent(eb *eventBlock) (automation.Event, error) {
	kind, err := automation.ParseKind(eb.Kind)
	if err != nil {
		return automation.Event{}, err
	}
	e := automation.Event{Kind: kind}

	required := map[automation.Kind][]string{
		automation.SetValue:              {"value", "time"},
		automation.LinearRamp:            {"value", "time"},
		automation.ExponentialRamp:       {"value", "time"},
		automation.SetTarget:             {"value", "time", "time_constant"},
		automation.SetValueCurve:         {"values", "time", "duration"},
		automation.CancelScheduledValues: {"time"},
	}
	fields := map[string]*float64{
		"value":         eb.Value,
		"time":          eb.Time,
		"time_constant": eb.TimeConstant,
		"duration":      eb.Duration,
	}
	for _, name := range required[kind] {
		if name == "values" {
			if eb.Values.IsNull() {
				return automation.Event{}, fmt.Errorf("%s: missing %q", kind, name)
			}
			continue
		}
		if fields[name] == nil {
			return automation.Event{}, fmt.Errorf("%s: missing %q", kind, name)
		}
	}

	e.Value = deref(eb.Value)
	e.Time = deref(eb.Time)
	e.TimeConstant = deref(eb.TimeConstant)
	e.Duration = deref(eb.Duration)
	if kind == automation.SetValueCurve {
		list, err := convert.Convert(eb.Values, cty.List(cty.Number))
		if err != nil {
			return automation.Event{}, fmt.Errorf("values: %w", err)
		}
		if err := gocty.FromCtyValue(list, &e.Values); err != nil {
			return automation.Event{}, fmt.Errorf("values: %w", err)
		}
	}
	if err := e.Validate(); err != nil {
		return automation.Event{}, err
	}
	return e, nil
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// translateOptions converts an options object into plain Go values.
func translateOptions(v cty.Value) (engine.Options, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.Type().IsObjectType() && !v.Type().IsMapType() {
		return nil, fmt.Errorf("must be an object, got %s", v.Type().FriendlyName())
	}
	raw, err := toGo(v)
	if err != nil {
		return nil, err
	}
	return engine.Options(raw.(map[string]any)), nil
}

// toGo converts a known cty value into float64, string, bool, []any or
// map[string]any.
func toGo(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("value is not known")
	}

	t := v.Type()
	switch {
	case t == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return f, nil
	case t == cty.String:
		return v.AsString(), nil
	case t == cty.Bool:
		return v.True(), nil
	case t.IsListType() || t.IsTupleType() || t.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			gv, err := toGo(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, gv)
		}
		return out, nil
	case t.IsMapType() || t.IsObjectType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			gv, err := toGo(ev)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = gv
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value type %s", t.FriendlyName())
}
