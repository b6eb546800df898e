package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/patchgraph/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Validate checks every registered kind for consistency: port counts, param
// names, and that the defaults match the declared option types.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range r.Kinds() {
		k := r.kinds[name]
		if k.Inputs < 0 || k.Outputs < 0 {
			errs = append(errs, fmt.Sprintf("kind '%s': negative port count", name))
		}
		if k.Inputs == 0 && k.Outputs == 0 {
			errs = append(errs, fmt.Sprintf("kind '%s': has no ports", name))
		}

		seen := make(map[string]bool, len(k.Params))
		for _, p := range k.Params {
			if p.Name == "" {
				errs = append(errs, fmt.Sprintf("kind '%s': unnamed param", name))
				continue
			}
			if seen[p.Name] {
				errs = append(errs, fmt.Sprintf("kind '%s': param '%s' declared twice", name, p.Name))
			}
			seen[p.Name] = true
		}

		for opt, t := range k.Options {
			if opt == TailTimeOption {
				errs = append(errs, fmt.Sprintf("kind '%s': option '%s' is reserved", name, opt))
			}
			if t.Equals(cty.DynamicPseudoType) {
				logger.Warn("Node kind has an option with 'type = any', which disables type checking.", "kind", name, "option", opt)
			}
		}
		for opt, v := range k.Defaults {
			if err := k.checkOption(opt, v); err != nil {
				errs = append(errs, fmt.Sprintf("kind '%s': default: %v", name, err))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// checkOption verifies that v is acceptable for option key.
func (k *NodeKind) checkOption(key string, v any) error {
	t, ok := k.Options[key]
	if key == TailTimeOption {
		t, ok = cty.Number, true
	}
	if !ok {
		return fmt.Errorf("%w: %s does not accept option '%s'", ErrInvalidOption, k.Name, key)
	}
	if t.Equals(cty.DynamicPseudoType) {
		return nil
	}
	if _, err := gocty.ToCtyValue(v, t); err != nil {
		return fmt.Errorf("%w: %s option '%s' must be %s: %v", ErrInvalidOption, k.Name, key, t.FriendlyName(), err)
	}
	return nil
}
