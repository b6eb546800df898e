package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/specialistvlad/patchgraph/internal/audiocontext"
	"github.com/specialistvlad/patchgraph/internal/engine"
	"github.com/zclconf/go-cty/cty"
)

// TailTimeOption is accepted by every kind and overrides the derived tail
// time, in seconds.
const TailTimeOption = "tail_time"

// SampleRateOption carries the context sample rate, in Hz, into kinds that
// declare it.
const SampleRateOption = "sample_rate"

var (
	ErrUnknownKind   = errors.New("unknown node kind")
	ErrInvalidOption = errors.New("invalid node option")
)

// Module is the interface that all node modules implement to be registered.
type Module interface {
	Register(r *Registry)
}

// NodeKind describes how nodes of one kind are built.
type NodeKind struct {
	Name    string
	Inputs  int
	Outputs int
	Origin  audiocontext.Origin
	Params  []audiocontext.ParamSpec
	// Options declares the accepted options and their types.
	Options map[string]cty.Type
	// Defaults are merged under the options given at creation.
	Defaults engine.Options
	// TailTime derives the tail time from the merged options. Nil means none.
	TailTime func(opts engine.Options) time.Duration
}

// Registry holds the registered node kinds of one application instance.
type Registry struct {
	kinds map[string]*NodeKind
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{kinds: make(map[string]*NodeKind)}
}

// RegisterKind adds a node kind.
func (r *Registry) RegisterKind(k *NodeKind) {
	if _, exists := r.kinds[k.Name]; exists {
		panic(fmt.Sprintf("node kind '%s' already registered", k.Name))
	}
	slog.Debug("Registering node kind.", "kind", k.Name)
	r.kinds[k.Name] = k
}

// Kind returns the registered kind with the given name.
func (r *Registry) Kind(name string) (*NodeKind, bool) {
	k, ok := r.kinds[name]
	return k, ok
}

// Accepts reports whether the kind declares option.
func (k *NodeKind) Accepts(option string) bool {
	_, ok := k.Options[option]
	return ok
}

// Kinds returns the registered kind names, sorted.
func (r *Registry) Kinds() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Spec builds the node spec for kind with the given options. Options are
// checked against the declared types and merged over the kind's defaults.
func (r *Registry) Spec(kind string, opts engine.Options) (audiocontext.NodeSpec, error) {
	k, ok := r.kinds[kind]
	if !ok {
		return audiocontext.NodeSpec{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	merged := make(engine.Options, len(k.Defaults)+len(opts))
	for key, v := range k.Defaults {
		merged[key] = v
	}
	for key, v := range opts {
		if err := k.checkOption(key, v); err != nil {
			return audiocontext.NodeSpec{}, err
		}
		merged[key] = v
	}

	spec := audiocontext.NodeSpec{
		Kind:    k.Name,
		Inputs:  k.Inputs,
		Outputs: k.Outputs,
		Origin:  k.Origin,
		Params:  slices.Clone(k.Params),
		Options: merged,
	}
	if k.TailTime != nil {
		spec.TailTime = k.TailTime(merged)
	}
	if _, ok := merged[TailTimeOption]; ok {
		spec.TailTime = Seconds(merged.Float(TailTimeOption, 0))
	}
	if spec.TailTime < 0 {
		return audiocontext.NodeSpec{}, fmt.Errorf("%w: %s: negative tail time", ErrInvalidOption, kind)
	}
	return spec, nil
}

// Seconds converts a duration in seconds to a time.Duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
