package oscillator

import (
	"github.com/specialistvlad/patchgraph/internal/audiocontext"
	"github.com/specialistvlad/patchgraph/internal/engine"
	"github.com/specialistvlad/patchgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the oscillator node kind. Oscillators produce output
// only between their scheduled start and stop.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind(&registry.NodeKind{
		Name:    "oscillator",
		Outputs: 1,
		Origin:  audiocontext.OriginScheduled,
		Params: []audiocontext.ParamSpec{
			{Name: "frequency"},
			{Name: "detune"},
		},
		Options:  map[string]cty.Type{"type": cty.String},
		Defaults: engine.Options{"type": "sine"},
	})
}
