package worklet

import (
	"github.com/specialistvlad/patchgraph/internal/audiocontext"
	"github.com/specialistvlad/patchgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the worklet node kind. Worklets run user processors
// that may produce output without input, so they stay active until
// deactivated explicitly.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind(&registry.NodeKind{
		Name:    "worklet",
		Inputs:  1,
		Outputs: 1,
		Origin:  audiocontext.OriginPersistent,
		Options: map[string]cty.Type{
			"processor":  cty.String,
			"parameters": cty.DynamicPseudoType,
		},
	})
}
