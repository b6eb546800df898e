package constantsource

import (
	"github.com/specialistvlad/patchgraph/internal/audiocontext"
	"github.com/specialistvlad/patchgraph/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the constant source node kind.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind(&registry.NodeKind{
		Name:    "constant_source",
		Outputs: 1,
		Origin:  audiocontext.OriginScheduled,
		Params:  []audiocontext.ParamSpec{{Name: "offset"}},
	})
}
