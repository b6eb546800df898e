package gain

import (
	"github.com/specialistvlad/patchgraph/internal/audiocontext"
	"github.com/specialistvlad/patchgraph/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the gain node kind.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind(&registry.NodeKind{
		Name:    "gain",
		Inputs:  1,
		Outputs: 1,
		Params:  []audiocontext.ParamSpec{{Name: "gain"}},
	})
}
