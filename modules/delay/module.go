package delay

import (
	"time"

	"github.com/specialistvlad/patchgraph/internal/audiocontext"
	"github.com/specialistvlad/patchgraph/internal/engine"
	"github.com/specialistvlad/patchgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the delay node kind. A delay keeps producing output
// for up to its maximum delay time after its inputs go silent.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind(&registry.NodeKind{
		Name:     "delay",
		Inputs:   1,
		Outputs:  1,
		Params:   []audiocontext.ParamSpec{{Name: "delayTime"}},
		Options:  map[string]cty.Type{"max_delay_time": cty.Number},
		Defaults: engine.Options{"max_delay_time": 1.0},
		TailTime: func(opts engine.Options) time.Duration {
			return registry.Seconds(opts.Float("max_delay_time", 1))
		},
	})
}
