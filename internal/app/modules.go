package app

import (
	"github.com/specialistvlad/patchgraph/internal/registry"
	"github.com/specialistvlad/patchgraph/modules/biquadfilter"
	"github.com/specialistvlad/patchgraph/modules/constantsource"
	"github.com/specialistvlad/patchgraph/modules/delay"
	"github.com/specialistvlad/patchgraph/modules/gain"
	"github.com/specialistvlad/patchgraph/modules/oscillator"
	"github.com/specialistvlad/patchgraph/modules/worklet"
)

// coreModules is the definitive list of all node kinds compiled into the
// patchgraph binary.
var coreModules = []registry.Module{
	&gain.Module{},
	&oscillator.Module{},
	&constantsource.Module{},
	&biquadfilter.Module{},
	&delay.Module{},
	&worklet.Module{},
}
