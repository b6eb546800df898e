package biquadfilter

import (
	"math"
	"math/cmplx"
	"time"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
	"github.com/specialistvlad/patchgraph/internal/audiocontext"
	"github.com/specialistvlad/patchgraph/internal/engine"
	"github.com/specialistvlad/patchgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// decay60 is ln(1000), the number of time constants for a 60 dB decay.
var decay60 = math.Log(1000)

// Coefficients designs the section described by opts. Types without a
// resonant design fall back to lowpass.
func Coefficients(opts engine.Options) biquad.Coefficients {
	f := opts.Float("frequency", 350)
	q := opts.Float("q", 1)
	rate := opts.Float(registry.SampleRateOption, 44100)
	switch opts.String("type", "lowpass") {
	case "highpass":
		return design.Highpass(f, q, rate)
	case "bandpass":
		return design.Bandpass(f, q, rate)
	case "notch":
		return design.Notch(f, q, rate)
	case "allpass":
		return design.Allpass(f, q, rate)
	default:
		return design.Lowpass(f, q, rate)
	}
}

// TailTime is the time the designed section takes to decay by 60 dB once
// its input goes silent, taken from its slowest pole. Sections that do not
// decay report zero.
func TailTime(opts engine.Options) time.Duration {
	c := Coefficients(opts)
	var radius float64
	for _, p := range c.Poles() {
		radius = max(radius, cmplx.Abs(p))
	}
	if radius <= 0 || radius >= 1 {
		return 0
	}
	rate := opts.Float(registry.SampleRateOption, 44100)
	samples := decay60 / -math.Log(radius)
	return registry.Seconds(samples / rate)
}

// Register registers the biquad filter node kind.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind(&registry.NodeKind{
		Name:    "biquad_filter",
		Inputs:  1,
		Outputs: 1,
		Params: []audiocontext.ParamSpec{
			{Name: "frequency"},
			{Name: "Q"},
			{Name: "gain"},
			{Name: "detune"},
		},
		Options: map[string]cty.Type{
			"type":                    cty.String,
			"frequency":               cty.Number,
			"q":                       cty.Number,
			registry.SampleRateOption: cty.Number,
		},
		Defaults: engine.Options{"type": "lowpass"},
		TailTime: TailTime,
	})
}
