package patch

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// fileRoot decodes all top-level blocks of one file.
type fileRoot struct {
	Context  *contextBlock   `hcl:"context,block"`
	Nodes    []*nodeBlock    `hcl:"node,block"`
	Connects []*connectBlock `hcl:"connect,block"`
	Remain   hcl.Body        `hcl:",remain"`
}

type contextBlock struct {
	SampleRate *float64 `hcl:"sample_rate,optional"`
	Length     *int     `hcl:"length,optional"`
}

type nodeBlock struct {
	Kind       string             `hcl:"kind,label"`
	Name       string             `hcl:"name,label"`
	Start      *float64           `hcl:"start,optional"`
	Stop       *float64           `hcl:"stop,optional"`
	Options    cty.Value          `hcl:"options,optional"`
	Automation []*automationBlock `hcl:"automation,block"`
}

type automationBlock struct {
	Param  string        `hcl:"param,label"`
	Events []*eventBlock `hcl:"event,block"`
}

type eventBlock struct {
	Kind         string    `hcl:"kind,label"`
	Value        *float64  `hcl:"value,optional"`
	Time         *float64  `hcl:"time,optional"`
	TimeConstant *float64  `hcl:"time_constant,optional"`
	Duration     *float64  `hcl:"duration,optional"`
	Values       cty.Value `hcl:"values,optional"`
}

type connectBlock struct {
	From string `hcl:"from"`
	To   string `hcl:"to"`
}
