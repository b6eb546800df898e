package patch

import (
	"github.com/specialistvlad/patchgraph/internal/automation"
	"github.com/specialistvlad/patchgraph/internal/engine"
)

// Defaults for the context block.
const (
	DefaultSampleRate = 44100
	DefaultLength     = 44100
)

// Patch is the format-agnostic result of loading one or more patch files.
type Patch struct {
	SampleRate  float64
	Length      int
	Nodes       []*Node
	Connections []*Connection
}

// Node declares one node.
type Node struct {
	Kind       string
	Name       string
	Start      *float64
	Stop       *float64
	Options    engine.Options
	Automation []*Automation
	File       string
}

// Automation is the event list scheduled on one param of a node.
type Automation struct {
	Param  string
	Events []automation.Event
}

// Connection declares one edge.
type Connection struct {
	From Address
	To   Address
	File string
}

// Node returns the declared node with the given name.
func (p *Patch) Node(name string) (*Node, bool) {
	for _, n := range p.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}
