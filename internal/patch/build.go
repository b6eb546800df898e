package patch

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/patchgraph/internal/audiocontext"
	"github.com/specialistvlad/patchgraph/internal/ctxlog"
	"github.com/specialistvlad/patchgraph/internal/engine"
	"github.com/specialistvlad/patchgraph/internal/registry"
)

var (
	ErrUnknownNode  = errors.New("unknown node")
	ErrUnknownParam = errors.New("unknown param")
)

// Graph maps the names of a patch to the nodes built for them.
type Graph struct {
	Context *audiocontext.Context
	nodes   map[string]*audiocontext.Node
	order   []string
}

// Node returns the node built for name. The reserved name resolves to the
// context's destination.
func (g *Graph) Node(name string) (*audiocontext.Node, bool) {
	if name == Destination {
		return g.Context.Destination(), true
	}
	n, ok := g.nodes[name]
	return n, ok
}

// Names returns the declared node names in declaration order.
func (g *Graph) Names() []string {
	return append([]string(nil), g.order...)
}

// Build creates the nodes of p in c, connects them, schedules automation and
// finally schedules the start and stop times of sources.
func Build(ctx context.Context, p *Patch, reg *registry.Registry, c *audiocontext.Context) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	g := &Graph{Context: c, nodes: make(map[string]*audiocontext.Node, len(p.Nodes))}

	for _, decl := range p.Nodes {
		spec, err := reg.Spec(decl.Kind, withSampleRate(reg, decl, p.SampleRate))
		if err != nil {
			return nil, fmt.Errorf("%s: node %q: %w", decl.File, decl.Name, err)
		}
		n, err := c.CreateNode(ctx, spec)
		if err != nil {
			return nil, fmt.Errorf("%s: node %q: %w", decl.File, decl.Name, err)
		}
		g.nodes[decl.Name] = n
		g.order = append(g.order, decl.Name)
		logger.Debug("Built node.", "name", decl.Name, "kind", decl.Kind, "handle", n.Handle())
	}

	for _, conn := range p.Connections {
		if err := g.connect(ctx, conn); err != nil {
			return nil, fmt.Errorf("%s: connect %s -> %s: %w", conn.File, conn.From, conn.To, err)
		}
	}

	for _, decl := range p.Nodes {
		n := g.nodes[decl.Name]
		for _, a := range decl.Automation {
			param, ok := n.Param(a.Param)
			if !ok {
				return nil, fmt.Errorf("%s: node %q: %w %q", decl.File, decl.Name, ErrUnknownParam, a.Param)
			}
			for _, e := range a.Events {
				if err := param.Schedule(e); err != nil {
					return nil, fmt.Errorf("%s: node %q: automation %q: %w", decl.File, decl.Name, a.Param, err)
				}
			}
		}
	}

	for _, decl := range p.Nodes {
		if decl.Start == nil {
			continue
		}
		n := g.nodes[decl.Name]
		if err := n.Start(*decl.Start); err != nil {
			return nil, fmt.Errorf("%s: node %q: %w", decl.File, decl.Name, err)
		}
		if decl.Stop != nil {
			if err := n.Stop(*decl.Stop); err != nil {
				return nil, fmt.Errorf("%s: node %q: %w", decl.File, decl.Name, err)
			}
		}
	}

	logger.Info("Patch built.", "nodes", len(g.nodes), "connections", len(p.Connections))
	return g, nil
}

func (g *Graph) connect(ctx context.Context, conn *Connection) error {
	src, ok := g.Node(conn.From.Node)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownNode, conn.From.Node)
	}
	dst, ok := g.Node(conn.To.Node)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownNode, conn.To.Node)
	}

	var (
		added bool
		err   error
	)
	if conn.To.IsParam() {
		param, ok := dst.Param(conn.To.Param)
		if !ok {
			return fmt.Errorf("%w %q", ErrUnknownParam, conn.To)
		}
		added, err = src.ConnectParam(param, conn.From.Port)
	} else {
		added, err = src.Connect(dst, conn.From.Port, conn.To.Port)
	}
	if err != nil {
		return err
	}
	if !added {
		ctxlog.FromContext(ctx).Warn("Duplicate connection ignored.", "from", conn.From, "to", conn.To, "file", conn.File)
	}
	return nil
}

// withSampleRate fills in the patch sample rate for kinds that take one.
func withSampleRate(reg *registry.Registry, decl *Node, rate float64) engine.Options {
	k, ok := reg.Kind(decl.Kind)
	if !ok || !k.Accepts(registry.SampleRateOption) {
		return decl.Options
	}
	if _, set := decl.Options[registry.SampleRateOption]; set {
		return decl.Options
	}
	opts := make(engine.Options, len(decl.Options)+1)
	for key, v := range decl.Options {
		opts[key] = v
	}
	opts[registry.SampleRateOption] = rate
	return opts
}
