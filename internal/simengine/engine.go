package simengine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/specialistvlad/patchgraph/internal/engine"
)

var (
	// ErrNotConnected is returned when disconnecting a link that does not exist.
	ErrNotConnected = errors.New("native link does not exist")
	// ErrAlreadyRendered is returned by a second StartRendering call.
	ErrAlreadyRendered = errors.New("engine has already rendered")
)

// Link is one live native connection. Param is empty for node-to-node links.
type Link struct {
	From   string
	To     string
	Param  string
	Output int
	Input  int
}

func (l Link) String() string {
	if l.Param != "" {
		return fmt.Sprintf("%s:%d -> %s.%s", l.From, l.Output, l.To, l.Param)
	}
	return fmt.Sprintf("%s:%d -> %s:%d", l.From, l.Output, l.To, l.Input)
}

// Config configures an Engine.
type Config struct {
	SampleRate float64
	Frames     int
	// Params restricts the params a kind exposes. Kinds absent from the map
	// expose any param name on demand.
	Params map[string][]string
}

// Engine is an in-memory engine.Engine and engine.OfflineEngine.
type Engine struct {
	mu       sync.Mutex
	cfg      Config
	nodes    []*Node
	links    map[Link]struct{}
	calls    []string
	failures map[string]error
	rendered bool
	dest     *Node
}

// New creates an empty engine with its destination node already present.
func New(cfg Config) *Engine {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 44100
	}
	e := &Engine{
		cfg:      cfg,
		links:    make(map[Link]struct{}),
		failures: make(map[string]error),
	}
	e.dest = e.newNodeLocked("destination", nil)
	return e
}

// FailCreate makes every later CreateNode call for kind return err.
func (e *Engine) FailCreate(kind string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures[kind] = err
}

// CreateNode implements engine.Engine.
func (e *Engine) CreateNode(ctx context.Context, kind string, opts engine.Options) (engine.NativeNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err, ok := e.failures[kind]; ok {
		return nil, err
	}
	return e.newNodeLocked(kind, opts), nil
}

// Destination implements engine.Engine.
func (e *Engine) Destination() engine.NativeNode {
	return e.dest
}

// StartRendering implements engine.OfflineEngine.
func (e *Engine) StartRendering(ctx context.Context) (engine.RenderResult, error) {
	if err := ctx.Err(); err != nil {
		return engine.RenderResult{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rendered {
		return engine.RenderResult{}, ErrAlreadyRendered
	}
	e.rendered = true
	e.calls = append(e.calls, "render")
	return engine.RenderResult{
		Frames:     e.cfg.Frames,
		SampleRate: e.cfg.SampleRate,
		Nodes:      len(e.nodes),
		Links:      len(e.links),
	}, nil
}

// Nodes returns every node created so far, destination first.
func (e *Engine) Nodes() []*Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Node, len(e.nodes))
	copy(out, e.nodes)
	return out
}

// CreatedCount returns how many nodes of kind were created.
func (e *Engine) CreatedCount(kind string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, node := range e.nodes {
		if node.kind == kind {
			n++
		}
	}
	return n
}

// Links returns the live links, sorted.
func (e *Engine) Links() []Link {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Link, 0, len(e.links))
	for l := range e.links {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// HasLink reports whether l is currently live.
func (e *Engine) HasLink(l Link) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.links[l]
	return ok
}

// Calls returns the transcript of every call made against the engine.
func (e *Engine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.calls))
	copy(out, e.calls)
	return out
}

func (e *Engine) newNodeLocked(kind string, opts engine.Options) *Node {
	n := &Node{
		eng:    e,
		kind:   kind,
		label:  fmt.Sprintf("%s#%d", kind, len(e.nodes)),
		opts:   opts,
		params: make(map[string]*Param),
	}
	if names, ok := e.cfg.Params[kind]; ok {
		n.strict = true
		for _, name := range names {
			n.params[name] = &Param{node: n, name: name}
		}
	}
	e.nodes = append(e.nodes, n)
	e.calls = append(e.calls, "create "+n.label)
	return n
}

func (e *Engine) record(format string, args ...any) {
	e.calls = append(e.calls, fmt.Sprintf(format, args...))
}
