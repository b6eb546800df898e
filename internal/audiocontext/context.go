package audiocontext

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/specialistvlad/patchgraph/internal/audiograph"
	"github.com/specialistvlad/patchgraph/internal/cycle"
	"github.com/specialistvlad/patchgraph/internal/engine"
	"github.com/specialistvlad/patchgraph/internal/handle"
	"github.com/specialistvlad/patchgraph/internal/metrics"
	"github.com/specialistvlad/patchgraph/internal/render"
)

// Options configures a Context.
type Options struct {
	// Offline selects an offline context. Real-time contexts need Engine.
	Offline bool
	// Engine is the native engine edges are mirrored into.
	Engine engine.Engine
	// Clock drives tail-time checks. Defaults to the wall clock.
	Clock   Clock
	Logger  *slog.Logger
	Metrics *metrics.Registry
}

// StateChange reports one node transition.
type StateChange struct {
	ContextID uuid.UUID
	Node      handle.Node
	Kind      string
	Active    bool
}

// Watcher observes state changes.
type Watcher func(StateChange)

type watcherEntry struct {
	id int
	fn Watcher
}

// wire is an edge currently connected in the native engine.
type wire struct {
	src  handle.Node
	edge audiograph.Edge
}

type pendingCheck struct {
	timer Timer
}

// schedule holds the lifecycle of a scheduled source.
type schedule struct {
	start *float64
	stop  *float64
	ended bool
}

// Context is one audio routing graph.
type Context struct {
	id      uuid.UUID
	offline bool
	native  engine.Engine
	clock   Clock
	logger  *slog.Logger
	metrics *metrics.Registry

	mu        sync.RWMutex
	store     *audiograph.Store
	cycles    *cycle.Counters
	nodes     map[handle.Node]*Node
	wired     map[wire]struct{}
	timers    map[handle.Node]*pendingCheck
	schedules map[handle.Node]*schedule
	watchers  []watcherEntry
	watcherID int
	queue     []transition
	changes   []StateChange
	closed    bool

	dest     *Node
	renderer *render.Renderer
}

// New creates a context and its destination node.
func New(opts Options) (*Context, error) {
	if !opts.Offline && opts.Engine == nil {
		return nil, fmt.Errorf("real-time context needs a native engine: %w", ErrInvalidSpec)
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	id := uuid.New()
	c := &Context{
		id:        id,
		offline:   opts.Offline,
		native:    opts.Engine,
		clock:     opts.Clock,
		logger:    opts.Logger.With("context_id", id.String()),
		metrics:   opts.Metrics,
		store:     audiograph.New(),
		cycles:    cycle.NewCounters(),
		nodes:     make(map[handle.Node]*Node),
		wired:     make(map[wire]struct{}),
		timers:    make(map[handle.Node]*pendingCheck),
		schedules: make(map[handle.Node]*schedule),
	}
	c.renderer = render.New(graphView{c}, c.logger, c.metrics)

	init := audiograph.NodeInit{Kind: "destination", Inputs: 1}
	if c.offline {
		init.Renderer = engine.NodeRendererFunc(func(_ context.Context, target engine.Engine) (engine.NativeNode, error) {
			return target.Destination(), nil
		})
	} else {
		init.Native = c.native.Destination()
	}
	h := c.store.AddNode(init)
	c.dest = &Node{ctx: c, h: h, kind: init.Kind, params: map[string]*Param{}}
	c.nodes[h] = c.dest

	c.logger.Debug("Audio context created.", "offline", c.offline)
	return c, nil
}

// ID returns the context's unique id.
func (c *Context) ID() uuid.UUID { return c.id }

// IsOffline reports whether the context renders offline.
func (c *Context) IsOffline() bool { return c.offline }

// Destination returns the context's final sink.
func (c *Context) Destination() *Node { return c.dest }

// Watch registers fn for every later state change and returns a function
// that unregisters it.
func (c *Context) Watch(fn Watcher) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watcherID++
	id := c.watcherID
	c.watchers = append(c.watchers, watcherEntry{id: id, fn: fn})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, w := range c.watchers {
			if w.id == id {
				c.watchers = append(c.watchers[:i:i], c.watchers[i+1:]...)
				return
			}
		}
	}
}

// Nodes returns every live node proxy, destination first.
func (c *Context) Nodes() []*Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Node, 0, len(c.nodes))
	for _, h := range c.store.Nodes() {
		if n, ok := c.nodes[h]; ok {
			out = append(out, n)
		}
	}
	return out
}

// mutate runs fn under the write lock, then delivers the state changes fn
// produced to the watchers.
func (c *Context) mutate(fn func() error) error {
	c.mu.Lock()
	err := fn()
	changes := c.changes
	c.changes = nil
	var watchers []Watcher
	if len(changes) > 0 {
		watchers = make([]Watcher, len(c.watchers))
		for i, w := range c.watchers {
			watchers[i] = w.fn
		}
	}
	c.updateGauges()
	c.mu.Unlock()

	for _, change := range changes {
		for _, w := range watchers {
			w(change)
		}
	}
	return err
}

func (c *Context) updateGauges() {
	if c.metrics == nil {
		return
	}
	activeEdges, passiveEdges := c.store.EdgeCounts()
	activeNodes := 0
	for _, h := range c.store.Nodes() {
		if rec, err := c.store.Node(h); err == nil && rec.Active {
			activeNodes++
		}
	}
	c.metrics.UpdateGraphMetrics(activeEdges, passiveEdges, activeNodes, c.cycles.Len())
}

// graphView exposes the store to the renderer. Render holds the read lock.
type graphView struct{ c *Context }

func (g graphView) Node(h handle.Node) (*audiograph.NodeRecord, error) { return g.c.store.Node(h) }

func (g graphView) Param(h handle.Param) (*audiograph.ParamRecord, error) {
	return g.c.store.Param(h)
}

func (g graphView) InCycle(h handle.Node) bool { return g.c.cycles.InCycle(h) }
