package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/specialistvlad/patchgraph/internal/audiograph"
	"github.com/specialistvlad/patchgraph/internal/engine"
	"github.com/specialistvlad/patchgraph/internal/handle"
	"github.com/specialistvlad/patchgraph/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the name of the renderer's tracer.
const TracerName = "github.com/specialistvlad/patchgraph/internal/render"

var (
	// ErrParamMissing means a materialized native node lacks a param that
	// the abstract node declares.
	ErrParamMissing = errors.New("native node has no such param")
	// ErrNoRenderer means a node was registered without a renderer capability.
	ErrNoRenderer = errors.New("node has no renderer")
)

// Graph is the read-only view of a connection store the renderer walks. The
// caller must keep the graph from being mutated while a render is in flight.
type Graph interface {
	Node(h handle.Node) (*audiograph.NodeRecord, error)
	Param(h handle.Param) (*audiograph.ParamRecord, error)
	InCycle(h handle.Node) bool
}

// Renderer renders nodes of one graph into any number of target engines.
type Renderer struct {
	graph   Graph
	logger  *slog.Logger
	metrics *metrics.Registry
	tracer  trace.Tracer

	mu     sync.Mutex
	passes map[engine.Engine]*pass
}

// New creates a renderer over g. A nil logger logs to slog.Default(); a nil
// registry records no metrics.
func New(g Graph, logger *slog.Logger, m *metrics.Registry) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		graph:   g,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer(TracerName),
		passes:  make(map[engine.Engine]*pass),
	}
}

// Render materializes root and, transitively, every node feeding it through
// active edges into target. It returns the native node of root.
func (r *Renderer) Render(ctx context.Context, root handle.Node, target engine.Engine) (engine.NativeNode, error) {
	ctx, span := r.tracer.Start(ctx, "render.graph",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("render.root", root.String())),
	)
	defer span.End()

	start := time.Now()
	w := r.newWalk(target)
	native, err := w.node(ctx, root)
	err = w.finish(ctx, err)
	r.done(span, start, err)
	if err != nil {
		return nil, err
	}
	return native, nil
}

// RenderParamInputs replays the recorded automation of param onto native and
// renders and wires every active source feeding it. It runs at most once per
// param, native param and target; native must be comparable.
func (r *Renderer) RenderParamInputs(ctx context.Context, param handle.Param, target engine.Engine, native engine.NativeParam) error {
	ctx, span := r.tracer.Start(ctx, "render.param",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("render.param", param.String())),
	)
	defer span.End()

	start := time.Now()
	w := r.newWalk(target)
	err := w.finish(ctx, w.param(ctx, param, native))
	r.done(span, start, err)
	return err
}

func (r *Renderer) done(span trace.Span, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	r.metrics.RecordRender(status, time.Since(start))
}

func (r *Renderer) newWalk(target engine.Engine) *walk {
	r.mu.Lock()
	p, ok := r.passes[target]
	if !ok {
		p = newPass()
		r.passes[target] = p
	}
	r.mu.Unlock()
	return &walk{r: r, p: p, target: target}
}

// finish waits for every render started by the walk and wires the deferred
// edges. err is the result of the walk's own request.
func (w *walk) finish(ctx context.Context, err error) error {
	if werr := w.group.Wait(); err == nil {
		err = werr
	}
	if err != nil {
		return err
	}
	return w.wireDeferred(ctx)
}

// Materialized reports how many nodes have been materialized into target.
func (r *Renderer) Materialized(target engine.Engine) int {
	r.mu.Lock()
	p, ok := r.passes[target]
	r.mu.Unlock()
	if !ok {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.nodes {
		select {
		case <-e.materialized:
			if e.matErr == nil {
				n++
			}
		default:
		}
	}
	return n
}

func describeErr(h fmt.Stringer, kind string, err error) error {
	return fmt.Errorf("rendering %s (%s): %w", h, kind, err)
}
