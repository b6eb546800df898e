package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/patchgraph/internal/audiograph"
	"github.com/specialistvlad/patchgraph/internal/engine"
	"github.com/specialistvlad/patchgraph/internal/handle"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// walk is one Render or RenderParamInputs call. group tracks the background
// renders of cyclic sources started by the call.
type walk struct {
	r      *Renderer
	p      *pass
	target engine.Engine
	group  errgroup.Group
}

// input is one active edge into a node port or a param.
type input struct {
	source handle.Node
	output int
	port   int
	param  engine.NativeParam
}

// node returns the fully rendered native node of h.
func (w *walk) node(ctx context.Context, h handle.Node) (engine.NativeNode, error) {
	e, created := w.p.nodeEntry(h)
	if created {
		w.run(ctx, h, e)
	} else {
		w.r.logger.Debug("Render memo hit.", "node", h)
	}
	<-e.done
	return e.native, e.err
}

// materialized returns the native node of h as soon as it exists. The rest of
// h's render continues in the background.
func (w *walk) materialized(ctx context.Context, h handle.Node) (engine.NativeNode, error) {
	e, created := w.p.nodeEntry(h)
	if created {
		w.group.Go(func() error {
			w.run(ctx, h, e)
			return e.err
		})
	}
	<-e.materialized
	return e.native, e.matErr
}

func (w *walk) run(ctx context.Context, h handle.Node, e *entry) {
	defer close(e.done)

	rec, err := w.r.graph.Node(h)
	if err != nil {
		e.matErr, e.err = err, err
		close(e.materialized)
		return
	}

	ctx, span := w.r.tracer.Start(ctx, "render.node",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("render.node", h.String()),
			attribute.String("render.kind", rec.Kind),
		),
	)
	defer span.End()

	native, err := materialize(ctx, rec, w.target)
	if err != nil {
		err = describeErr(h, rec.Kind, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	e.native, e.matErr = native, err
	close(e.materialized)
	if err != nil {
		e.err = err
		return
	}
	w.r.metrics.RecordRenderedNode()
	w.r.logger.Debug("Materialized node.", "node", h, "kind", rec.Kind)

	if err := w.inputs(ctx, h, rec, native); err != nil {
		err = describeErr(h, rec.Kind, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.err = err
	}
}

func materialize(ctx context.Context, rec *audiograph.NodeRecord, target engine.Engine) (engine.NativeNode, error) {
	if rec.Renderer == nil {
		return nil, ErrNoRenderer
	}
	native, err := rec.Renderer.Materialize(ctx, target)
	if err != nil {
		return nil, err
	}
	if native == nil {
		return nil, fmt.Errorf("renderer returned no native node")
	}
	return native, nil
}

// inputs renders every param of h and every active input of its ports in
// parallel, then wires the node inputs.
func (w *walk) inputs(ctx context.Context, h handle.Node, rec *audiograph.NodeRecord, native engine.NativeNode) error {
	var g errgroup.Group

	for _, ph := range rec.Params {
		prec, err := w.r.graph.Param(ph)
		if err != nil {
			return err
		}
		np, ok := native.Param(prec.Name)
		if !ok {
			return fmt.Errorf("%q: %w", prec.Name, ErrParamMissing)
		}
		g.Go(func() error {
			return w.param(ctx, ph, np)
		})
	}

	var ins []input
	for port, set := range rec.ActiveInputs {
		for _, in := range set {
			ins = append(ins, input{source: in.Source, output: in.Output, port: port})
		}
	}
	links, err := w.resolve(ctx, &g, ins, native)
	if werr := g.Wait(); err == nil {
		err = werr
	}
	if err != nil {
		return err
	}
	return wireAll(links)
}

// param replays the automation of h onto np, then renders and wires its
// active inputs. It runs once per param and native param per target.
func (w *walk) param(ctx context.Context, h handle.Param, np engine.NativeParam) error {
	e, created := w.p.paramEntry(h, np)
	if !created {
		<-e.done
		return e.err
	}
	defer close(e.done)

	e.err = w.renderParam(ctx, h, np)
	return e.err
}

func (w *walk) renderParam(ctx context.Context, h handle.Param, np engine.NativeParam) error {
	prec, err := w.r.graph.Param(h)
	if err != nil {
		return err
	}
	if prec.Automation != nil {
		n, err := prec.Automation.Replay(np)
		w.r.metrics.RecordAutomationReplay(n)
		if err != nil {
			return fmt.Errorf("param %q: %w", prec.Name, err)
		}
	}

	ins := make([]input, 0, len(prec.ActiveInputs))
	for _, in := range prec.ActiveInputs {
		ins = append(ins, input{source: in.Source, output: in.Output, param: np})
	}
	var g errgroup.Group
	links, err := w.resolve(ctx, &g, ins, nil)
	if werr := g.Wait(); err == nil {
		err = werr
	}
	if err != nil {
		return fmt.Errorf("param %q: %w", prec.Name, err)
	}
	return wireAll(links)
}

// resolve renders the sources of ins on g. Links from acyclic sources are
// returned for the caller to wire once g is done; links from cyclic sources
// are deferred to the second phase.
func (w *walk) resolve(ctx context.Context, g *errgroup.Group, ins []input, dst engine.NativeNode) ([]link, error) {
	links := make([]link, len(ins))
	cyclic := make([]bool, len(ins))
	for i, in := range ins {
		cyclic[i] = w.r.graph.InCycle(in.source)
		g.Go(func() error {
			var (
				src engine.NativeNode
				err error
			)
			if cyclic[i] {
				src, err = w.materialized(ctx, in.source)
			} else {
				src, err = w.node(ctx, in.source)
			}
			if err != nil {
				return err
			}
			links[i] = link{src: src, dst: dst, param: in.param, output: in.output, input: in.port}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var direct, later []link
	for i, l := range links {
		if cyclic[i] {
			later = append(later, l)
		} else {
			direct = append(direct, l)
		}
	}
	w.p.deferLinks(later)
	return direct, nil
}

func wireAll(links []link) error {
	var errs []error
	for _, l := range links {
		if err := l.wire(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *walk) wireDeferred(ctx context.Context) error {
	links := w.p.takeDeferred()
	if len(links) > 0 {
		w.r.logger.DebugContext(ctx, "Wiring deferred cyclic edges.", "count", len(links))
	}
	return wireAll(links)
}
