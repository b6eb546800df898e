package audiocontext

import (
	"context"
	"errors"

	"github.com/specialistvlad/patchgraph/internal/audiograph"
	"github.com/specialistvlad/patchgraph/internal/handle"
)

// Close tears the context down. Active inputs are disconnected post-order,
// sources before the edges they feed, starting at the destination. Pending
// tail-time checks are cancelled and every record is released; handles of
// this context stop resolving afterwards.
func (c *Context) Close(ctx context.Context) error {
	return c.mutate(func() error {
		if c.closed {
			return nil
		}
		var errs []error
		visited := make(map[handle.Node]bool)

		var visit func(h handle.Node)
		visit = func(h handle.Node) {
			if visited[h] {
				return
			}
			visited[h] = true
			rec, err := c.store.Node(h)
			if err != nil {
				errs = append(errs, err)
				return
			}
			for input, port := range rec.ActiveInputs {
				for _, in := range append([]audiograph.ActiveInput(nil), port...) {
					visit(in.Source)
					errs = append(errs, c.unwire(in.Source, audiograph.Edge{Dest: h, Output: in.Output, Input: input}))
				}
			}
			for _, ph := range rec.Params {
				prec, err := c.store.Param(ph)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				for _, in := range append([]audiograph.ActiveInput(nil), prec.ActiveInputs...) {
					visit(in.Source)
					errs = append(errs, c.unwire(in.Source, audiograph.Edge{Param: ph, Output: in.Output}))
				}
			}
		}

		visit(c.dest.h)
		for _, h := range c.store.Nodes() {
			visit(h)
		}
		for w := range c.wired {
			errs = append(errs, c.unwire(w.src, w.edge))
		}
		for h := range c.timers {
			c.cancelCheck(h)
		}

		for _, h := range c.store.Nodes() {
			if _, err := c.store.RemoveNode(h); err != nil {
				errs = append(errs, err)
			}
		}
		// Releases whatever a failed removal left behind.
		c.store.Reset()
		c.cycles.Reset()
		clear(c.nodes)
		clear(c.schedules)
		c.queue = nil
		c.closed = true

		err := errors.Join(errs...)
		c.logger.InfoContext(ctx, "Audio context closed.", "error", err)
		return err
	})
}

// Closed reports whether Close has been called.
func (c *Context) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}
