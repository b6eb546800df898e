package audiocontext

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/patchgraph/internal/audiograph"
	"github.com/specialistvlad/patchgraph/internal/cycle"
	"github.com/specialistvlad/patchgraph/internal/handle"
)

// Connect adds the edge n[output] -> dst[input]. It returns false, and
// changes nothing, when the identical edge already exists.
func (n *Node) Connect(dst *Node, output, input int) (bool, error) {
	if dst == nil || dst.ctx != n.ctx {
		return false, fmt.Errorf("connect %s: %w", n, ErrForeignContext)
	}
	return n.ctx.connectEdge(n.h, audiograph.Edge{Dest: dst.h, Output: output, Input: input})
}

// ConnectParam adds the edge n[output] -> p.
func (n *Node) ConnectParam(p *Param, output int) (bool, error) {
	if p == nil || p.node.ctx != n.ctx {
		return false, fmt.Errorf("connect %s: %w", n, ErrForeignContext)
	}
	return n.ctx.connectEdge(n.h, audiograph.Edge{Param: p.h, Output: output})
}

// Disconnect removes the edge n[output] -> dst[input].
func (n *Node) Disconnect(dst *Node, output, input int) error {
	if dst == nil || dst.ctx != n.ctx {
		return fmt.Errorf("disconnect %s: %w", n, ErrForeignContext)
	}
	return n.ctx.disconnectEdges(n.h, func(*audiograph.NodeRecord) ([]audiograph.Edge, error) {
		return []audiograph.Edge{{Dest: dst.h, Output: output, Input: input}}, nil
	})
}

// DisconnectParam removes the edge n[output] -> p.
func (n *Node) DisconnectParam(p *Param, output int) error {
	if p == nil || p.node.ctx != n.ctx {
		return fmt.Errorf("disconnect %s: %w", n, ErrForeignContext)
	}
	return n.ctx.disconnectEdges(n.h, func(*audiograph.NodeRecord) ([]audiograph.Edge, error) {
		return []audiograph.Edge{{Param: p.h, Output: output}}, nil
	})
}

// DisconnectOutput removes every edge leaving output. An edge the native
// engine fails to disconnect stays connected; the others are still removed
// and the failures are joined.
func (n *Node) DisconnectOutput(output int) error {
	return n.ctx.disconnectEdges(n.h, func(rec *audiograph.NodeRecord) ([]audiograph.Edge, error) {
		if output < 0 || output >= rec.NumOutputs {
			return nil, fmt.Errorf("output %d of %d: %w", output, rec.NumOutputs, ErrIndexSize)
		}
		var edges []audiograph.Edge
		for _, e := range rec.Outputs {
			if e.Output == output {
				edges = append(edges, e)
			}
		}
		return edges, nil
	})
}

// DisconnectAll removes every edge leaving n, with the failure handling of
// DisconnectOutput.
func (n *Node) DisconnectAll() error {
	return n.ctx.disconnectEdges(n.h, func(rec *audiograph.NodeRecord) ([]audiograph.Edge, error) {
		return append([]audiograph.Edge(nil), rec.Outputs...), nil
	})
}

// IsActiveEdge reports whether src[output] -> dst[input] is active.
func (c *Context) IsActiveEdge(src, dst *Node, output, input int) (bool, error) {
	if src.ctx != c || dst.ctx != c {
		return false, ErrForeignContext
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.IsActiveEdge(src.h, audiograph.Edge{Dest: dst.h, Output: output, Input: input})
}

// IsActiveParamEdge reports whether src[output] -> p is active.
func (c *Context) IsActiveParamEdge(src *Node, p *Param, output int) (bool, error) {
	if src.ctx != c || p.node.ctx != c {
		return false, ErrForeignContext
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.IsActiveEdge(src.h, audiograph.Edge{Param: p.h, Output: output})
}

// WouldCreateCycle reports whether an edge src -> dst would close a cycle.
func (c *Context) WouldCreateCycle(src, dst *Node) (bool, error) {
	if src.ctx != c || dst.ctx != c {
		return false, ErrForeignContext
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cycle.WouldCreateCycle(c.store, src.h, dst.h)
}

func (c *Context) connectEdge(src handle.Node, e audiograph.Edge) (bool, error) {
	var added bool
	err := c.mutate(func() error {
		var err error
		added, err = c.connect(src, e)
		return err
	})
	status := "ok"
	switch {
	case err != nil:
		status = "error"
	case !added:
		status = "duplicate"
	}
	c.metrics.RecordConnection("connect", status)
	return added, err
}

func (c *Context) connect(src handle.Node, e audiograph.Edge) (bool, error) {
	if c.closed {
		return false, ErrContextClosed
	}
	from, err := c.store.Node(src)
	if err != nil {
		return false, err
	}
	to, err := c.store.DestinationNode(e)
	if err != nil {
		return false, err
	}
	if c.store.HasEdge(src, e) {
		c.logger.Debug("Ignoring duplicate connect.", "source", src, "edge", e)
		return false, nil
	}

	adjacency, err := c.store.Adjacency(src, to)
	if err != nil {
		return false, err
	}
	var cycles [][]handle.Node
	if adjacency == 0 {
		if cycles, err = cycle.Find(c.store, src, to); err != nil {
			return false, err
		}
	}

	if _, err := c.store.AddEdge(src, e, from.Active); err != nil {
		return false, err
	}
	entered := c.cycles.Mark(cycles)

	// A new cycle always runs through src, so the new edge itself is never
	// mirrored while nodes enter a cycle.
	if len(entered) > 0 {
		c.logger.Debug("Nodes entered a cycle.", "nodes", entered)
		var errs []error
		for _, h := range entered {
			errs = append(errs, c.syncOutputs(h))
		}
		if err := errors.Join(errs...); err != nil {
			return false, c.undoConnect(src, e, cycles, entered, err)
		}
	} else if err := c.sync(src, e); err != nil {
		return false, c.undoConnect(src, e, cycles, nil, err)
	}

	c.logger.Debug("Connected.", "source", src, "edge", e, "active", from.Active)
	var errs []error
	if from.Active && !e.ToParam() {
		c.activateFromInput(to)
		errs = append(errs, c.drain())
	}
	return true, errors.Join(errs...)
}

// undoConnect removes a just added edge after its native wiring failed and
// re-mirrors the outputs of nodes that had entered a cycle through it.
func (c *Context) undoConnect(src handle.Node, e audiograph.Edge, cycles [][]handle.Node, entered []handle.Node, cause error) error {
	_, rerr := c.store.RemoveEdge(src, e)
	_, uerr := c.cycles.Unmark(cycles)
	errs := []error{cause, rerr, uerr}
	for _, h := range entered {
		errs = append(errs, c.syncOutputs(h))
	}
	c.logger.Debug("Connect rolled back.", "source", src, "edge", e, "error", cause)
	return errors.Join(errs...)
}

func (c *Context) disconnectEdges(src handle.Node, pick func(*audiograph.NodeRecord) ([]audiograph.Edge, error)) error {
	err := c.mutate(func() error {
		if c.closed {
			return ErrContextClosed
		}
		from, err := c.store.Node(src)
		if err != nil {
			return err
		}
		edges, err := pick(from)
		if err != nil {
			return err
		}
		var errs []error
		for _, e := range edges {
			if err := c.disconnect(src, e); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordConnection("disconnect", status)
	return err
}

func (c *Context) disconnect(src handle.Node, e audiograph.Edge) error {
	if _, err := c.store.IsActiveEdge(src, e); err != nil {
		return err
	}
	if err := c.unwire(src, e); err != nil {
		return err
	}
	wasActive, err := c.store.RemoveEdge(src, e)
	if err != nil {
		return err
	}
	to, err := c.store.DestinationNode(e)
	if err != nil {
		return err
	}

	var errs []error
	adjacency, err := c.store.Adjacency(src, to)
	if err != nil {
		return err
	}
	if adjacency == 0 {
		errs = append(errs, c.leaveCycles(src, to))
	}

	c.logger.Debug("Disconnected.", "source", src, "edge", e, "active", wasActive)
	if wasActive && !e.ToParam() {
		c.checkPassive(to)
		errs = append(errs, c.drain())
	}
	return errors.Join(errs...)
}
