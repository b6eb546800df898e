package audiocontext

import (
	"errors"

	"github.com/specialistvlad/patchgraph/internal/audiograph"
	"github.com/specialistvlad/patchgraph/internal/cycle"
	"github.com/specialistvlad/patchgraph/internal/handle"
)

// leaveCycles unmarks the cycles that ran through the last adjacency
// src -> to and re-mirrors the outputs of nodes that left every cycle.
func (c *Context) leaveCycles(src, to handle.Node) error {
	cycles, err := cycle.Find(c.store, src, to)
	if err != nil {
		return err
	}
	left, err := c.cycles.Unmark(cycles)
	if err != nil {
		return err
	}
	if len(left) == 0 {
		return nil
	}
	c.logger.Debug("Nodes left a cycle.", "nodes", left)
	var errs []error
	for _, h := range left {
		errs = append(errs, c.syncOutputs(h))
	}
	return errors.Join(errs...)
}

// sync reconciles the native wiring of one edge. An edge is wired iff the
// context is real-time, the edge is active and its source is not part of a
// cycle.
func (c *Context) sync(src handle.Node, e audiograph.Edge) error {
	if c.offline {
		return nil
	}
	want := false
	if active, err := c.store.IsActiveEdge(src, e); err == nil {
		want = active && !c.cycles.InCycle(src)
	}
	if _, wired := c.wired[wire{src, e}]; wired == want {
		return nil
	}
	if !want {
		return c.unwire(src, e)
	}
	if err := c.nativeConnect(src, e); err != nil {
		return nativeErr("connect", err)
	}
	c.wired[wire{src, e}] = struct{}{}
	return nil
}

func (c *Context) syncOutputs(h handle.Node) error {
	rec, err := c.store.Node(h)
	if err != nil {
		return err
	}
	var errs []error
	for _, e := range rec.Outputs {
		errs = append(errs, c.sync(h, e))
	}
	return errors.Join(errs...)
}

// unwire disconnects e natively if it is wired.
func (c *Context) unwire(src handle.Node, e audiograph.Edge) error {
	w := wire{src, e}
	if _, ok := c.wired[w]; !ok {
		return nil
	}
	if err := c.nativeDisconnect(src, e); err != nil {
		return nativeErr("disconnect", err)
	}
	delete(c.wired, w)
	return nil
}

func (c *Context) nativeConnect(src handle.Node, e audiograph.Edge) error {
	from, err := c.store.Node(src)
	if err != nil {
		return err
	}
	if e.ToParam() {
		p, err := c.store.Param(e.Param)
		if err != nil {
			return err
		}
		return from.Native.ConnectParam(p.Native, e.Output)
	}
	to, err := c.store.Node(e.Dest)
	if err != nil {
		return err
	}
	return from.Native.Connect(to.Native, e.Output, e.Input)
}

func (c *Context) nativeDisconnect(src handle.Node, e audiograph.Edge) error {
	from, err := c.store.Node(src)
	if err != nil {
		return err
	}
	if e.ToParam() {
		p, err := c.store.Param(e.Param)
		if err != nil {
			return err
		}
		return from.Native.DisconnectParam(p.Native, e.Output)
	}
	to, err := c.store.Node(e.Dest)
	if err != nil {
		return err
	}
	return from.Native.Disconnect(to.Native, e.Output, e.Input)
}
