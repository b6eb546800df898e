package audiocontext

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/patchgraph/internal/audiograph"
	"github.com/specialistvlad/patchgraph/internal/engine"
	"github.com/specialistvlad/patchgraph/internal/handle"
)

type transition struct {
	node   handle.Node
	active bool
}

// Start schedules a scheduled source and makes it active. It is ignored once
// the context is closed.
func (n *Node) Start(when float64) error {
	c := n.ctx
	return c.mutate(func() error {
		if c.closed {
			return nil
		}
		rec, sched, err := c.scheduled(n)
		if err != nil {
			return err
		}
		if sched.start != nil {
			return fmt.Errorf("start %s: already started: %w", n, ErrInvalidState)
		}
		if !c.offline {
			if err := rec.Native.(engine.ScheduledNode).Start(when); err != nil {
				return nativeErr("start", err)
			}
		}
		sched.start = &when
		return c.setActive(n.h, true)
	})
}

// Stop schedules the end of a started source. The node stays active until
// the ended notification arrives.
func (n *Node) Stop(when float64) error {
	c := n.ctx
	return c.mutate(func() error {
		if c.closed {
			return ErrContextClosed
		}
		rec, sched, err := c.scheduled(n)
		if err != nil {
			return err
		}
		if sched.start == nil {
			return fmt.Errorf("stop %s: not started: %w", n, ErrInvalidState)
		}
		if !c.offline {
			if err := rec.Native.(engine.ScheduledNode).Stop(when); err != nil {
				return nativeErr("stop", err)
			}
		}
		sched.stop = &when
		return nil
	})
}

// NotifyEnded delivers the ended notification of a scheduled source and
// makes it passive. Later notifications are ignored.
func (n *Node) NotifyEnded() error {
	c := n.ctx
	return c.mutate(func() error {
		if c.closed {
			return nil
		}
		_, sched, err := c.scheduled(n)
		if err != nil {
			return err
		}
		if sched.ended {
			return nil
		}
		sched.ended = true
		return c.setActive(n.h, false)
	})
}

// Activate makes a persistent node active.
func (n *Node) Activate() error {
	return n.setPersistent(true)
}

// Deactivate makes a persistent node passive. Persistent nodes are never
// demoted otherwise.
func (n *Node) Deactivate() error {
	return n.setPersistent(false)
}

func (n *Node) setPersistent(active bool) error {
	c := n.ctx
	return c.mutate(func() error {
		if c.closed {
			return ErrContextClosed
		}
		rec, err := c.store.Node(n.h)
		if err != nil {
			return err
		}
		if rec.Origin != OriginPersistent {
			return fmt.Errorf("%s is %s: %w", n, rec.Origin, ErrInvalidState)
		}
		return c.setActive(n.h, active)
	})
}

func (c *Context) scheduled(n *Node) (*audiograph.NodeRecord, *schedule, error) {
	rec, err := c.store.Node(n.h)
	if err != nil {
		return nil, nil, err
	}
	sched, ok := c.schedules[n.h]
	if rec.Origin != OriginScheduled || !ok {
		return nil, nil, fmt.Errorf("%s is %s, not scheduled: %w", n, rec.Origin, ErrInvalidState)
	}
	return rec, sched, nil
}

// setActive queues a transition and drains the queue.
func (c *Context) setActive(h handle.Node, active bool) error {
	c.queue = append(c.queue, transition{node: h, active: active})
	return c.drain()
}

// drain applies queued transitions until none are left. Transitions append
// their follow-ups to the queue instead of recursing.
func (c *Context) drain() error {
	var errs []error
	for len(c.queue) > 0 {
		t := c.queue[0]
		c.queue = c.queue[1:]
		if err := c.apply(t); err != nil {
			errs = append(errs, err)
		}
	}
	c.queue = nil
	return errors.Join(errs...)
}

func (c *Context) apply(t transition) error {
	rec, err := c.store.Node(t.node)
	if err != nil {
		return err
	}
	if rec.Active == t.active {
		return nil
	}
	rec.Active = t.active
	if t.active {
		c.cancelCheck(t.node)
	}
	c.changes = append(c.changes, StateChange{ContextID: c.id, Node: t.node, Kind: rec.Kind, Active: t.active})
	c.metrics.RecordStateTransition(t.active)
	c.logger.Debug("Node state changed.", "node", t.node, "kind", rec.Kind, "active", t.active)

	listeners, err := c.store.Listeners(t.node)
	if err != nil {
		return err
	}
	var errs []error
	for _, l := range listeners {
		if _, err := c.store.SetEdgeActive(t.node, l.Edge, t.active); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := c.sync(t.node, l.Edge); err != nil {
			errs = append(errs, err)
		}
		if l.Edge.ToParam() {
			continue
		}
		if t.active {
			c.activateFromInput(l.Edge.Dest)
		} else {
			c.checkPassive(l.Edge.Dest)
		}
	}
	return errors.Join(errs...)
}

// activateFromInput reacts to a new active input of h.
func (c *Context) activateFromInput(h handle.Node) {
	rec, err := c.store.Node(h)
	if err != nil || rec.Origin != OriginDerived {
		return
	}
	c.cancelCheck(h)
	if !rec.Active {
		c.queue = append(c.queue, transition{node: h, active: true})
	}
}

// checkPassive reacts to h losing an active input. Derived nodes without
// active inputs turn passive, after their tail time if they have one.
func (c *Context) checkPassive(h handle.Node) {
	rec, err := c.store.Node(h)
	if err != nil || rec.Origin != OriginDerived || !rec.Active || rec.HasActiveInputs() {
		return
	}
	if rec.TailTime <= 0 {
		c.queue = append(c.queue, transition{node: h, active: false})
		return
	}

	c.cancelCheck(h)
	pc := &pendingCheck{}
	pc.timer = c.clock.AfterFunc(rec.TailTime, func() { c.fireCheck(h, pc) })
	c.timers[h] = pc
	c.metrics.RecordTailTimeDeferral()
	c.logger.Debug("Deactivation deferred by tail time.", "node", h, "tail_time", rec.TailTime)
}

func (c *Context) cancelCheck(h handle.Node) {
	if pc, ok := c.timers[h]; ok {
		pc.timer.Stop()
		delete(c.timers, h)
	}
}

func (c *Context) fireCheck(h handle.Node, pc *pendingCheck) {
	err := c.mutate(func() error {
		if c.timers[h] != pc {
			return nil
		}
		delete(c.timers, h)
		rec, err := c.store.Node(h)
		if err != nil || rec.Origin != OriginDerived || !rec.Active || rec.HasActiveInputs() {
			return nil
		}
		return c.setActive(h, false)
	})
	if err != nil {
		c.logger.Warn("Deferred deactivation failed.", "node", h, "error", err)
	}
}
