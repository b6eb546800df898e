package audiocontext

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/patchgraph/internal/engine"
)

// Render compiles root and everything feeding it into target. Only offline
// contexts render. Edits wait until the render has finished.
func (c *Context) Render(ctx context.Context, root *Node, target engine.Engine) (engine.NativeNode, error) {
	if !c.offline {
		return nil, fmt.Errorf("render: real-time context: %w", ErrInvalidState)
	}
	if root == nil || root.ctx != c {
		return nil, fmt.Errorf("render: %w", ErrForeignContext)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrContextClosed
	}
	return c.renderer.Render(ctx, root.h, target)
}

// RenderParamInputs replays p's automation onto native and renders the
// sources feeding p into target.
func (c *Context) RenderParamInputs(ctx context.Context, p *Param, target engine.Engine, native engine.NativeParam) error {
	if !c.offline {
		return fmt.Errorf("render: real-time context: %w", ErrInvalidState)
	}
	if p == nil || p.node.ctx != c {
		return fmt.Errorf("render: %w", ErrForeignContext)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrContextClosed
	}
	return c.renderer.RenderParamInputs(ctx, p.h, target, native)
}

// StartRendering renders the whole graph, rooted at the destination, into
// target and then runs target's render pass.
func (c *Context) StartRendering(ctx context.Context, target engine.OfflineEngine) (engine.RenderResult, error) {
	start := time.Now()
	c.logger.InfoContext(ctx, "Rendering started.")
	if _, err := c.Render(ctx, c.dest, target); err != nil {
		c.logger.ErrorContext(ctx, "Rendering failed.", "error", err)
		return engine.RenderResult{}, err
	}
	res, err := target.StartRendering(ctx)
	if err != nil {
		return engine.RenderResult{}, fmt.Errorf("native render pass: %w", err)
	}
	c.logger.InfoContext(ctx, "Rendering finished.",
		"nodes", res.Nodes, "links", res.Links, "duration", time.Since(start))
	return res, nil
}
