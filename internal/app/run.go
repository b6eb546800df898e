package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/specialistvlad/patchgraph/internal/audiocontext"
	"github.com/specialistvlad/patchgraph/internal/ctxlog"
	"github.com/specialistvlad/patchgraph/internal/monitor"
	"github.com/specialistvlad/patchgraph/internal/patch"
	"github.com/specialistvlad/patchgraph/internal/simengine"
)

// Summary reports what a run built and rendered.
type Summary struct {
	Realtime    bool
	Nodes       int
	Links       int
	Frames      int
	SampleRate  float64
	ActiveNodes int
	Calls       []string
}

// Run loads the configured patch, builds it, renders it offline (or keeps
// it live in a real-time context), and prints a summary.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if _, err := a.startHealthCheckServer(); err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.closeHealthCheckServer())
	}()

	p, err := patch.Load(ctx, a.config.PatchPath)
	if err != nil {
		return fmt.Errorf("failed to load patch: %w", err)
	}

	summary, err := a.render(ctx, p)
	if err != nil {
		return err
	}
	a.printSummary(a.outW, summary)
	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) render(ctx context.Context, p *patch.Patch) (*Summary, error) {
	eng := simengine.New(simengine.Config{SampleRate: p.SampleRate, Frames: p.Length})
	opts := audiocontext.Options{
		Offline: !a.config.Realtime,
		Logger:  a.logger,
		Metrics: a.metrics,
	}
	if a.config.Realtime {
		opts.Engine = eng
	}
	c, err := audiocontext.New(opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := c.Close(ctx); err != nil {
			a.logger.Error("Failed to close audio context.", "error", err)
		}
	}()

	if a.config.MonitorURL != "" {
		pub, err := monitor.Dial(ctx, monitor.Config{URL: a.config.MonitorURL, Namespace: a.config.MonitorNamespace})
		if err != nil {
			return nil, fmt.Errorf("failed to connect state monitor: %w", err)
		}
		defer pub.Close()
		pub.Watch(c)
	}

	g, err := patch.Build(ctx, p, a.registry, c)
	if err != nil {
		return nil, fmt.Errorf("failed to build patch: %w", err)
	}

	s := &Summary{Realtime: a.config.Realtime, Nodes: len(g.Names()), SampleRate: p.SampleRate}
	for _, name := range g.Names() {
		if n, _ := g.Node(name); n.IsActive() {
			s.ActiveNodes++
		}
	}

	if a.config.Realtime {
		s.Links = len(eng.Links())
	} else {
		a.logger.Info("🚀 Rendering patch offline...")
		res, err := c.StartRendering(ctx, eng)
		if err != nil {
			return nil, fmt.Errorf("render failed: %w", err)
		}
		s.Links = res.Links
		s.Frames = res.Frames
		a.logger.Info("🏁 Rendering finished.")
	}
	if a.config.Transcript {
		s.Calls = eng.Calls()
	}
	return s, nil
}

func (a *App) printSummary(w io.Writer, s *Summary) {
	mode := "offline"
	if s.Realtime {
		mode = "realtime"
	}
	fmt.Fprintf(w, "mode:         %s\n", mode)
	fmt.Fprintf(w, "nodes:        %d (%d active)\n", s.Nodes, s.ActiveNodes)
	fmt.Fprintf(w, "native links: %d\n", s.Links)
	if !s.Realtime {
		fmt.Fprintf(w, "rendered:     %d frames at %g Hz\n", s.Frames, s.SampleRate)
	}
	if len(s.Calls) > 0 {
		fmt.Fprintln(w, "transcript:")
		for _, call := range s.Calls {
			fmt.Fprintf(w, "  %s\n", call)
		}
	}
}
