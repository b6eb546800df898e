package monitor

import (
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/specialistvlad/patchgraph/internal/audiocontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []map[string]any
	fail   bool
}

func (e *recordingEmitter) Emit(ev string, args ...any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fail {
		return errors.New("transport closed")
	}
	if ev == EventName && len(args) == 1 {
		e.events = append(e.events, args[0].(map[string]any))
	}
	return nil
}

func TestPublisher(t *testing.T) {
	c, err := audiocontext.New(audiocontext.Options{Offline: true})
	require.NoError(t, err)
	osc, err := c.CreateNode(t.Context(), audiocontext.NodeSpec{Kind: "oscillator", Outputs: 1, Origin: audiocontext.OriginScheduled})
	require.NoError(t, err)
	_, err = osc.Connect(c.Destination(), 0, 0)
	require.NoError(t, err)
	late, err := c.CreateNode(t.Context(), audiocontext.NodeSpec{Kind: "oscillator", Outputs: 1, Origin: audiocontext.OriginScheduled})
	require.NoError(t, err)

	em := &recordingEmitter{}
	p := New(em, slog.Default())
	p.Watch(c)

	require.NoError(t, osc.Start(0))
	require.Len(t, em.events, 2)
	assert.Equal(t, map[string]any{
		"context_id": c.ID().String(),
		"node":       osc.Handle().String(),
		"kind":       "oscillator",
		"state":      "active",
	}, em.events[0])
	assert.Equal(t, "destination", em.events[1]["kind"])

	em.fail = true
	require.NoError(t, osc.NotifyEnded())
	sent, failed := p.Stats()
	assert.Equal(t, 2, sent)
	assert.Equal(t, 2, failed)

	p.Close()
	em.fail = false
	require.NoError(t, late.Start(0))
	assert.Len(t, em.events, 2, "no events after close")
}
