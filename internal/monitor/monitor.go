package monitor

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/specialistvlad/patchgraph/internal/audiocontext"
	"github.com/specialistvlad/patchgraph/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// EventName is the socket.io event emitted for every state change.
const EventName = "node_state"

// DialTimeout bounds how long Dial waits for the connection.
var DialTimeout = 15 * time.Second

// Emitter sends one socket.io event. *socket.Socket satisfies it.
type Emitter interface {
	Emit(ev string, args ...any) error
}

// Config selects the server to publish to.
type Config struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
}

// Publisher forwards state changes to an Emitter.
type Publisher struct {
	emitter Emitter
	logger  *slog.Logger
	close   func()

	mu      sync.Mutex
	unwatch []func()
	sent    int
	failed  int
}

// New creates a Publisher on top of an existing emitter.
func New(e Emitter, logger *slog.Logger) *Publisher {
	return &Publisher{emitter: e, logger: logger}
}

// Dial connects to a socket.io server and returns a Publisher using it.
func Dial(ctx context.Context, cfg Config) (*Publisher, error) {
	logger := ctxlog.FromContext(ctx).With("component", "monitor", "url", cfg.URL)
	logger.Info("Connecting state monitor...")

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(DialTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %v waiting for socket.io connection", DialTimeout)
	}

	p := New(io, logger)
	p.close = func() { io.Disconnect() }
	return p, nil
}

// Watch publishes every state change of c until Close.
func (p *Publisher) Watch(c *audiocontext.Context) {
	unwatch := c.Watch(p.publish)
	p.mu.Lock()
	p.unwatch = append(p.unwatch, unwatch)
	p.mu.Unlock()
}

func (p *Publisher) publish(ch audiocontext.StateChange) {
	state := "passive"
	if ch.Active {
		state = "active"
	}
	payload := map[string]any{
		"context_id": ch.ContextID.String(),
		"node":       ch.Node.String(),
		"kind":       ch.Kind,
		"state":      state,
	}
	err := p.emitter.Emit(EventName, payload)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.failed++
		p.logger.Warn("Failed to publish state change.", "node", ch.Node, "error", err)
		return
	}
	p.sent++
}

// Stats returns how many events were sent and how many failed.
func (p *Publisher) Stats() (sent, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent, p.failed
}

// Close stops watching and disconnects a dialed client.
func (p *Publisher) Close() {
	p.mu.Lock()
	unwatch := p.unwatch
	p.unwatch = nil
	p.mu.Unlock()
	for _, fn := range unwatch {
		fn()
	}
	if p.close != nil {
		p.logger.Info("Disconnecting state monitor.")
		p.close()
	}
}
