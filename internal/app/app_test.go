package app

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/patchgraph/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// safeBuffer is a thread-safe buffer for capturing output in tests.
type safeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

const testPatch = `
context {
  sample_rate = 22050
  length      = 1000
}

node "oscillator" "osc" {
  start   = 0
  stop    = 0.5
  options = { type = "sawtooth" }
}

node "oscillator" "lfo" {
  start = 0
}

node "biquad_filter" "lp" {
  options = { frequency = 800, q = 4 }
}

node "gain" "amp" {
  automation "gain" {
    event "set_value" {
      value = 0
      time  = 0
    }
    event "linear_ramp" {
      value = 1
      time  = 0.25
    }
  }
}

node "delay" "echo" {}

connect {
  from = "osc"
  to   = "lp"
}
connect {
  from = "lp"
  to   = "amp"
}
connect {
  from = "lfo"
  to   = "lp.frequency"
}
connect {
  from = "amp"
  to   = "destination"
}
connect {
  from = "amp"
  to   = "echo"
}
connect {
  from = "echo"
  to   = "amp"
}
`

func setupApp(t *testing.T, cfg Config, modules ...registry.Module) (*App, *safeBuffer) {
	t.Helper()
	if cfg.PatchPath == "" {
		cfg.PatchPath = filepath.Join(t.TempDir(), "patch.hcl")
		require.NoError(t, os.WriteFile(cfg.PatchPath, []byte(testPatch), 0o600))
	}
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"
	out := &safeBuffer{}
	a := NewApp(out, &cfg, modules...)
	t.Cleanup(func() {
		if os.Getenv("PATCHGRAPH_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), out.String())
		}
	})
	return a, out
}

func TestRun_Offline(t *testing.T) {
	a, out := setupApp(t, Config{Transcript: true})
	require.NoError(t, a.Run(t.Context()))

	output := out.String()
	assert.Contains(t, output, "mode:         offline")
	assert.Contains(t, output, "nodes:        5 (5 active)")
	// echo -> amp closes a cycle, so its edge is wired after both ends exist.
	assert.Contains(t, output, "native links: 6")
	assert.Contains(t, output, "rendered:     1000 frames at 22050 Hz")
	assert.Contains(t, output, "transcript:")
	assert.Contains(t, output, "setValueAtTime(0, 0)")
	assert.Contains(t, output, "linearRampToValueAtTime(1, 0.25)")
	assert.Contains(t, output, "render")
}

func TestRun_Realtime(t *testing.T) {
	a, out := setupApp(t, Config{Realtime: true})
	require.NoError(t, a.Run(t.Context()))

	output := out.String()
	assert.Contains(t, output, "mode:         realtime")
	// amp and echo form a cycle, so neither mirrors its outputs.
	assert.Contains(t, output, "native links: 3")
	assert.NotContains(t, output, "rendered:")
}

func TestRun_MissingPatch(t *testing.T) {
	a, _ := setupApp(t, Config{PatchPath: filepath.Join(t.TempDir(), "nope.hcl")})
	err := a.Run(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load patch")
}

func TestRun_UnknownKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patch.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`node "theremin" "t" {}`), 0o600))
	a, _ := setupApp(t, Config{PatchPath: path})
	err := a.Run(t.Context())
	require.ErrorIs(t, err, registry.ErrUnknownKind)
	assert.Contains(t, err.Error(), "failed to build patch")
}

func TestHandler(t *testing.T) {
	a, _ := setupApp(t, Config{})
	require.NoError(t, a.Run(t.Context()))
	srv := httptest.NewServer(a.handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "patchgraph_connections_total")
	assert.Contains(t, string(body), "patchgraph_render_duration_seconds")
}

func TestHealthCheckServer(t *testing.T) {
	a, _ := setupApp(t, Config{HealthcheckPort: 0})
	addr, err := a.startHealthCheckServer()
	require.NoError(t, err)
	assert.Empty(t, addr, "port 0 disables the server")
	assert.NoError(t, a.closeHealthCheckServer())
}

type brokenModule struct{}

func (brokenModule) Register(r *registry.Registry) {
	r.RegisterKind(&registry.NodeKind{Name: "nothing"})
}

func TestNewApp_PanicsOnInvalidRegistry(t *testing.T) {
	assert.Panics(t, func() { setupApp(t, Config{}, brokenModule{}) })
}

func TestNewConfig(t *testing.T) {
	_, err := NewConfig(Config{})
	assert.Error(t, err)
	_, err = NewConfig(Config{PatchPath: "p.hcl", MonitorNamespace: "/x"})
	assert.Error(t, err)
	cfg, err := NewConfig(Config{PatchPath: "p.hcl"})
	require.NoError(t, err)
	assert.Equal(t, "p.hcl", cfg.PatchPath)
}
