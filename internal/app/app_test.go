package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dyninputs/internal/cleanup"
	"github.com/vk/dyninputs/internal/graph"
	"github.com/vk/dyninputs/internal/hcl_adapter"
	"github.com/vk/dyninputs/internal/testutil"
)

// newTestConfig returns a valid config with timings short enough for tests.
func newTestConfig(t *testing.T, nodeType string, counts ...int) *Config {
	t.Helper()
	cfg, err := NewConfig(Config{
		NodeType:     nodeType,
		Counts:       counts,
		LogLevel:     "error",
		PollInterval: 20 * time.Millisecond,
		InitialDelay: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	return cfg
}

func setupApp(t *testing.T, cfg *Config) (*App, *testutil.SafeBuffer) {
	t.Helper()
	out := &testutil.SafeBuffer{}
	return NewApp(out, cfg, hcl_adapter.NewLoader()), out
}

func outputLines(out *testutil.SafeBuffer) []string {
	return strings.Split(strings.TrimSpace(out.String()), "\n")
}

func TestNewApp_RegistersNodeTypes(t *testing.T) {
	t.Parallel()

	a, _ := setupApp(t, newTestConfig(t, "RvSwitch_Multi_Model"))

	assert.Equal(t, 12, a.Registry().Len())
	types := a.Graph().NodeTypes()
	assert.Contains(t, types, "RvSwitch_Multi_Model")
	assert.Contains(t, types, "RvSwitch_Multi_Any")
	assert.Contains(t, types, "KSampler")
}

func TestNewApp_LoadsRegistryPath(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := testutil.WriteFiles(t, map[string]string{
		"extra.hcl": `
			node_type "RvSwitch_Multi_Integer" {
				payload_type = "INT"
				prefix       = "int"
				aliases      = ["Integer Multi-Switch [RvTools-X]"]
			}
		`,
	})
	cfg := newTestConfig(t, "Integer Multi-Switch [RvTools-X]", 3)
	cfg.RegistryPath = dir

	// --- Act ---
	a, out := setupApp(t, cfg)
	err := a.Run(testutil.Context(t))

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 13, a.Registry().Len())
	assert.Equal(t, []string{
		"RvSwitch_Multi_Integer inputcount=2 inputs=[int_1 int_2]",
		"RvSwitch_Multi_Integer inputcount=3 inputs=[int_1 int_2 int_3]",
	}, outputLines(out))
}

func TestNewApp_PanicsOnBadRegistry(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		files map[string]string
	}{
		{name: "syntax error", files: map[string]string{"bad.hcl": `node_type "X" {`}},
		{name: "clashes with a built-in", files: map[string]string{"dup.hcl": `node_type "RvSwitch_Multi_Model" {}`}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := newTestConfig(t, "X")
			cfg.RegistryPath = testutil.WriteFiles(t, tc.files)

			assert.Panics(t, func() { setupApp(t, cfg) })
		})
	}
}

func TestRun_Session(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	a, out := setupApp(t, newTestConfig(t, "RvSwitch_Multi_Model", 4, 1, 0, 3))

	// --- Act ---
	err := a.Run(testutil.Context(t))

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{
		"RvSwitch_Multi_Model inputcount=2 inputs=[model_1 model_2]",
		"RvSwitch_Multi_Model inputcount=4 inputs=[model_1 model_2 model_3 model_4]",
		"RvSwitch_Multi_Model inputcount=1 inputs=[model_1]",
		"RvSwitch_Multi_Model inputcount=0 inputs=[]",
		"RvSwitch_Multi_Model inputcount=3 inputs=[model_1 model_2 model_3]",
	}, outputLines(out))
	assert.Empty(t, a.Graph().Nodes(), "the session node must be removed")
	assert.Zero(t, a.extension.Active())
}

func TestRun_PlainNodeTypeIsUntouched(t *testing.T) {
	t.Parallel()

	a, out := setupApp(t, newTestConfig(t, "KSampler", 5))

	require.NoError(t, a.Run(testutil.Context(t)))

	assert.Equal(t, []string{
		"KSampler inputcount=- inputs=[model positive negative latent_image]",
		"KSampler inputcount=- inputs=[model positive negative latent_image]",
	}, outputLines(out))
}

func TestRun_UnknownNodeType(t *testing.T) {
	t.Parallel()

	a, _ := setupApp(t, newTestConfig(t, "DoesNotExist"))

	err := a.Run(testutil.Context(t))

	require.ErrorIs(t, err, graph.ErrUnknownNodeType)
}

func TestRun_CancelledContext(t *testing.T) {
	t.Parallel()

	a, _ := setupApp(t, newTestConfig(t, "RvSwitch_Multi_Model", 3))
	ctx, cancel := context.WithCancel(testutil.Context(t))
	cancel()

	err := a.Run(ctx)

	require.Error(t, err)
}

// immediateSource delivers its events as soon as a handler subscribes.
type immediateSource struct {
	mu     sync.Mutex
	events map[string][]any
	closed bool
}

func (s *immediateSource) On(event string, fn func(args ...any)) {
	for _, payload := range s.events[event] {
		fn(payload)
	}
}

func (s *immediateSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func TestRun_CleanupRelay(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var mu sync.Mutex
	posts := 0
	r := chi.NewRouter()
	r.Post(cleanup.DefaultFreePath, func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		posts++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	backend := httptest.NewServer(r)
	t.Cleanup(backend.Close)

	cfg, err := NewConfig(Config{
		NodeType:     "RvSwitch_Multi_Vae",
		LogLevel:     "error",
		EventsURL:    backend.URL + "/socket.io/",
		PollInterval: 20 * time.Millisecond,
		InitialDelay: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	require.Equal(t, backend.URL+cleanup.DefaultFreePath, cfg.FreeURL)

	src := &immediateSource{events: map[string][]any{
		cleanup.EventName: {
			map[string]any{"type": cleanup.RequestType, "data": map[string]any{"unload_models": true}},
			map[string]any{"type": "progress"},
		},
	}}
	a, _ := setupApp(t, cfg)
	var dialed string
	a.SetEventSourceDialer(func(_ context.Context, url string) (cleanup.Source, error) {
		dialed = url
		return src, nil
	})

	// --- Act ---
	err = a.Run(testutil.Context(t))

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, cfg.EventsURL, dialed)
	mu.Lock()
	assert.Equal(t, 1, posts)
	mu.Unlock()
	src.mu.Lock()
	assert.True(t, src.closed, "the event stream must be closed when Run returns")
	src.mu.Unlock()
}

func TestHealthRouter(t *testing.T) {
	t.Parallel()

	a, _ := setupApp(t, newTestConfig(t, "RvSwitch_Multi_Model"))
	srv := httptest.NewServer(a.healthRouter())
	t.Cleanup(srv.Close)

	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res2, err := http.Post(srv.URL+"/health", "text/plain", nil)
	require.NoError(t, err)
	defer res2.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res2.StatusCode)
}
