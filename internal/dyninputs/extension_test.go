package dyninputs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dyninputs/internal/graph"
	"github.com/vk/dyninputs/internal/node"
	"github.com/vk/dyninputs/internal/registry"
	"github.com/vk/dyninputs/internal/scheduler"
	"github.com/vk/dyninputs/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

type extensionFixture struct {
	ctx   context.Context
	graph *graph.Graph
	ext   *Extension
	sched *scheduler.Manual
}

func newExtensionFixture(t *testing.T) *extensionFixture {
	t.Helper()
	ctx := testutil.Context(t)
	reg, err := registry.NewWithBuiltins(ctx)
	require.NoError(t, err)

	f := &extensionFixture{ctx: ctx, graph: graph.New(), sched: scheduler.NewManual()}
	f.ext = NewExtension(reg, f.sched, Options{})
	f.graph.RegisterExtension(ctx, f.ext)
	return f
}

func multiDef(name, prefix, payload string) *graph.NodeDef {
	return &graph.NodeDef{
		Name: name,
		Widgets: []graph.WidgetSpec{
			{Kind: node.KindNumber, Name: CounterWidgetName, Default: cty.NumberIntVal(2)},
		},
		Inputs: []graph.SocketSpec{
			{Name: prefix + "_1", Type: payload},
			{Name: prefix + "_2", Type: payload},
		},
	}
}

func TestExtension_InstrumentsRecognizedTypes(t *testing.T) {
	// --- Arrange ---
	f := newExtensionFixture(t)
	require.NoError(t, f.graph.RegisterNodeType(f.ctx, multiDef("RvSwitch_Multi_Latent", "latent", "LATENT")))

	// --- Act ---
	n, err := f.graph.CreateNode(f.ctx, "RvSwitch_Multi_Latent")
	require.NoError(t, err)
	require.True(t, n.SetWidgetValue(CounterWidgetName, cty.NumberIntVal(4)))
	f.sched.Advance(DefaultPollInterval)

	// --- Assert ---
	s, ok := f.ext.Synchronizer(n.ID())
	require.True(t, ok)
	assert.Equal(t, "latent", s.Prefix())
	assert.Equal(t, slotNames("latent", 4), socketNames(n))
	for _, in := range n.Inputs() {
		assert.Equal(t, "LATENT", in.Type)
	}
	_, hasButton := n.Widget(UpdateButtonLabel)
	assert.True(t, hasButton)
}

func TestExtension_RecognizesAliasesAndNamespaces(t *testing.T) {
	testCases := []struct {
		name   string
		typeID string
		prefix string
	}{
		{name: "display name", typeID: "Vae Multi-Switch [RvTools-X]", prefix: "vae"},
		{name: "namespaced", typeID: "rvtools/RvSwitch_Multi_Image", prefix: "image"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newExtensionFixture(t)
			require.NoError(t, f.graph.RegisterNodeType(f.ctx, multiDef(tc.typeID, tc.prefix, "X")))

			n, err := f.graph.CreateNode(f.ctx, tc.typeID)
			require.NoError(t, err)

			s, ok := f.ext.Synchronizer(n.ID())
			require.True(t, ok)
			assert.Equal(t, tc.prefix, s.Prefix())
		})
	}
}

func TestExtension_UnrecognizedTypeIsUntouched(t *testing.T) {
	f := newExtensionFixture(t)
	def := &graph.NodeDef{
		Name:    "KSampler",
		Widgets: []graph.WidgetSpec{{Kind: node.KindNumber, Name: CounterWidgetName, Default: cty.NumberIntVal(5)}},
		Inputs:  []graph.SocketSpec{{Name: "model", Type: "MODEL"}},
	}
	require.NoError(t, f.graph.RegisterNodeType(f.ctx, def))

	n, err := f.graph.CreateNode(f.ctx, "KSampler")
	require.NoError(t, err)
	f.sched.Advance(10 * DefaultPollInterval)

	assert.Nil(t, def.OnNodeCreated)
	assert.Zero(t, f.ext.Active())
	assert.Zero(t, f.sched.Pending())
	assert.Equal(t, []string{"model"}, socketNames(n))
	assert.Equal(t, []string{CounterWidgetName}, widgetNames(n))
}

func TestExtension_KeepsExistingCreationCallback(t *testing.T) {
	f := newExtensionFixture(t)
	def := multiDef("RvSwitch_Multi_Model", "model", "MODEL")
	var sawButton *bool
	def.OnNodeCreated = func(_ context.Context, n *node.Node) {
		_, ok := n.Widget(UpdateButtonLabel)
		sawButton = &ok
	}
	require.NoError(t, f.graph.RegisterNodeType(f.ctx, def))

	_, err := f.graph.CreateNode(f.ctx, "RvSwitch_Multi_Model")
	require.NoError(t, err)

	require.NotNil(t, sawButton, "the original creation callback must still run")
	assert.False(t, *sawButton, "the original creation callback runs before instrumentation")
}

func TestExtension_IndependentInstances(t *testing.T) {
	f := newExtensionFixture(t)
	require.NoError(t, f.graph.RegisterNodeType(f.ctx, multiDef("RvSwitch_Multi_CLIP", "clip", "CLIP")))
	a, err := f.graph.CreateNode(f.ctx, "RvSwitch_Multi_CLIP")
	require.NoError(t, err)
	b, err := f.graph.CreateNode(f.ctx, "RvSwitch_Multi_CLIP")
	require.NoError(t, err)
	require.Equal(t, 2, f.ext.Active())

	a.SetWidgetValue(CounterWidgetName, cty.NumberIntVal(5))
	b.SetWidgetValue(CounterWidgetName, cty.NumberIntVal(1))
	f.sched.Advance(DefaultPollInterval)

	assert.Equal(t, slotNames("clip", 5), socketNames(a))
	assert.Equal(t, slotNames("clip", 1), socketNames(b))
}

func TestExtension_RemovalStopsSynchronizer(t *testing.T) {
	// --- Arrange ---
	f := newExtensionFixture(t)
	require.NoError(t, f.graph.RegisterNodeType(f.ctx, multiDef("RvSwitch_Multi_Any", "any", "*")))
	n, err := f.graph.CreateNode(f.ctx, "RvSwitch_Multi_Any")
	require.NoError(t, err)
	s, ok := f.ext.Synchronizer(n.ID())
	require.True(t, ok)
	f.sched.Advance(DefaultPollInterval)

	// --- Act ---
	require.NoError(t, f.graph.RemoveNode(f.ctx, n.ID()))
	n.SetWidgetValue(CounterWidgetName, cty.NumberIntVal(9))
	f.sched.Advance(50 * DefaultPollInterval)

	// --- Assert ---
	assert.True(t, s.Stopped())
	assert.Zero(t, f.ext.Active())
	assert.Zero(t, f.sched.Pending())
	assert.Equal(t, slotNames("any", 2), socketNames(n))
}
