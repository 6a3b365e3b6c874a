package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dyninputs/internal/config"
	"github.com/vk/dyninputs/internal/testutil"
)

func TestNewWithBuiltins_Lookup(t *testing.T) {
	t.Parallel()
	reg, err := NewWithBuiltins(testutil.Context(t))
	require.NoError(t, err)

	testCases := []struct {
		name        string
		typeID      string
		wantName    string
		wantPayload string
		wantPrefix  string
	}{
		{name: "canonical name", typeID: "RvSwitch_Multi_Model", wantName: "RvSwitch_Multi_Model", wantPayload: "MODEL", wantPrefix: "model"},
		{name: "display alias", typeID: "Clip Multi-Switch [RvTools-X]", wantName: "RvSwitch_Multi_CLIP", wantPayload: "CLIP", wantPrefix: "clip"},
		{name: "namespaced name", typeID: "rvtools/multi/RvSwitch_Multi_Latent", wantName: "RvSwitch_Multi_Latent", wantPayload: "LATENT", wantPrefix: "latent"},
		{name: "namespaced alias", typeID: "RvTools-X/Any Multi-Switch [RvTools-X]", wantName: "RvSwitch_Multi_Any", wantPayload: config.WildcardType, wantPrefix: "any"},
		{name: "lowercase payload type", typeID: "RvSwitch_Multi_Pipe", wantName: "RvSwitch_Multi_Pipe", wantPayload: "pipe", wantPrefix: "pipe"},
		{name: "prefix differs from payload", typeID: "RvSwitch_Multi_BasicPipe", wantName: "RvSwitch_Multi_BasicPipe", wantPayload: "BASIC_PIPE", wantPrefix: "basicpipe"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			nt, ok := reg.Lookup(tc.typeID)
			require.True(t, ok)
			assert.Equal(t, tc.wantName, nt.Name)
			assert.Equal(t, tc.wantPayload, nt.PayloadType)
			assert.Equal(t, tc.wantPrefix, nt.SlotPrefix())
		})
	}
}

func TestLookup_Unmatched(t *testing.T) {
	t.Parallel()
	reg, err := NewWithBuiltins(testutil.Context(t))
	require.NoError(t, err)

	for _, typeID := range []string{"", "RvText_Multiline", "rvswitch_multi_model", "RvSwitch_Multi_Model/extra"} {
		_, ok := reg.Lookup(typeID)
		assert.False(t, ok, "identifier %q must not match", typeID)
	}
}

func TestBuiltin_Complete(t *testing.T) {
	t.Parallel()
	reg, err := NewWithBuiltins(testutil.Context(t))
	require.NoError(t, err)

	assert.Equal(t, 12, reg.Len())
	types := reg.Types()
	require.Len(t, types, 12)
	for i := 1; i < len(types); i++ {
		assert.Less(t, types[i-1].Name, types[i].Name, "types must be sorted by name")
	}
}

func TestRegister_DuplicateIdentifiers(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t)

	reg := New()
	require.NoError(t, reg.Register(ctx, &config.NodeType{Name: "A", Aliases: []string{"Alpha"}}))

	err := reg.Register(ctx, &config.NodeType{Name: "A"})
	require.ErrorIs(t, err, ErrDuplicateType)

	err = reg.Register(ctx, &config.NodeType{Name: "B", Aliases: []string{"ns/Alpha"}})
	require.ErrorIs(t, err, ErrDuplicateType)
	assert.Contains(t, err.Error(), "claimed by 'A' and 'B'")

	_, ok := reg.Lookup("B")
	assert.False(t, ok, "a rejected registration must not be partially applied")
}

func TestRegister_AliasEqualToName(t *testing.T) {
	t.Parallel()
	reg := New()

	err := reg.Register(testutil.Context(t), &config.NodeType{Name: "A", Aliases: []string{"A", "ns/A"}})

	require.NoError(t, err)
	_, ok := reg.Lookup("A")
	assert.True(t, ok)
}

func TestRegister_CopiesEntry(t *testing.T) {
	t.Parallel()
	reg := New()
	shape := 3
	nt := &config.NodeType{Name: "A", Prefix: "a", Aliases: []string{"Alpha"}, Shape: &shape}
	require.NoError(t, reg.Register(testutil.Context(t), nt))

	nt.Prefix = "mutated"
	nt.Aliases[0] = "mutated"
	shape = 9

	got, ok := reg.Lookup("Alpha")
	require.True(t, ok)
	assert.Equal(t, "a", got.Prefix)
	assert.Equal(t, 3, *got.Shape)
}

func TestPopulateFromModel(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t)
	reg, err := NewWithBuiltins(ctx)
	require.NoError(t, err)

	extra := config.NewModel()
	extra.NodeTypes["RvSwitch_Multi_Integer"] = &config.NodeType{Name: "RvSwitch_Multi_Integer", PayloadType: "INT", Prefix: "int"}
	require.NoError(t, reg.PopulateFromModel(ctx, extra))

	nt, ok := reg.Lookup("RvSwitch_Multi_Integer")
	require.True(t, ok)
	assert.Equal(t, "int", nt.SlotPrefix())

	clash := config.NewModel()
	clash.NodeTypes["Other"] = &config.NodeType{Name: "Other", Aliases: []string{"Model Multi-Switch [RvTools-X]"}}
	require.ErrorIs(t, reg.PopulateFromModel(ctx, clash), ErrDuplicateType)

	invalid := config.NewModel()
	invalid.NodeTypes["Nameless"] = &config.NodeType{}
	require.Error(t, reg.PopulateFromModel(ctx, invalid))
}
