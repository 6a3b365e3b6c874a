package app

import (
	"github.com/vk/dyninputs/internal/config"
	"github.com/vk/dyninputs/internal/dyninputs"
	"github.com/vk/dyninputs/internal/graph"
	"github.com/vk/dyninputs/internal/node"
	"github.com/vk/dyninputs/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
)

// defaultSlotCount is the counter value and the number of optional inputs a
// fresh multi-switch node starts with.
const defaultSlotCount = 2

// multiSwitchDef returns the host definition of a multi-switch node type: a
// counter widget and the first defaultSlotCount optional inputs.
func multiSwitchDef(nt config.NodeType) *graph.NodeDef {
	def := &graph.NodeDef{
		Name: nt.Name,
		Widgets: []graph.WidgetSpec{
			{Kind: node.KindNumber, Name: dyninputs.CounterWidgetName, Default: cty.NumberIntVal(defaultSlotCount)},
		},
	}
	prefix := nt.SlotPrefix()
	for i := 1; i <= defaultSlotCount; i++ {
		def.Inputs = append(def.Inputs, graph.SocketSpec{Name: nodeid.Name(prefix, i), Type: nt.PayloadType})
	}
	return def
}

// plainDefs are ordinary host node types the extension must leave alone.
func plainDefs() []*graph.NodeDef {
	return []*graph.NodeDef{
		{
			Name: "CheckpointLoaderSimple",
			Widgets: []graph.WidgetSpec{
				{Kind: node.KindText, Name: "ckpt_name", Default: cty.StringVal("")},
			},
		},
		{
			Name: "KSampler",
			Widgets: []graph.WidgetSpec{
				{Kind: node.KindNumber, Name: "seed", Default: cty.NumberIntVal(0)},
				{Kind: node.KindNumber, Name: "steps", Default: cty.NumberIntVal(20)},
			},
			Inputs: []graph.SocketSpec{
				{Name: "model", Type: "MODEL"},
				{Name: "positive", Type: "CONDITIONING"},
				{Name: "negative", Type: "CONDITIONING"},
				{Name: "latent_image", Type: "LATENT"},
			},
		},
	}
}
