package registry

import "github.com/vk/dyninputs/internal/config"

// builtinTypes lists the multi-switch node types that ship with the
// extension: canonical name, display-name alias, payload type and prefix.
// Prefixes match the optional input names the backend declares.
var builtinTypes = []struct {
	name, alias, payloadType, prefix string
}{
	{"RvSwitch_Multi_Model", "Model Multi-Switch [RvTools-X]", "MODEL", "model"},
	{"RvSwitch_Multi_CLIP", "Clip Multi-Switch [RvTools-X]", "CLIP", "clip"},
	{"RvConversion_ConcatMulti", "Concat Pipe Multi [RvTools-X]", "PIPE", "pipe"},
	{"RvSwitch_Multi_Latent", "Latent Multi-Switch [RvTools-X]", "LATENT", "latent"},
	{"RvSwitch_Multi_Vae", "Vae Multi-Switch [RvTools-X]", "VAE", "vae"},
	{"RvSwitch_Multi_Conditioning", "Conditioning Multi-Switch [RvTools-X]", "CONDITIONING", "conditioning"},
	{"RvSwitch_Multi_Image", "Image Multi-Switch [RvTools-X]", "IMAGE", "image"},
	{"RvSwitch_Multi_Images", "Images Multi-Switch [RvTools-X]", "IMAGES", "images"},
	{"RvSwitch_Multi_ControlNet", "ControlNet Multi-Switch [RvTools-X]", "CONTROL_NET", "controlnet"},
	// The pipe switch declares its payload type in lowercase.
	{"RvSwitch_Multi_Pipe", "Pipe Multi-Switch [RvTools-X]", "pipe", "pipe"},
	{"RvSwitch_Multi_BasicPipe", "BasicPipe Multi-Switch [RvTools-X]", "BASIC_PIPE", "basicpipe"},
	{"RvSwitch_Multi_Any", "Any Multi-Switch [RvTools-X]", config.WildcardType, "any"},
}

// Builtin returns a fresh model holding the built-in node types.
func Builtin() *config.Model {
	m := config.NewModel()
	for _, b := range builtinTypes {
		m.NodeTypes[b.name] = &config.NodeType{
			Name:        b.name,
			PayloadType: b.payloadType,
			Prefix:      b.prefix,
			Aliases:     []string{b.alias},
		}
	}
	return m
}
