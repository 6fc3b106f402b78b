package catalog

import "github.com/aretw0/flowcanvas/pkg/domain"

// Built-in node types.
const (
	TypeText           = "text"
	TypeEcho           = "echo"
	TypeSink           = "sink"
	TypeJoin           = "join"
	TypeTransform      = "transform"
	TypeGenerateText   = "generate-text"
	TypeGenerateImage  = "generate-image"
	TypeGenerateSpeech = "generate-speech"
)

func port(id, name string, kind domain.DataKind) domain.Port {
	return domain.Port{ID: id, Name: name, Kind: kind}
}

// BuiltinDefinitions returns the definitions shipped with flowcanvas.
func BuiltinDefinitions() []domain.NodeDefinition {
	return []domain.NodeDefinition{
		{
			Type:        TypeText,
			Name:        "Text",
			Description: "Emits a fixed piece of text.",
			Outputs:     []domain.Port{port("text", "Text", domain.KindString)},
			HasSettings: true,
			Defaults:    map[string]any{"text": ""},
			Settings:    map[string]string{"text": "string"},
		},
		{
			Type:        TypeEcho,
			Name:        "Echo",
			Description: "Passes its input through unchanged.",
			Inputs:      []domain.Port{port("in", "In", domain.KindAny)},
			Outputs:     []domain.Port{port("out", "Out", domain.KindAny)},
		},
		{
			Type:        TypeSink,
			Name:        "Sink",
			Description: "Consumes a value. Useful as a terminal node.",
			Inputs:      []domain.Port{port("in", "In", domain.KindAny)},
		},
		{
			Type:        TypeJoin,
			Name:        "Join",
			Description: "Concatenates two strings with a separator.",
			Inputs: []domain.Port{
				port("a", "A", domain.KindString),
				port("b", "B", domain.KindString),
			},
			Outputs:     []domain.Port{port("out", "Out", domain.KindString)},
			HasSettings: true,
			Defaults:    map[string]any{"separator": " "},
			Settings:    map[string]string{"separator": "string"},
		},
		{
			Type:        TypeTransform,
			Name:        "Transform",
			Description: "Changes the case of a string or trims it.",
			Inputs:      []domain.Port{port("in", "In", domain.KindString)},
			Outputs:     []domain.Port{port("out", "Out", domain.KindString)},
			HasSettings: true,
			Defaults:    map[string]any{"mode": "upper"},
			Settings:    map[string]string{"mode": "string"},
		},
		{
			Type:        TypeGenerateText,
			Name:        "Generate Text",
			Description: "Completes a prompt with a language model.",
			Inputs:      []domain.Port{port("prompt", "Prompt", domain.KindString)},
			Outputs:     []domain.Port{port("text", "Text", domain.KindString)},
			HasSettings: true,
			Defaults:    map[string]any{"model": "", "system": ""},
			Settings:    map[string]string{"model": "string", "system": "string", "temperature": "float", "max_tokens": "int"},
		},
		{
			Type:        TypeGenerateImage,
			Name:        "Generate Image",
			Description: "Turns a prompt into an image.",
			Inputs:      []domain.Port{port("prompt", "Prompt", domain.KindString)},
			Outputs:     []domain.Port{port("image", "Image", domain.KindObject)},
			HasSettings: true,
			Defaults:    map[string]any{"model": "", "size": "1024x1024"},
			Settings:    map[string]string{"model": "string", "size": "string"},
		},
		{
			Type:        TypeGenerateSpeech,
			Name:        "Generate Speech",
			Description: "Reads text aloud and stores the audio clip.",
			Inputs:      []domain.Port{port("text", "Text", domain.KindString)},
			Outputs:     []domain.Port{port("audio", "Audio", domain.KindObject)},
			HasSettings: true,
			Defaults:    map[string]any{"model": "", "voice": "alloy"},
			Settings:    map[string]string{"model": "string", "voice": "string", "speed": "float"},
		},
	}
}
