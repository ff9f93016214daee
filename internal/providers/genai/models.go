package genai

import "strings"

// Model identifies a Gemini model the client may address.
type Model string

const (
	ModelGemini15Pro        Model = "gemini-1.5-pro"
	ModelGemini20Flash      Model = "gemini-2.0-flash"
	ModelGemini20Pro        Model = "gemini-2.0-pro"
	ModelGemini20FlashImage Model = "gemini-2.0-flash-exp-image-generation"
	ModelGeminiProVision    Model = "gemini-pro-vision"
	ModelImagen3            Model = "imagen-3.0-generate-002"
)

var knownModels = map[Model]struct {
	imageOutput bool
	imageInput  bool
	imagen      bool
}{
	ModelGemini15Pro:        {imageInput: true},
	ModelGemini20Flash:      {imageInput: true},
	ModelGemini20Pro:        {imageInput: true},
	ModelGemini20FlashImage: {imageOutput: true, imageInput: true},
	ModelGeminiProVision:    {imageInput: true},
	ModelImagen3:            {imagen: true},
}

// ParseModel accepts a model identifier, tolerating a "models/" prefix. The
// boolean reports whether the identifier is one of the enumerated models.
func ParseModel(raw string) (Model, bool) {
	id := strings.TrimPrefix(strings.TrimSpace(raw), "models/")
	m := Model(id)
	_, ok := knownModels[m]
	return m, ok
}

// SupportsImageOutput reports whether the model can return inline image parts.
func (m Model) SupportsImageOutput() bool {
	return knownModels[m].imageOutput
}

// SupportsImageInput reports whether the model accepts inline image parts.
func (m Model) SupportsImageInput() bool {
	return knownModels[m].imageInput
}

// IsImagen reports whether the model is an Imagen model, addressed through
// the predict endpoint rather than generateContent.
func (m Model) IsImagen() bool {
	if known, ok := knownModels[m]; ok {
		return known.imagen
	}
	return strings.HasPrefix(string(m), "imagen-")
}

func (m Model) String() string {
	return string(m)
}

// Models lists the enumerated models in a stable order.
func Models() []Model {
	return []Model{
		ModelGemini15Pro,
		ModelGemini20Flash,
		ModelGemini20Pro,
		ModelGemini20FlashImage,
		ModelGeminiProVision,
		ModelImagen3,
	}
}
