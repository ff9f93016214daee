package genai

// GenerationConfig tunes a single generation call. Zero values are omitted
// from the request so the provider defaults apply.
type GenerationConfig struct {
	Temperature        float64
	MaxOutputTokens    int
	TopP               float64
	TopK               int
	ResponseModalities []string

	// AspectRatio sizes the synthetic placeholder; the model reads aspect
	// instructions from the prompt itself.
	AspectRatio string

	// PlaceholderOnFailure makes GenerateImage return a synthetic PNG instead
	// of an error. Callers must opt in.
	PlaceholderOnFailure bool
}

// InlineImage is an image sent to or received from the model as raw bytes.
type InlineImage struct {
	MIMEType string
	Data     []byte
}

// Result is the normalized output of an image-capable call.
type Result struct {
	Text        string
	ImageData   []byte
	MIMEType    string
	Placeholder bool
}

// HasImage reports whether the result carries image bytes.
func (r *Result) HasImage() bool {
	return r != nil && len(r.ImageData) > 0
}

// Per-feature defaults.
var (
	DescriptionConfig = GenerationConfig{
		Temperature:     0.7,
		MaxOutputTokens: 4096,
		TopP:            0.95,
		TopK:            40,
	}
	ImageConfig = GenerationConfig{
		Temperature:        0.6,
		MaxOutputTokens:    2048,
		TopP:               0.95,
		TopK:               40,
		ResponseModalities: []string{"Text", "Image"},
	}
	ImageToTextConfig = GenerationConfig{
		Temperature:     0.4,
		MaxOutputTokens: 1024,
		TopP:            0.95,
		TopK:            40,
	}
	AttributesConfig = GenerationConfig{
		Temperature:     0.2,
		MaxOutputTokens: 1024,
	}
	ImageEditConfig = GenerationConfig{
		Temperature:        0.5,
		MaxOutputTokens:    2048,
		ResponseModalities: []string{"Text", "Image"},
	}
	ImageVariationConfig = GenerationConfig{
		Temperature:        0.8,
		MaxOutputTokens:    2048,
		ResponseModalities: []string{"Text", "Image"},
	}
)

// SafetyCategory names a harm category understood by the API.
type SafetyCategory string

const (
	HarmCategoryHarassment       SafetyCategory = "HARM_CATEGORY_HARASSMENT"
	HarmCategoryHateSpeech       SafetyCategory = "HARM_CATEGORY_HATE_SPEECH"
	HarmCategorySexuallyExplicit SafetyCategory = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	HarmCategoryDangerousContent SafetyCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
)

const blockMediumAndAbove = "BLOCK_MEDIUM_AND_ABOVE"

var safetyCategories = []SafetyCategory{
	HarmCategoryHarassment,
	HarmCategoryHateSpeech,
	HarmCategorySexuallyExplicit,
	HarmCategoryDangerousContent,
}

// wire types shared by both transports

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature        *float64 `json:"temperature,omitempty"`
	MaxOutputTokens    int      `json:"maxOutputTokens,omitempty"`
	TopP               *float64 `json:"topP,omitempty"`
	TopK               int      `json:"topK,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiSafetySetting struct {
	Category  SafetyCategory `json:"category"`
	Threshold string         `json:"threshold"`
}

type geminiGenerateContentRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
	SafetySettings   []geminiSafetySetting   `json:"safetySettings,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiPromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates     []geminiCandidate     `json:"candidates"`
	PromptFeedback *geminiPromptFeedback `json:"promptFeedback,omitempty"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
		Status  string `json:"status,omitempty"`
	} `json:"error"`
}

func (cfg GenerationConfig) wire() *geminiGenerationConfig {
	out := &geminiGenerationConfig{
		MaxOutputTokens:    cfg.MaxOutputTokens,
		TopK:               cfg.TopK,
		ResponseModalities: cfg.ResponseModalities,
	}
	if cfg.Temperature > 0 {
		t := cfg.Temperature
		out.Temperature = &t
	}
	if cfg.TopP > 0 {
		p := cfg.TopP
		out.TopP = &p
	}
	return out
}

func defaultSafetySettings() []geminiSafetySetting {
	out := make([]geminiSafetySetting, 0, len(safetyCategories))
	for _, c := range safetyCategories {
		out = append(out, geminiSafetySetting{Category: c, Threshold: blockMediumAndAbove})
	}
	return out
}
