package genai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	sdk "google.golang.org/genai"
)

type sdkTransport struct {
	client *sdk.Client
}

func newSDKTransport(apiKey, baseURL string, httpClient *http.Client) (*sdkTransport, error) {
	cfg := &sdk.ClientConfig{
		APIKey:     apiKey,
		Backend:    sdk.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL != DefaultBaseURL {
		root, version := splitAPIVersion(baseURL)
		cfg.HTTPOptions = sdk.HTTPOptions{BaseURL: root + "/", APIVersion: version}
	}
	// The context only feeds credential discovery, which an explicit key skips.
	client, err := sdk.NewClient(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	return &sdkTransport{client: client}, nil
}

func (t *sdkTransport) generateContent(ctx context.Context, model Model, req generateRequest) (*response, error) {
	parts := []*sdk.Part{sdk.NewPartFromText(req.prompt)}
	if req.image != nil {
		parts = append(parts, &sdk.Part{InlineData: &sdk.Blob{MIMEType: req.image.MIMEType, Data: req.image.Data}})
	}
	contents := []*sdk.Content{sdk.NewContentFromParts(parts, sdk.RoleUser)}

	resp, err := t.client.Models.GenerateContent(ctx, string(model), contents, sdkConfig(req.config))
	if err != nil {
		return nil, sdkError(err)
	}

	out := &response{candidates: len(resp.Candidates)}
	if resp.PromptFeedback != nil {
		out.blockReason = string(resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out, nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		p := responsePart{text: part.Text}
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			p.image = &InlineImage{MIMEType: part.InlineData.MIMEType, Data: part.InlineData.Data}
		}
		out.parts = append(out.parts, p)
	}
	return out, nil
}

func (t *sdkTransport) generateImages(ctx context.Context, model Model, req imagesRequest) (*imagesResponse, error) {
	resp, err := t.client.Models.GenerateImages(ctx, string(model), req.prompt, &sdk.GenerateImagesConfig{
		NumberOfImages:   int32(req.count),
		AspectRatio:      req.aspectRatio,
		PersonGeneration: sdk.PersonGenerationAllowAdult,
		IncludeRAIReason: true,
	})
	if err != nil {
		return nil, sdkError(err)
	}

	out := &imagesResponse{}
	for _, img := range resp.GeneratedImages {
		if img == nil {
			continue
		}
		if img.Image == nil || len(img.Image.ImageBytes) == 0 {
			if out.filtered == "" {
				out.filtered = img.RAIFilteredReason
			}
			continue
		}
		out.images = append(out.images, InlineImage{MIMEType: img.Image.MIMEType, Data: img.Image.ImageBytes})
	}
	return out, nil
}

func (t *sdkTransport) listModels(ctx context.Context) error {
	if _, err := t.client.Models.List(ctx, &sdk.ListModelsConfig{PageSize: 1}); err != nil {
		return sdkError(err)
	}
	return nil
}

func sdkConfig(cfg GenerationConfig) *sdk.GenerateContentConfig {
	out := &sdk.GenerateContentConfig{
		ResponseModalities: cfg.ResponseModalities,
	}
	if cfg.Temperature > 0 {
		out.Temperature = sdk.Ptr(float32(cfg.Temperature))
	}
	if cfg.TopP > 0 {
		out.TopP = sdk.Ptr(float32(cfg.TopP))
	}
	if cfg.TopK > 0 {
		out.TopK = sdk.Ptr(float32(cfg.TopK))
	}
	if cfg.MaxOutputTokens > 0 {
		out.MaxOutputTokens = int32(cfg.MaxOutputTokens)
	}
	for _, c := range safetyCategories {
		out.SafetySettings = append(out.SafetySettings, &sdk.SafetySetting{
			Category:  sdk.HarmCategory(c),
			Threshold: sdk.HarmBlockThreshold(blockMediumAndAbove),
		})
	}
	return out
}

func sdkError(err error) error {
	var apiErr sdk.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr.Code, apiErr.Message)
	}
	var apiErrPtr *sdk.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return statusError(apiErrPtr.Code, apiErrPtr.Message)
	}
	return transportFailure(err)
}

// splitAPIVersion turns ".../v1beta" into (".../", "v1beta").
func splitAPIVersion(baseURL string) (string, string) {
	idx := strings.LastIndex(baseURL, "/")
	if idx < 0 {
		return baseURL, ""
	}
	last := baseURL[idx+1:]
	if strings.HasPrefix(last, "v1") {
		return baseURL[:idx], last
	}
	return baseURL, ""
}
