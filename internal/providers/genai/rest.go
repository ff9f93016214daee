package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxResponseBytes caps a single reply; inline images arrive base64-encoded.
const maxResponseBytes = 32 << 20

type restTransport struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func (t *restTransport) generateContent(ctx context.Context, model Model, req generateRequest) (*response, error) {
	parts := []geminiPart{{Text: req.prompt}}
	if req.image != nil {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: req.image.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(req.image.Data),
		}})
	}
	payload := geminiGenerateContentRequest{
		Contents:         []geminiContent{{Parts: parts}},
		GenerationConfig: req.config.wire(),
		SafetySettings:   defaultSafetySettings(),
	}

	var out geminiGenerateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(string(model)))
	if err := t.invoke(ctx, http.MethodPost, path, payload, &out); err != nil {
		return nil, err
	}
	return out.normalize()
}

func (t *restTransport) generateImages(ctx context.Context, model Model, req imagesRequest) (*imagesResponse, error) {
	payload := imagenPredictRequest{
		Instances: []imagenInstance{{Prompt: req.prompt}},
		Parameters: imagenParameters{
			SampleCount:      req.count,
			AspectRatio:      req.aspectRatio,
			PersonGeneration: personGenerationAllowAdult,
		},
	}

	var out imagenPredictResponse
	path := fmt.Sprintf("/models/%s:predict", url.PathEscape(string(model)))
	if err := t.invoke(ctx, http.MethodPost, path, payload, &out); err != nil {
		return nil, err
	}

	resp := &imagesResponse{}
	for _, p := range out.Predictions {
		if p.BytesBase64Encoded == "" {
			if resp.filtered == "" {
				resp.filtered = p.RAIFilteredReason
			}
			continue
		}
		data, err := base64.StdEncoding.DecodeString(p.BytesBase64Encoded)
		if err != nil {
			return nil, parseFailure("decode imagen bytes", err)
		}
		resp.images = append(resp.images, InlineImage{MIMEType: p.MimeType, Data: data})
	}
	return resp, nil
}

func (t *restTransport) listModels(ctx context.Context) error {
	return t.invoke(ctx, http.MethodGet, "/models", nil, nil)
}

func (t *restTransport) invoke(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return parseFailure("marshal request", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, body)
	if err != nil {
		return transportFailure(fmt.Errorf("create request: %w", err))
	}
	q := req.URL.Query()
	q.Set("key", t.apiKey)
	req.URL.RawQuery = q.Encode()
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return transportFailure(redactKey(err, t.apiKey))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return transportFailure(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr geminiErrorResponse
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			return statusError(resp.StatusCode, apiErr.Error.Message)
		}
		return statusError(resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return parseFailure("decode gemini response", err)
	}
	return nil
}

func (r *geminiGenerateContentResponse) normalize() (*response, error) {
	out := &response{candidates: len(r.Candidates)}
	if r.PromptFeedback != nil {
		out.blockReason = r.PromptFeedback.BlockReason
	}
	if len(r.Candidates) == 0 {
		return out, nil
	}
	for _, part := range r.Candidates[0].Content.Parts {
		p := responsePart{text: part.Text}
		if part.InlineData != nil && part.InlineData.Data != "" {
			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, parseFailure("decode inline data", err)
			}
			p.image = &InlineImage{MIMEType: part.InlineData.MimeType, Data: data}
		}
		out.parts = append(out.parts, p)
	}
	return out, nil
}

// redactKey strips the API key from url.Error messages, which quote the full
// request URL.
func redactKey(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), key, "REDACTED"), err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }
