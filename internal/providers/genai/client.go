package genai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"listingai/internal/infra"
)

// DefaultBaseURL is the public Generative Language API root.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      Model
	HTTPClient *http.Client
	// Timeout bounds each outbound call; zero leaves only the caller's context.
	Timeout time.Duration
	// UseSDK selects the google.golang.org/genai transport instead of plain REST.
	UseSDK bool
	Logger *infra.Logger
}

// transport performs one round trip against the API. Implementations return
// *Error for every failure.
type transport interface {
	generateContent(ctx context.Context, model Model, req generateRequest) (*response, error)
	generateImages(ctx context.Context, model Model, req imagesRequest) (*imagesResponse, error)
	listModels(ctx context.Context) error
}

type generateRequest struct {
	prompt string
	image  *InlineImage
	config GenerationConfig
}

// response is the transport-neutral view of a generateContent reply.
type response struct {
	candidates  int
	parts       []responsePart
	blockReason string
}

type responsePart struct {
	text  string
	image *InlineImage
}

// Client talks to a single Gemini model. It holds no per-request state and is
// safe for concurrent use.
type Client struct {
	apiKey    string
	model     Model
	timeout   time.Duration
	transport transport
	logger    *infra.Logger
}

// NewClient constructs a Gemini client with sane defaults. A blank API key is
// accepted; every call then fails with KindMissingCredential without touching
// the network.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := opts.Model
	if model == "" {
		model = ModelGemini15Pro
	}

	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}

	apiKey := strings.TrimSpace(opts.APIKey)
	c := &Client{
		apiKey:  apiKey,
		model:   model,
		timeout: opts.Timeout,
		logger:  logger,
	}
	if apiKey == "" {
		return c, nil
	}

	if opts.UseSDK {
		t, err := newSDKTransport(apiKey, baseURL, httpClient)
		if err != nil {
			return nil, fmt.Errorf("init genai sdk: %w", err)
		}
		c.transport = t
	} else {
		c.transport = &restTransport{apiKey: apiKey, baseURL: baseURL, httpClient: httpClient}
	}
	return c, nil
}

// Model returns the configured Gemini model identifier.
func (c *Client) Model() Model {
	return c.model
}

// HasCredential reports whether the client was built with a non-empty key.
func (c *Client) HasCredential() bool {
	return c.apiKey != ""
}

// WithModel returns a client sharing this client's transport but addressing m.
func (c *Client) WithModel(m Model) *Client {
	if m == "" || m == c.model {
		return c
	}
	clone := *c
	clone.model = m
	return &clone
}

// GenerateText sends a text-only prompt and returns the first text part of
// the first candidate.
func (c *Client) GenerateText(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	resp, err := c.generate(ctx, generateRequest{prompt: prompt, config: cfg})
	if err != nil {
		return "", err
	}
	if resp.candidates > 0 && len(resp.parts) > 0 && strings.TrimSpace(resp.parts[0].text) != "" {
		return resp.parts[0].text, nil
	}
	if resp.blockReason != "" {
		return "", &Error{Kind: KindSafetyBlocked, BlockReason: resp.blockReason}
	}
	return "", parseFailure("unexpected response format from gemini", nil)
}

// GenerateImage asks an image-capable model for an image. All parts are
// scanned; the last text and the last inline image win.
func (c *Client) GenerateImage(ctx context.Context, prompt string, cfg GenerationConfig) (*Result, error) {
	if !c.model.SupportsImageOutput() {
		return nil, invalidInput(fmt.Sprintf("model %s cannot return images", c.model))
	}

	res, err := c.imageResult(ctx, generateRequest{prompt: prompt, config: cfg}, true)
	if err == nil {
		return res, nil
	}
	if !cfg.PlaceholderOnFailure {
		return nil, err
	}
	switch KindOf(err) {
	case KindInvalidInput, KindMissingCredential:
		return nil, err
	}

	c.logger.Warn().
		Err(err).
		Str("model", string(c.model)).
		Str("kind", string(KindOf(err))).
		Msg("genai: image generation failed; returning placeholder")

	width, height := normalizeAspect(cfg.AspectRatio)
	seed := deterministicSeed(c.model, prompt, cfg.AspectRatio)
	data := renderSyntheticImage(width, height, seed)
	if data == nil {
		return nil, err
	}
	return &Result{ImageData: data, MIMEType: "image/png", Placeholder: true}, nil
}

// GenerateFromImage sends the prompt together with an inline image. The
// result may carry text, an image, or both.
func (c *Client) GenerateFromImage(ctx context.Context, prompt string, img InlineImage, cfg GenerationConfig) (*Result, error) {
	if len(img.Data) == 0 {
		return nil, invalidInput("image data is required")
	}
	if strings.TrimSpace(img.MIMEType) == "" {
		return nil, invalidInput("image mime type is required")
	}
	return c.imageResult(ctx, generateRequest{prompt: prompt, image: &img, config: cfg}, false)
}

// ValidateCredential calls the model listing endpoint. Any failure,
// including transport errors, reports false.
func (c *Client) ValidateCredential(ctx context.Context) bool {
	if c.transport == nil {
		return false
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.transport.listModels(ctx); err != nil {
		c.logger.Debug().Err(err).Msg("genai: credential check failed")
		return false
	}
	return true
}

func (c *Client) imageResult(ctx context.Context, req generateRequest, requireImage bool) (*Result, error) {
	resp, err := c.generate(ctx, req)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, part := range resp.parts {
		if part.text != "" {
			res.Text = part.text
		}
		if part.image != nil && len(part.image.Data) > 0 {
			res.ImageData = part.image.Data
			res.MIMEType = part.image.MIMEType
		}
	}
	if res.MIMEType == "" && res.HasImage() {
		res.MIMEType = "image/png"
	}

	switch {
	case res.Text == "" && !res.HasImage():
		if resp.blockReason != "" {
			return nil, &Error{Kind: KindSafetyBlocked, BlockReason: resp.blockReason}
		}
		return nil, parseFailure("no text or image data in gemini response", nil)
	case requireImage && !res.HasImage():
		return nil, &Error{Kind: KindNoImage, Message: "gemini returned text but no image", Text: res.Text}
	}
	return res, nil
}

func (c *Client) generate(ctx context.Context, req generateRequest) (*response, error) {
	req.prompt = strings.TrimSpace(req.prompt)
	if req.prompt == "" {
		return nil, invalidInput("prompt is required")
	}
	if c.transport == nil {
		return nil, &Error{Kind: KindMissingCredential, Message: "gemini api key is not configured"}
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	resp, err := c.transport.generateContent(ctx, c.model, req)
	if err != nil {
		var genErr *Error
		if !errors.As(err, &genErr) {
			err = transportFailure(err)
		}
		c.logger.Debug().
			Err(err).
			Str("model", string(c.model)).
			Str("kind", string(KindOf(err))).
			Dur("elapsed", time.Since(start)).
			Msg("genai: generate content failed")
		return nil, err
	}

	c.logger.Debug().
		Str("model", string(c.model)).
		Int("parts", len(resp.parts)).
		Dur("elapsed", time.Since(start)).
		Msg("genai: generate content")
	return resp, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}
