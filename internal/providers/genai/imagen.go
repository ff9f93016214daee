package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxImages bounds the images a single Imagen request may ask for.
const MaxImages = 4

const personGenerationAllowAdult = "ALLOW_ADULT"

// ImagenAspectRatios lists the aspect ratios Imagen accepts.
var ImagenAspectRatios = []string{"1:1", "3:4", "4:3", "9:16", "16:9"}

// ImagesConfig tunes a multi-image Imagen request.
type ImagesConfig struct {
	// NumberOfImages is 1..MaxImages; zero asks for one.
	NumberOfImages int
	// AspectRatio is one of ImagenAspectRatios; blank means 1:1.
	AspectRatio string
	// PlaceholderOnFailure replaces a failed request with one synthetic PNG
	// per requested image. Callers must opt in.
	PlaceholderOnFailure bool
}

type imagesRequest struct {
	prompt      string
	count       int
	aspectRatio string
}

type imagesResponse struct {
	images []InlineImage
	// filtered is the first reason given for an image withheld by the
	// responsible-AI filter.
	filtered string
}

// wire types for the Imagen predict endpoint

type imagenInstance struct {
	Prompt string `json:"prompt"`
}

type imagenParameters struct {
	SampleCount      int    `json:"sampleCount"`
	AspectRatio      string `json:"aspectRatio,omitempty"`
	PersonGeneration string `json:"personGeneration,omitempty"`
}

type imagenPredictRequest struct {
	Instances  []imagenInstance `json:"instances"`
	Parameters imagenParameters `json:"parameters"`
}

type imagenPrediction struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded,omitempty"`
	MimeType           string `json:"mimeType,omitempty"`
	RAIFilteredReason  string `json:"raiFilteredReason,omitempty"`
}

type imagenPredictResponse struct {
	Predictions []imagenPrediction `json:"predictions"`
}

func (cfg ImagesConfig) normalize() (ImagesConfig, error) {
	if cfg.NumberOfImages == 0 {
		cfg.NumberOfImages = 1
	}
	if cfg.NumberOfImages < 1 || cfg.NumberOfImages > MaxImages {
		return cfg, invalidInput(fmt.Sprintf("number of images must be between 1 and %d", MaxImages))
	}
	cfg.AspectRatio = strings.TrimSpace(cfg.AspectRatio)
	if cfg.AspectRatio == "" {
		cfg.AspectRatio = "1:1"
	}
	for _, ar := range ImagenAspectRatios {
		if ar == cfg.AspectRatio {
			return cfg, nil
		}
	}
	return cfg, invalidInput(fmt.Sprintf("unsupported aspect ratio %q", cfg.AspectRatio))
}

// GenerateImages asks an Imagen model for up to MaxImages product photos.
// Images withheld by the safety filter are dropped; when none remain the
// call fails with KindSafetyBlocked, or KindNoImage without a reason.
func (c *Client) GenerateImages(ctx context.Context, prompt string, cfg ImagesConfig) ([]Result, error) {
	if !c.model.IsImagen() {
		return nil, invalidInput(fmt.Sprintf("model %s is not an imagen model", c.model))
	}
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, invalidInput("prompt is required")
	}
	if c.transport == nil {
		return nil, &Error{Kind: KindMissingCredential, Message: "gemini api key is not configured"}
	}

	results, err := c.predict(ctx, imagesRequest{prompt: prompt, count: cfg.NumberOfImages, aspectRatio: cfg.AspectRatio})
	if err == nil || !cfg.PlaceholderOnFailure {
		return results, err
	}

	c.logger.Warn().
		Err(err).
		Str("model", string(c.model)).
		Str("kind", string(KindOf(err))).
		Int("images", cfg.NumberOfImages).
		Msg("genai: imagen request failed; returning placeholders")

	width, height := normalizeAspect(cfg.AspectRatio)
	placeholders := make([]Result, 0, cfg.NumberOfImages)
	for i := 0; i < cfg.NumberOfImages; i++ {
		data := renderSyntheticImage(width, height, deterministicSeed(c.model, prompt, cfg.AspectRatio, i))
		if data == nil {
			return nil, err
		}
		placeholders = append(placeholders, Result{ImageData: data, MIMEType: "image/png", Placeholder: true})
	}
	return placeholders, nil
}

func (c *Client) predict(ctx context.Context, req imagesRequest) ([]Result, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	resp, err := c.transport.generateImages(ctx, c.model, req)
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
			Msg("genai: generate images failed")
		return nil, err
	}

	results := make([]Result, 0, len(resp.images))
	for _, img := range resp.images {
		if len(img.Data) == 0 {
			continue
		}
		mime := img.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		results = append(results, Result{ImageData: img.Data, MIMEType: mime})
	}
	c.logger.Debug().
		Str("model", string(c.model)).
		Int("images", len(results)).
		Dur("elapsed", time.Since(start)).
		Msg("genai: generate images")

	if len(results) == 0 {
		if resp.filtered != "" {
			return nil, &Error{Kind: KindSafetyBlocked, BlockReason: resp.filtered}
		}
		return nil, &Error{Kind: KindNoImage, Message: "imagen returned no images"}
	}
	return results, nil
}
