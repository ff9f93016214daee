package controller

import (
	"context"

	"listingai/internal/domain"
	"listingai/internal/infra"
	"listingai/internal/providers/genai"
	"listingai/internal/providers/prompt"
)

// DescribeInput is the image-to-text form. Image overrides the last selected
// image when set.
type DescribeInput struct {
	ProductName string
	Options     prompt.TextOptions
	Image       *genai.InlineImage
	Locale      prompt.Locale
}

// AttributesInput requests structured attributes for an image.
type AttributesInput struct {
	Image  *genai.InlineImage
	Locale prompt.Locale
}

// ImageToTextController writes listing copy from a product photo.
type ImageToTextController struct {
	*machine
	selection
	clients  ClientSource
	draft    *domain.ListingDraft
	model    genai.Model
	fallback genai.Model
	logger   *infra.Logger
}

func NewImageToTextController(deps Deps) *ImageToTextController {
	deps = deps.withDefaults()
	c := &ImageToTextController{
		machine:  newMachine(FeatureImageToText),
		clients:  deps.Clients,
		draft:    deps.Draft,
		model:    deps.Models.Vision,
		fallback: deps.Models.VisionFallback,
		logger:   deps.Logger,
	}
	if deps.Bus != nil {
		deps.Bus.ImageSelected.Subscribe(c.onSelected)
	}
	return c
}

// Describe generates a description of the selected image.
func (c *ImageToTextController) Describe(ctx context.Context, in DescribeInput) (View, error) {
	img, ok := c.pick(in.Image)
	if !ok {
		return c.fail(invalidInput("select a product image first"))
	}
	client, err := ready(c.clients)
	if err != nil {
		return c.fail(err)
	}

	text := prompt.New(in.Locale).ImageToText(in.ProductName, in.Options)
	return c.run(ctx, func(ctx context.Context) (*outcome, error) {
		res, err := c.withFallback(ctx, func(m genai.Model) (*genai.Result, error) {
			return client.WithModel(m).GenerateFromImage(ctx, text, *img, genai.ImageToTextConfig)
		})
		if err != nil {
			return nil, err
		}
		if res.Text == "" {
			return nil, &genai.Error{Kind: genai.KindParse, Message: "gemini returned no text for the image"}
		}
		return &outcome{text: res.Text, acceptable: true}, nil
	})
}

// Attributes extracts structured product attributes from the selected image.
func (c *ImageToTextController) Attributes(ctx context.Context, in AttributesInput) (View, error) {
	img, ok := c.pick(in.Image)
	if !ok {
		return c.fail(invalidInput("select a product image first"))
	}
	client, err := ready(c.clients)
	if err != nil {
		return c.fail(err)
	}

	text := prompt.New(in.Locale).ProductAttributes()
	return c.run(ctx, func(ctx context.Context) (*outcome, error) {
		res, err := client.WithModel(c.model).GenerateFromImage(ctx, text, *img, genai.AttributesConfig)
		logOutcome(ctx, c.logger, FeatureImageToText, c.model, err)
		if err != nil {
			return nil, err
		}
		attrs, err := prompt.ParseAttributes(res.Text)
		if err != nil {
			return &outcome{text: res.Text}, &genai.Error{Kind: genai.KindParse, Message: "could not parse product attributes", Err: err}
		}
		return &outcome{text: res.Text, attributes: attrs}, nil
	})
}

func (c *ImageToTextController) View() View {
	return c.view()
}

// Accept writes the last generated description into the listing draft.
// Attribute extraction results are informational and cannot be accepted.
func (c *ImageToTextController) Accept(context.Context) (domain.Listing, error) {
	o, err := c.accepted()
	if err != nil {
		return domain.Listing{}, err
	}
	return c.draft.SetDescription(o.text), nil
}

// SelectedFileName returns the name of the last selected image, if any.
func (c *ImageToTextController) SelectedFileName() string {
	return c.fileName()
}

// withFallback calls the primary model and, after an HTTP failure, the
// configured fallback model exactly once.
func (c *ImageToTextController) withFallback(ctx context.Context, call func(genai.Model) (*genai.Result, error)) (*genai.Result, error) {
	res, err := call(c.model)
	logOutcome(ctx, c.logger, FeatureImageToText, c.model, err)
	if err == nil || c.fallback == "" || c.fallback == c.model || genai.KindOf(err) != genai.KindHTTP {
		return res, err
	}
	logFor(ctx, c.logger).Info().
		Str("feature", string(FeatureImageToText)).
		Str("model", string(c.fallback)).
		Msg("controller: retrying with fallback model")
	res, err = call(c.fallback)
	logOutcome(ctx, c.logger, FeatureImageToText, c.fallback, err)
	return res, err
}
