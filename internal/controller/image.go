package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"listingai/internal/domain"
	"listingai/internal/imageutil"
	"listingai/internal/infra"
	"listingai/internal/providers/genai"
	"listingai/internal/providers/prompt"
)

// ImageInput is the text-to-image form.
type ImageInput struct {
	Prompt               string `json:"prompt"`
	prompt.ImageOptions
	PlaceholderOnFailure bool          `json:"placeholder_on_failure"`
	Locale               prompt.Locale `json:"-"`
}

// ImageController generates product photos from a description.
type ImageController struct {
	*machine
	clients ClientSource
	draft   *domain.ListingDraft
	assets  AssetStore
	model   genai.Model
	logger  *infra.Logger
}

func NewImageController(deps Deps) *ImageController {
	deps = deps.withDefaults()
	return &ImageController{
		machine: newMachine(FeatureImage),
		clients: deps.Clients,
		draft:   deps.Draft,
		assets:  deps.Assets,
		model:   deps.Models.Image,
		logger:  deps.Logger,
	}
}

func (c *ImageController) Generate(ctx context.Context, in ImageInput) (View, error) {
	if strings.TrimSpace(in.Prompt) == "" {
		return c.fail(invalidInput("describe the image before generating"))
	}
	client, err := ready(c.clients)
	if err != nil {
		return c.fail(err)
	}

	text := prompt.New(in.Locale).ProductImage(in.Prompt, in.ImageOptions)
	cfg := genai.ImageConfig
	cfg.AspectRatio = in.AspectRatio
	cfg.PlaceholderOnFailure = in.PlaceholderOnFailure

	return c.run(ctx, func(ctx context.Context) (*outcome, error) {
		res, err := client.WithModel(c.model).GenerateImage(ctx, text, cfg)
		logOutcome(ctx, c.logger, FeatureImage, c.model, err)
		if err != nil {
			return partialText(err), err
		}
		source := domain.AssetSourceGenerated
		if res.Placeholder {
			source = domain.AssetSourcePlaceholder
		}
		return &outcome{
			text:        res.Text,
			image:       res.ImageData,
			mime:        res.MIMEType,
			placeholder: res.Placeholder,
			acceptable:  true,
			source:      source,
		}, nil
	})
}

func (c *ImageController) View() View {
	return c.view()
}

// Accept stores the generated image and attaches it to the listing draft.
func (c *ImageController) Accept(ctx context.Context) (domain.Listing, error) {
	o, err := c.accepted()
	if err != nil {
		return domain.Listing{}, err
	}
	return acceptImage(ctx, c.assets, c.draft, o)
}

func acceptImage(ctx context.Context, assets AssetStore, draft *domain.ListingDraft, o outcome) (domain.Listing, error) {
	if len(o.image) == 0 {
		return domain.Listing{}, ErrNothingToAccept
	}
	if assets == nil {
		return domain.Listing{}, errors.New("asset storage is not configured")
	}
	var width, height int
	if info, err := imageutil.Detect(o.image); err == nil {
		width, height = info.Width, info.Height
	}
	asset, err := assets.SaveImage(ctx, o.mime, width, height, o.image, o.source)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("store image: %w", err)
	}
	return draft.SetImage(asset), nil
}

// partialText keeps the model's reply when it answered without an image.
func partialText(err error) *outcome {
	var genErr *genai.Error
	if errors.As(err, &genErr) && genErr.Kind == genai.KindNoImage && genErr.Text != "" {
		return &outcome{text: genErr.Text}
	}
	return nil
}
