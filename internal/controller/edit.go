package controller

import (
	"context"
	"strings"

	"listingai/internal/domain"
	"listingai/internal/infra"
	"listingai/internal/providers/genai"
	"listingai/internal/providers/prompt"
)

// EditMode selects between editing the photo and deriving a new one from it.
type EditMode string

const (
	EditModeEdit      EditMode = "edit"
	EditModeVariation EditMode = "variation"
)

// EditInput is the image editing form.
type EditInput struct {
	Instruction string
	Mode        EditMode
	Image       *genai.InlineImage
	Locale      prompt.Locale
}

// ImageEditController edits the selected product image.
type ImageEditController struct {
	*machine
	selection
	clients ClientSource
	draft   *domain.ListingDraft
	assets  AssetStore
	model   genai.Model
	logger  *infra.Logger
}

func NewImageEditController(deps Deps) *ImageEditController {
	deps = deps.withDefaults()
	c := &ImageEditController{
		machine: newMachine(FeatureImageEdit),
		clients: deps.Clients,
		draft:   deps.Draft,
		assets:  deps.Assets,
		model:   deps.Models.Image,
		logger:  deps.Logger,
	}
	if deps.Bus != nil {
		deps.Bus.ImageSelected.Subscribe(c.onSelected)
	}
	return c
}

func (c *ImageEditController) Edit(ctx context.Context, in EditInput) (View, error) {
	if strings.TrimSpace(in.Instruction) == "" {
		return c.fail(invalidInput("describe the change before generating"))
	}
	mode := in.Mode
	if mode == "" {
		mode = EditModeEdit
	}
	if mode != EditModeEdit && mode != EditModeVariation {
		return c.fail(invalidInput("mode must be edit or variation"))
	}
	img, ok := c.pick(in.Image)
	if !ok {
		return c.fail(invalidInput("select a product image first"))
	}
	client, err := ready(c.clients)
	if err != nil {
		return c.fail(err)
	}

	b := prompt.New(in.Locale)
	text, cfg := b.ImageEdit(in.Instruction), genai.ImageEditConfig
	if mode == EditModeVariation {
		text, cfg = b.ImageVariation(in.Instruction), genai.ImageVariationConfig
	}

	return c.run(ctx, func(ctx context.Context) (*outcome, error) {
		res, err := client.WithModel(c.model).GenerateFromImage(ctx, text, *img, cfg)
		if err == nil && mode == EditModeVariation && !res.HasImage() {
			err = &genai.Error{Kind: genai.KindNoImage, Message: "gemini returned text but no image", Text: res.Text}
		}
		logOutcome(ctx, c.logger, FeatureImageEdit, c.model, err)
		if err != nil {
			return partialText(err), err
		}
		return &outcome{
			text:       res.Text,
			image:      res.ImageData,
			mime:       res.MIMEType,
			acceptable: true,
			source:     domain.AssetSourceEdited,
		}, nil
	})
}

func (c *ImageEditController) View() View {
	return c.view()
}

// Accept attaches the edited image to the listing, or the description when
// the model answered with text only.
func (c *ImageEditController) Accept(ctx context.Context) (domain.Listing, error) {
	o, err := c.accepted()
	if err != nil {
		return domain.Listing{}, err
	}
	if len(o.image) == 0 {
		if strings.TrimSpace(o.text) == "" {
			return domain.Listing{}, ErrNothingToAccept
		}
		return c.draft.SetDescription(o.text), nil
	}
	return acceptImage(ctx, c.assets, c.draft, o)
}
