package controller

import (
	"context"
	"strings"

	"listingai/internal/domain"
	"listingai/internal/infra"
	"listingai/internal/providers/genai"
	"listingai/internal/providers/prompt"
)

// PhotosInput is the multi-image product photo form.
type PhotosInput struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
	// NumberOfImages defaults to genai.MaxImages, the number of options the
	// form offers.
	NumberOfImages       int  `json:"number_of_images"`
	PlaceholderOnFailure bool `json:"placeholder_on_failure"`
}

// PhotosController asks Imagen for several product photos and lets the user
// pick the one that goes on the listing.
type PhotosController struct {
	*machine
	clients ClientSource
	draft   *domain.ListingDraft
	assets  AssetStore
	model   genai.Model
	logger  *infra.Logger
}

func NewPhotosController(deps Deps) *PhotosController {
	deps = deps.withDefaults()
	return &PhotosController{
		machine: newMachine(FeaturePhotos),
		clients: deps.Clients,
		draft:   deps.Draft,
		assets:  deps.Assets,
		model:   deps.Models.Photos,
		logger:  deps.Logger,
	}
}

func (c *PhotosController) Generate(ctx context.Context, in PhotosInput) (View, error) {
	if strings.TrimSpace(in.Prompt) == "" {
		return c.fail(invalidInput("describe the product photo before generating"))
	}
	client, err := ready(c.clients)
	if err != nil {
		return c.fail(err)
	}

	count := in.NumberOfImages
	if count == 0 {
		count = genai.MaxImages
	}
	cfg := genai.ImagesConfig{
		NumberOfImages:       count,
		AspectRatio:          in.AspectRatio,
		PlaceholderOnFailure: in.PlaceholderOnFailure,
	}
	text := prompt.Builder{}.ProductPhoto(in.Prompt)

	return c.run(ctx, func(ctx context.Context) (*outcome, error) {
		results, err := client.WithModel(c.model).GenerateImages(ctx, text, cfg)
		logOutcome(ctx, c.logger, FeaturePhotos, c.model, err)
		if err != nil {
			return nil, err
		}
		o := &outcome{acceptable: true, selected: -1, placeholder: true}
		for _, r := range results {
			o.gallery = append(o.gallery, galleryImage{data: r.ImageData, mime: r.MIMEType, placeholder: r.Placeholder})
			o.placeholder = o.placeholder && r.Placeholder
		}
		if len(o.gallery) == 1 {
			o.selected = 0
		}
		return o, nil
	})
}

func (c *PhotosController) View() View {
	return c.view()
}

// Select chooses which generated photo Accept stores.
func (c *PhotosController) Select(index int) (View, error) {
	return c.choose(index)
}

// Accept stores the selected photo and attaches it to the listing draft.
func (c *PhotosController) Accept(ctx context.Context) (domain.Listing, error) {
	o, err := c.accepted()
	if err != nil {
		return domain.Listing{}, err
	}
	if o.selected < 0 || o.selected >= len(o.gallery) {
		return domain.Listing{}, ErrNoSelection
	}
	img := o.gallery[o.selected]
	source := domain.AssetSourceGenerated
	if img.placeholder {
		source = domain.AssetSourcePlaceholder
	}
	return acceptImage(ctx, c.assets, c.draft, outcome{image: img.data, mime: img.mime, source: source})
}
