package controller

import (
	"context"

	"github.com/rs/zerolog"

	"listingai/internal/domain"
	"listingai/internal/events"
	"listingai/internal/infra"
	"listingai/internal/providers/genai"
)

// Models selects the model each feature addresses.
type Models struct {
	Description genai.Model
	Image       genai.Model
	Vision      genai.Model
	// VisionFallback, when set, gets one retry after an HTTP failure on Vision.
	VisionFallback genai.Model
	Photos         genai.Model
}

// DefaultModels returns the models used when configuration leaves them unset.
func DefaultModels() Models {
	return Models{
		Description: genai.ModelGemini15Pro,
		Image:       genai.ModelGemini20FlashImage,
		Vision:      genai.ModelGemini20Flash,
		Photos:      genai.ModelImagen3,
	}
}

// Deps are the collaborators shared by every controller.
type Deps struct {
	Clients ClientSource
	Draft   *domain.ListingDraft
	Assets  AssetStore
	Bus     *events.Bus
	Models  Models
	Logger  *infra.Logger
}

func (d Deps) withDefaults() Deps {
	def := DefaultModels()
	if d.Models.Description == "" {
		d.Models.Description = def.Description
	}
	if d.Models.Image == "" {
		d.Models.Image = def.Image
	}
	if d.Models.Vision == "" {
		d.Models.Vision = def.Vision
	}
	if d.Models.Photos == "" {
		d.Models.Photos = def.Photos
	}
	if d.Draft == nil {
		d.Draft = domain.NewListingDraft()
	}
	if d.Logger == nil {
		d.Logger = infra.NopLogger()
	}
	return d
}

// logFor prefers the request-scoped logger carried by ctx.
func logFor(ctx context.Context, fallback *infra.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return fallback
}

func logOutcome(ctx context.Context, fallback *infra.Logger, f Feature, model genai.Model, err error) {
	l := logFor(ctx, fallback)
	if err != nil {
		l.Warn().
			Str("feature", string(f)).
			Str("model", string(model)).
			Str("kind", string(genai.KindOf(err))).
			Err(err).
			Msg("controller: generation failed")
		return
	}
	l.Info().
		Str("feature", string(f)).
		Str("model", string(model)).
		Msg("controller: generation succeeded")
}
