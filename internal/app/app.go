// Package app wires configuration, storage, the Gemini session and the
// feature controllers into one value the HTTP layer and CLIs share.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"listingai/internal/controller"
	"listingai/internal/domain"
	"listingai/internal/events"
	"listingai/internal/infra"
	"listingai/internal/infra/credentials"
	"listingai/internal/providers/genai"
	"listingai/internal/storage"
)

// App is the composition root.
type App struct {
	Config      *infra.Config
	Logger      *infra.Logger
	Bus         *events.Bus
	Session     *Session
	Credentials *credentials.Store
	Draft       *domain.ListingDraft
	Assets      *storage.FileStore

	Description *controller.DescriptionController
	Image       *controller.ImageController
	ImageToText *controller.ImageToTextController
	ImageEdit   *controller.ImageEditController
	Photos      *controller.PhotosController

	closers []func()
}

// Option customizes New, mostly for tests.
type Option func(*options)

type options struct {
	factory ClientFactory
	backend credentials.Backend
}

// WithClientFactory overrides how Gemini clients are built.
func WithClientFactory(f ClientFactory) Option {
	return func(o *options) { o.factory = f }
}

// WithCredentialBackend overrides the configured credential backend.
func WithCredentialBackend(b credentials.Backend) Option {
	return func(o *options) { o.backend = b }
}

// New builds the application. The stored credential, or GEMINI_API_KEY when
// none is stored yet, becomes the session's initial client.
func New(ctx context.Context, cfg *infra.Config, logger *infra.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	if logger == nil {
		logger = infra.NopLogger()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.factory == nil {
		o.factory = NewClientFactory(cfg, logger)
	}

	a := &App{Config: cfg, Logger: logger, Bus: events.NewBus(), Draft: domain.NewListingDraft()}

	session, err := NewSession(o.factory, logger)
	if err != nil {
		return nil, fmt.Errorf("app: init session: %w", err)
	}
	session.Subscribe(a.Bus)
	a.Session = session

	backend := o.backend
	if backend == nil {
		backend, err = a.credentialBackend(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
	}
	storeOpts := credentials.Options{Backend: backend, Publisher: a.Bus, Logger: logger}
	if cfg.ValidateOnSave {
		storeOpts.Validator = session.Validate
	}
	a.Credentials = credentials.NewStore(storeOpts)

	if err := a.loadCredential(ctx); err != nil {
		a.Close()
		return nil, err
	}

	assets, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Assets = assets

	deps := controller.Deps{
		Clients: session,
		Draft:   a.Draft,
		Assets:  assets,
		Bus:     a.Bus,
		Models:  modelsFromConfig(cfg, logger),
		Logger:  logger,
	}
	a.Description = controller.NewDescriptionController(deps)
	a.Image = controller.NewImageController(deps)
	a.ImageToText = controller.NewImageToTextController(deps)
	a.ImageEdit = controller.NewImageEditController(deps)
	a.Photos = controller.NewPhotosController(deps)
	return a, nil
}

// Close releases the database pool, if any.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) credentialBackend(ctx context.Context) (credentials.Backend, error) {
	switch a.Config.CredentialBackend {
	case infra.CredentialBackendMemory:
		return credentials.NewMemoryBackend(), nil
	case infra.CredentialBackendPostgres:
		pool, err := infra.NewDBPool(ctx, a.Config)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		backend := credentials.NewPostgresBackend(infra.NewSQLRunner(pool, *a.Logger))
		if err := backend.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("app: prepare credential table: %w", err)
		}
		return backend, nil
	default:
		return credentials.NewFileBackend(a.Config.CredentialFile)
	}
}

func (a *App) loadCredential(ctx context.Context) error {
	stored, ok, err := a.Credentials.Get(ctx)
	if err != nil {
		return err
	}
	if ok {
		return a.Session.SetCredential(stored)
	}
	if seed := strings.TrimSpace(a.Config.GeminiAPIKey); seed != "" {
		a.Logger.Info().Str("credential", credentials.Mask(seed)).Msg("app: seeding credential from GEMINI_API_KEY")
		return a.Credentials.SaveUnverified(ctx, seed)
	}
	return nil
}

// Controller returns the controller for a feature name.
func (a *App) Controller(f controller.Feature) (FeatureController, bool) {
	switch f {
	case controller.FeatureDescription:
		return a.Description, true
	case controller.FeatureImage:
		return a.Image, true
	case controller.FeatureImageToText:
		return a.ImageToText, true
	case controller.FeatureImageEdit:
		return a.ImageEdit, true
	case controller.FeaturePhotos:
		return a.Photos, true
	}
	return nil, false
}

// FeatureController is the part every feature controller shares.
type FeatureController interface {
	View() controller.View
	Accept(ctx context.Context) (domain.Listing, error)
}

func modelsFromConfig(cfg *infra.Config, logger *infra.Logger) controller.Models {
	pick := func(name, raw string) genai.Model {
		m, known := genai.ParseModel(raw)
		if m != "" && !known {
			logger.Warn().Str("setting", name).Str("model", string(m)).Msg("app: unrecognised model; using it as given")
		}
		return m
	}
	return controller.Models{
		Description:    pick("DESCRIPTION_MODEL", cfg.DescriptionModel),
		Image:          pick("IMAGE_MODEL", cfg.ImageModel),
		Vision:         pick("VISION_MODEL", cfg.VisionModel),
		VisionFallback: pick("VISION_FALLBACK_MODEL", cfg.VisionFallbackModel),
		Photos:         pick("PHOTO_MODEL", cfg.PhotoModel),
	}
}
