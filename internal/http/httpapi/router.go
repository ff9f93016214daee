package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"listingai/internal/http/handlers"
	"listingai/internal/middleware"
)

// Options configures the cross-cutting middleware.
type Options struct {
	Logger             zerolog.Logger
	CORSAllowedOrigins []string
	DefaultLocale      string
	CountryLookup      middleware.CountryLookup
	// RateLimitPerMin bounds generation calls per client IP; zero disables it.
	RateLimitPerMin int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.CORSAllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	r.Route("/v1/credential", func(r chi.Router) {
		r.Get("/", app.GetCredential)
		r.Put("/", app.PutCredential)
		r.Delete("/", app.DeleteCredential)
		r.Post("/validate", app.ValidateCredential)
	})

	r.Group(func(r chi.Router) {
		if opts.RateLimitPerMin > 0 {
			r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
		}
		r.Post("/v1/descriptions", app.GenerateDescription)
		r.Post("/v1/images", app.GenerateImage)
		r.Post("/v1/images/describe", app.DescribeImage)
		r.Post("/v1/images/attributes", app.ImageAttributes)
		r.Post("/v1/images/edit", app.EditImage)
		r.Post("/v1/product-photos", app.GeneratePhotos)
	})
	r.Post("/v1/images/selection", app.SelectImage)
	r.Post("/v1/product-photos/selection", app.SelectPhoto)

	r.Route("/v1/features/{feature}", func(r chi.Router) {
		r.Get("/", app.FeatureView)
		r.Post("/accept", app.AcceptFeature)
	})

	r.Get("/v1/listing", app.GetListing)
	r.Put("/v1/listing", app.PutListing)
	r.Get("/v1/assets/*", app.DownloadAsset)

	return r
}
