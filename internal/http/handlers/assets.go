package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"listingai/internal/domain"
	"listingai/internal/imageutil"
)

// DownloadAsset streams an accepted image by its storage key.
func (a *App) DownloadAsset(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	data, err := a.core.Assets.Read(r.Context(), key)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "asset not found")
		return
	case err != nil:
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("key", key).Msg("handlers: read asset")
		a.error(w, http.StatusBadRequest, "bad_request", "invalid asset key")
		return
	}

	mime := "application/octet-stream"
	if info, err := imageutil.Detect(data); err == nil {
		mime = info.MIMEType
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
