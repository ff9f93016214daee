package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"listingai/internal/app"
	"listingai/internal/controller"
	"listingai/internal/providers/genai"
)

// maxBodyBytes bounds JSON and multipart request bodies. Data URLs inflate
// images by a third, so this leaves room for a 20MB upload.
const maxBodyBytes = 28 << 20

type App struct {
	core *app.App
}

func NewApp(core *app.App) *App {
	return &App{core: core}
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error apiError         `json:"error"`
	View  *controller.View `json:"view,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, errorEnvelope{Error: apiError{Code: code, Message: message}})
}

// decode reads a JSON body. An empty body leaves dst untouched.
func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
	return false
}

// view renders a controller result. Failed generations keep the view next to
// the error so partial text is not lost.
func (a *App) view(w http.ResponseWriter, r *http.Request, v controller.View, err error) {
	switch {
	case errors.Is(err, controller.ErrBusy):
		a.json(w, http.StatusConflict, errorEnvelope{Error: apiError{Code: "busy", Message: err.Error()}, View: &v})
		return
	case err != nil:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("feature", string(v.Feature)).Msg("handlers: controller failed")
		a.error(w, http.StatusInternalServerError, "internal", "generation failed")
		return
	}
	if v.ErrorKind == "" {
		a.json(w, http.StatusOK, v)
		return
	}
	a.json(w, statusForView(v), errorEnvelope{Error: apiError{Code: string(v.ErrorKind), Message: v.Error}, View: &v})
}

func statusForView(v controller.View) int {
	if v.TimedOut {
		return http.StatusGatewayTimeout
	}
	switch v.ErrorKind {
	case genai.KindInvalidInput:
		return http.StatusBadRequest
	case genai.KindMissingCredential, genai.KindInvalidCredential:
		return http.StatusUnauthorized
	case genai.KindSafetyBlocked, genai.KindNoImage, genai.KindParse:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

// accepted renders the outcome of a "use this result" action.
func (a *App) accepted(w http.ResponseWriter, r *http.Request, feature controller.Feature, fn func() error) {
	err := fn()
	switch {
	case err == nil:
		a.json(w, http.StatusOK, a.core.Draft.Snapshot())
	case errors.Is(err, controller.ErrBusy):
		a.error(w, http.StatusConflict, "busy", err.Error())
	case errors.Is(err, controller.ErrNothingToAccept):
		a.error(w, http.StatusConflict, "nothing_to_accept", err.Error())
	case errors.Is(err, controller.ErrNoSelection):
		a.error(w, http.StatusConflict, "no_selection", err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("feature", string(feature)).Msg("handlers: accept failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to apply result")
	}
}
