package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"listingai/internal/infra/credentials"
)

type credentialRequest struct {
	Value          string `json:"value"`
	SkipValidation bool   `json:"skip_validation"`
}

type credentialResponse struct {
	Exists bool   `json:"exists"`
	Masked string `json:"masked,omitempty"`
}

func (a *App) GetCredential(w http.ResponseWriter, r *http.Request) {
	value, ok, err := a.core.Credentials.Get(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("handlers: load credential")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load credential")
		return
	}
	resp := credentialResponse{Exists: ok}
	if ok {
		resp.Masked = credentials.Mask(value)
	}
	a.json(w, http.StatusOK, resp)
}

func (a *App) PutCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if !a.decode(w, r, &req) {
		return
	}
	save := a.core.Credentials.Save
	if req.SkipValidation {
		save = a.core.Credentials.SaveUnverified
	}
	switch err := save(r.Context(), req.Value); {
	case err == nil:
		a.json(w, http.StatusOK, credentialResponse{Exists: true, Masked: credentials.Mask(strings.TrimSpace(req.Value))})
	case errors.Is(err, credentials.ErrEmptyCredential):
		a.error(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, credentials.ErrInvalidCredential):
		a.error(w, http.StatusUnprocessableEntity, "invalid_credential", err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("handlers: save credential")
		a.error(w, http.StatusInternalServerError, "internal", "failed to save credential")
	}
}

func (a *App) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	if err := a.core.Credentials.Clear(r.Context()); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("handlers: clear credential")
		a.error(w, http.StatusInternalServerError, "internal", "failed to clear credential")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ValidateCredential checks the credential currently in use.
func (a *App) ValidateCredential(w http.ResponseWriter, r *http.Request) {
	client := a.core.Session.Client()
	if !client.HasCredential() {
		a.error(w, http.StatusUnauthorized, "missing_credential", "no credential is stored")
		return
	}
	a.json(w, http.StatusOK, map[string]bool{"valid": client.ValidateCredential(r.Context())})
}
