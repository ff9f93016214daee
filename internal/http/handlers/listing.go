package handlers

import (
	"net/http"

	"listingai/internal/domain"
)

func (a *App) GetListing(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.core.Draft.Snapshot())
}

// PutListing applies the fields the seller edited by hand.
func (a *App) PutListing(w http.ResponseWriter, r *http.Request) {
	var patch domain.ListingPatch
	if !a.decode(w, r, &patch) {
		return
	}
	a.json(w, http.StatusOK, a.core.Draft.Apply(patch))
}
