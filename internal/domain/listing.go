package domain

import (
	"strings"
	"sync"
	"time"
)

// Listing is the product-listing form state.
type Listing struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       *Asset    `json:"image,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListingPatch carries the fields a user edits directly. Nil leaves a field as is.
type ListingPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// ListingDraft is the single in-progress listing shared by every feature.
type ListingDraft struct {
	mu      sync.RWMutex
	listing Listing
	now     func() time.Time
}

func NewListingDraft() *ListingDraft {
	return &ListingDraft{now: time.Now}
}

// Snapshot returns a copy of the current listing.
func (d *ListingDraft) Snapshot() Listing {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.copyLocked()
}

func (d *ListingDraft) Apply(p ListingPatch) Listing {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p.Title != nil {
		d.listing.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		d.listing.Description = strings.TrimSpace(*p.Description)
	}
	d.touchLocked()
	return d.copyLocked()
}

// SetDescription replaces the description with accepted generated text.
func (d *ListingDraft) SetDescription(text string) Listing {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listing.Description = strings.TrimSpace(text)
	d.touchLocked()
	return d.copyLocked()
}

// SetImage attaches an accepted image asset.
func (d *ListingDraft) SetImage(asset Asset) Listing {
	d.mu.Lock()
	defer d.mu.Unlock()
	a := asset
	d.listing.Image = &a
	d.touchLocked()
	return d.copyLocked()
}

func (d *ListingDraft) touchLocked() {
	now := time.Now
	if d.now != nil {
		now = d.now
	}
	d.listing.UpdatedAt = now().UTC()
}

func (d *ListingDraft) copyLocked() Listing {
	out := d.listing
	if out.Image != nil {
		img := *out.Image
		out.Image = &img
	}
	return out
}
