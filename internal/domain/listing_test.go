package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestListingDraftApply(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	d := NewListingDraft()
	d.now = func() time.Time { return fixed }

	title := "  Red mug "
	got := d.Apply(ListingPatch{Title: &title})
	assert.Equal(t, "Red mug", got.Title)
	assert.Equal(t, "", got.Description)
	assert.Equal(t, fixed, got.UpdatedAt)

	desc := "Glazed stoneware."
	got = d.Apply(ListingPatch{Description: &desc})
	assert.Equal(t, "Red mug", got.Title)
	assert.Equal(t, "Glazed stoneware.", got.Description)
}

func TestListingDraftSnapshotIsCopy(t *testing.T) {
	d := NewListingDraft()
	d.SetImage(Asset{StorageKey: "images/a.png", Width: 10})

	snap := d.Snapshot()
	snap.Image.Width = 99

	assert.Equal(t, 10, d.Snapshot().Image.Width)
}

func TestListingDraftSetDescription(t *testing.T) {
	d := NewListingDraft()
	got := d.SetDescription("\nA bright red mug.\n")
	assert.Equal(t, "A bright red mug.", got.Description)
	assert.False(t, got.UpdatedAt.IsZero())
}
