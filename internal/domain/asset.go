package domain

import "time"

// AssetSource records how an image asset came to exist.
type AssetSource string

const (
	AssetSourceUpload      AssetSource = "upload"
	AssetSourceGenerated   AssetSource = "generated"
	AssetSourceEdited      AssetSource = "edited"
	AssetSourcePlaceholder AssetSource = "placeholder"
)

// Asset is an image persisted in asset storage and attached to the listing.
type Asset struct {
	StorageKey string      `json:"storage_key"`
	MIMEType   string      `json:"mime_type"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Size       int64       `json:"size"`
	Source     AssetSource `json:"source"`
	CreatedAt  time.Time   `json:"created_at"`
}
