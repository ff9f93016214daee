// Package imageutil inspects and normalises product images before they are
// sent to the model or written to asset storage.
package imageutil

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxDimension bounds the longest side of images sent inline to the model.
const MaxDimension = 2048

// Info describes a decoded image header.
type Info struct {
	Format   string
	MIMEType string
	Width    int
	Height   int
}

var mimeTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// Detect reads the image header without decoding pixels.
func Detect(data []byte) (Info, error) {
	if len(data) == 0 {
		return Info{}, ErrEmptyImage
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("unsupported image: %w", err)
	}
	mime, ok := mimeTypes[format]
	if !ok {
		return Info{}, fmt.Errorf("unsupported image format: %s", format)
	}
	return Info{Format: format, MIMEType: mime, Width: cfg.Width, Height: cfg.Height}, nil
}

// Fit returns data unchanged when it already fits within maxDim, otherwise a
// downscaled JPEG. GIF input, which the model does not accept inline, is always
// re-encoded. The returned MIME type always matches the returned bytes.
func Fit(data []byte, maxDim int) (string, []byte, error) {
	info, err := Detect(data)
	if err != nil {
		return "", nil, err
	}
	if maxDim <= 0 || (info.Width <= maxDim && info.Height <= maxDim) {
		if info.Format != "gif" {
			return info.MIMEType, data, nil
		}
		out, err := CompressToJPEG(data, 90)
		if err != nil {
			return "", nil, err
		}
		return "image/jpeg", out, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("decode image: %w", err)
	}
	w, h := scaled(info.Width, info.Height, maxDim)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	out, err := encodeJPEG(dst, 90)
	if err != nil {
		return "", nil, err
	}
	return "image/jpeg", out, nil
}

// CompressToJPEG re-encodes any supported image as JPEG.
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return encodeJPEG(img, quality)
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func scaled(w, h, maxDim int) (int, int) {
	if w >= h {
		return maxDim, max(1, h*maxDim/w)
	}
	return max(1, w*maxDim/h), maxDim
}
