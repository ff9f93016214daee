package imageutil

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var ErrEmptyImage = errors.New("image data is empty")

// ParseDataURL decodes "data:<mime>;base64,<payload>". A bare base64 payload
// without the data: prefix is accepted too; its MIME type is then sniffed.
func ParseDataURL(raw string) (string, []byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil, ErrEmptyImage
	}

	mime := ""
	payload := raw
	if strings.HasPrefix(raw, "data:") {
		header, body, ok := strings.Cut(raw[len("data:"):], ",")
		if !ok {
			return "", nil, errors.New("malformed data url")
		}
		params := strings.Split(header, ";")
		mime = strings.TrimSpace(params[0])
		isBase64 := false
		for _, p := range params[1:] {
			if strings.EqualFold(strings.TrimSpace(p), "base64") {
				isBase64 = true
			}
		}
		if !isBase64 {
			return "", nil, errors.New("data url must be base64 encoded")
		}
		payload = body
	}

	data, err := decodeBase64(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode image payload: %w", err)
	}
	if len(data) == 0 {
		return "", nil, ErrEmptyImage
	}
	if mime == "" {
		if info, err := Detect(data); err == nil {
			mime = info.MIMEType
		}
	}
	return mime, data, nil
}

// EncodeDataURL renders data as a base64 data URL.
func EncodeDataURL(mime string, data []byte) string {
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func decodeBase64(payload string) ([]byte, error) {
	payload = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, payload)
	if data, err := base64.StdEncoding.DecodeString(payload); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
}
