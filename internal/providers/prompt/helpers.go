package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoAttributes is returned when a reply holds no JSON object.
var ErrNoAttributes = errors.New("no product attributes in reply")

// Attributes is the structured reply to the ProductAttributes prompt.
type Attributes struct {
	Category      string   `json:"category"`
	Color         string   `json:"color"`
	Material      string   `json:"material"`
	Style         string   `json:"style"`
	UseCases      []string `json:"useCases"`
	Size          string   `json:"size"`
	Brand         string   `json:"brand"`
	OtherFeatures []string `json:"otherFeatures"`
}

// ParseAttributes pulls the JSON object out of a model reply, tolerating code
// fences and surrounding prose.
func ParseAttributes(raw string) (*Attributes, error) {
	cleaned := extractJSONFragment(raw)
	if cleaned == "" || !strings.HasPrefix(cleaned, "{") {
		return nil, ErrNoAttributes
	}
	var attrs Attributes
	if err := json.Unmarshal([]byte(cleaned), &attrs); err != nil {
		return nil, fmt.Errorf("decode product attributes: %w", err)
	}
	attrs.UseCases = normalizeList(attrs.UseCases)
	attrs.OtherFeatures = normalizeList(attrs.OtherFeatures)
	return &attrs, nil
}

func normalizeList(values []string) []string {
	seen := make(map[string]struct{})
	var result []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, v)
	}
	return result
}

func coalesce(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
