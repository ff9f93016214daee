// Package prompt assembles the natural-language instructions sent to the
// generative model. Everything here is pure string assembly over fixed
// per-locale phrase tables; unknown option values select a default phrase.
package prompt

import (
	"fmt"
	"strings"
)

// DefaultMaxLength is the word or character budget used when TextOptions
// leaves MaxLength unset.
const DefaultMaxLength = 200

// ImageOptions shape a text-to-image prompt.
type ImageOptions struct {
	Style       string `json:"style"`
	AspectRatio string `json:"aspect_ratio"`
	DetailLevel string `json:"detail_level"`
	Background  string `json:"background"`
}

// TextOptions shape an image-to-text prompt.
type TextOptions struct {
	Tone             string `json:"tone"`
	MaxLength        int    `json:"max_length"`
	IncludeFeatures  bool   `json:"include_features"`
	IncludeMaterials bool   `json:"include_materials"`
	IncludeUseCases  bool   `json:"include_use_cases"`
}

// DefaultTextOptions mirrors the listing form's initial state.
func DefaultTextOptions() TextOptions {
	return TextOptions{
		Tone:             "professional",
		MaxLength:        DefaultMaxLength,
		IncludeFeatures:  true,
		IncludeMaterials: true,
		IncludeUseCases:  true,
	}
}

// Builder renders prompts for one locale. The zero value renders English.
type Builder struct {
	locale Locale
	book   *phrasebook
}

// New returns a Builder for locale, falling back to the default locale when
// no phrasebook exists for it.
func New(locale Locale) Builder {
	book, ok := phrasebooks[locale]
	if !ok {
		locale = DefaultLocale
		book = phrasebooks[DefaultLocale]
	}
	return Builder{locale: locale, book: book}
}

func (b Builder) Locale() Locale {
	if b.book == nil {
		return DefaultLocale
	}
	return b.locale
}

func (b Builder) phrases() *phrasebook {
	if b.book == nil {
		return phrasebooks[DefaultLocale]
	}
	return b.book
}

// TonePhrase returns the instruction phrase for a tone value.
func (b Builder) TonePhrase(tone string) string {
	return b.phrases().tones.lookup(tone)
}

// Description builds the product description prompt.
func (b Builder) Description(name, details, tone string) string {
	p := b.phrases()
	return fmt.Sprintf(p.description,
		coalesce(name, p.unnamedProduct),
		p.tones.lookup(tone),
		coalesce(details, p.noDetails),
	)
}

// ProductImage builds the text-to-image prompt.
func (b Builder) ProductImage(description string, opts ImageOptions) string {
	p := b.phrases()
	lines := []string{
		p.imageIntro,
		"",
		fmt.Sprintf(p.imageDesc, strings.TrimSpace(description)),
		"",
		fmt.Sprintf(p.imageStyle, p.styles.lookup(opts.Style)),
		fmt.Sprintf(p.imageAspect, p.aspects.lookup(opts.AspectRatio)),
		fmt.Sprintf(p.imageDetail, p.details.lookup(opts.DetailLevel)),
		fmt.Sprintf(p.imageBG, p.backgrounds.lookup(opts.Background)),
		"",
	}
	lines = append(lines, p.imageQuality...)
	lines = append(lines, "", p.imageClosing)
	return strings.Join(lines, "\n")
}

// ImageToText builds the prompt that accompanies a product photo when asking
// for listing copy.
func (b Builder) ImageToText(name string, opts TextOptions) string {
	p := b.phrases()
	maxLength := opts.MaxLength
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	lines := []string{p.visionIntro}
	if name = strings.TrimSpace(name); name != "" {
		lines = append(lines, fmt.Sprintf(p.visionName, name))
	}
	lines = append(lines,
		fmt.Sprintf(p.visionTone, p.tones.lookup(opts.Tone)),
		fmt.Sprintf(p.visionLength, maxLength),
		"",
		p.visionInclude,
	)
	if opts.IncludeFeatures {
		lines = append(lines, p.visionFeatures)
	}
	if opts.IncludeMaterials {
		lines = append(lines, p.visionMaterials)
	}
	if opts.IncludeUseCases {
		lines = append(lines, p.visionUseCases)
	}
	lines = append(lines, "")
	lines = append(lines, p.visionClosing...)
	return strings.Join(lines, "\n")
}

// ImageEdit asks for a description plus an edited copy of the attached image.
func (b Builder) ImageEdit(instruction string) string {
	return fmt.Sprintf(b.phrases().edit, strings.TrimSpace(instruction))
}

// ImageVariation asks for a new image derived from the attached one.
func (b Builder) ImageVariation(prompt string) string {
	return fmt.Sprintf(b.phrases().variation, strings.TrimSpace(prompt))
}

// ProductPhoto expands a short product description into an Imagen prompt.
// Imagen reads English prompts only, so the locale is not consulted.
func (b Builder) ProductPhoto(description string) string {
	return fmt.Sprintf(productPhotoTemplate, strings.TrimSpace(description))
}

// ProductAttributes asks for structured attributes of the attached image as JSON.
func (b Builder) ProductAttributes() string {
	return b.phrases().attributes
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
