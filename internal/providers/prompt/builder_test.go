package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptionContainsToneAndProduct(t *testing.T) {
	for _, locale := range []Locale{LocaleEnglish, LocaleTraditionalChinese} {
		b := New(locale)
		out := b.Description("mug", "red ceramic mug", "concise")
		assert.Contains(t, out, "red ceramic mug", locale)
		assert.Contains(t, out, b.TonePhrase("concise"), locale)
		assert.NotEqual(t, b.TonePhrase("concise"), b.TonePhrase("professional"), locale)
	}
}

func TestDescriptionDefaults(t *testing.T) {
	b := New(LocaleEnglish)
	out := b.Description("  ", "", "sarcastic")
	assert.Contains(t, out, `"this product"`)
	assert.Contains(t, out, "(none provided)")
	assert.Contains(t, out, b.TonePhrase("professional"))
}

func TestUnknownOptionsUseDefaultPhrases(t *testing.T) {
	b := New(LocaleEnglish)
	known := b.ProductImage("desk lamp", ImageOptions{
		Style:       "product-photography",
		AspectRatio: "1:1",
		DetailLevel: "medium",
		Background:  "white",
	})
	unknown := b.ProductImage("desk lamp", ImageOptions{
		Style:       "vaporwave",
		AspectRatio: "7:5",
		DetailLevel: "extreme",
		Background:  "plaid",
	})

	assert.Contains(t, unknown, english.styles.fallback)
	assert.Contains(t, unknown, english.details.fallback)
	assert.Contains(t, unknown, english.backgrounds.fallback)
	assert.Contains(t, unknown, english.aspects.fallback)
	assert.Contains(t, known, "pure white background")
	assert.Contains(t, known, "medium detail")
}

func TestOptionLookupIsCaseInsensitive(t *testing.T) {
	b := New(LocaleTraditionalChinese)
	out := b.ProductImage("檯燈", ImageOptions{Style: " Lifestyle ", Background: "STUDIO", AspectRatio: "Widescreen"})
	assert.Contains(t, out, "生活場景風格")
	assert.Contains(t, out, "專業攝影棚背景")
	assert.Contains(t, out, "16:9")
}

func TestImageToTextIncludes(t *testing.T) {
	b := New(LocaleEnglish)

	all := b.ImageToText("Canvas tote", DefaultTextOptions())
	assert.Contains(t, all, "Product name: Canvas tote")
	assert.Contains(t, all, "at most 200 words")
	assert.Contains(t, all, english.visionFeatures)
	assert.Contains(t, all, english.visionMaterials)
	assert.Contains(t, all, english.visionUseCases)

	none := b.ImageToText("", TextOptions{Tone: "playful", MaxLength: 80})
	assert.NotContains(t, none, "Product name:")
	assert.Contains(t, none, "at most 80 words")
	assert.Contains(t, none, b.TonePhrase("playful"))
	assert.NotContains(t, none, english.visionFeatures)
}

func TestEditAndVariationEmbedInstruction(t *testing.T) {
	b := New(LocaleEnglish)
	assert.Contains(t, b.ImageEdit("  remove the shadow "), "\nremove the shadow\n")
	assert.True(t, strings.Contains(b.ImageVariation("autumn colours"), "autumn colours"))
}

func TestZeroBuilderIsEnglish(t *testing.T) {
	var b Builder
	assert.Equal(t, LocaleEnglish, b.Locale())
	assert.Equal(t, english.attributes, b.ProductAttributes())
}

func TestNewUnknownLocaleFallsBack(t *testing.T) {
	assert.Equal(t, LocaleEnglish, New("fr").Locale())
}

func TestMatchLocale(t *testing.T) {
	assert.Equal(t, LocaleTraditionalChinese, MatchLocale("zh-TW"))
	assert.Equal(t, LocaleTraditionalChinese, MatchLocale("zh-TW,zh;q=0.9,en;q=0.5"))
	assert.Equal(t, LocaleEnglish, MatchLocale("en-US,en;q=0.9"))
	assert.Equal(t, LocaleEnglish, MatchLocale(""))
	assert.Equal(t, LocaleEnglish, MatchLocale("!!!"))
}

func TestFindLocaleReportsMisses(t *testing.T) {
	l, ok := FindLocale("zh-Hant")
	assert.True(t, ok)
	assert.Equal(t, LocaleTraditionalChinese, l)

	_, ok = FindLocale("")
	assert.False(t, ok)
}

func TestRegionLocale(t *testing.T) {
	l, ok := RegionLocale("TW")
	assert.True(t, ok)
	assert.Equal(t, LocaleTraditionalChinese, l)

	l, ok = RegionLocale("us")
	assert.True(t, ok)
	assert.Equal(t, LocaleEnglish, l)

	_, ok = RegionLocale("")
	assert.False(t, ok)
}

func TestParseAttributes(t *testing.T) {
	raw := "Here you go:\n```json\n{\"category\":\"mug\",\"color\":\"red\",\"useCases\":[\"coffee\",\" Coffee \",\"tea\"],\"otherFeatures\":[]}\n```"
	attrs, err := ParseAttributes(raw)
	require.NoError(t, err)
	assert.Equal(t, "mug", attrs.Category)
	assert.Equal(t, "red", attrs.Color)
	assert.Equal(t, []string{"coffee", "tea"}, attrs.UseCases)
	assert.Nil(t, attrs.OtherFeatures)
}

func TestParseAttributesRejectsProse(t *testing.T) {
	_, err := ParseAttributes("I could not identify the product.")
	assert.ErrorIs(t, err, ErrNoAttributes)

	_, err = ParseAttributes(`{"category": }`)
	assert.Error(t, err)
}

func TestProductPhotoIsEnglishForEveryLocale(t *testing.T) {
	want := New(LocaleEnglish).ProductPhoto(" red ceramic mug ")
	assert.True(t, strings.HasPrefix(want, "Professional product photograph of red ceramic mug."))
	assert.Contains(t, want, "studio lighting")
	assert.Equal(t, want, New(LocaleTraditionalChinese).ProductPhoto("red ceramic mug"))
}
