package prompt

import (
	"strings"

	"golang.org/x/text/language"
)

// Locale selects the language prompts are written in.
type Locale string

const (
	LocaleEnglish            Locale = "en"
	LocaleTraditionalChinese Locale = "zh-TW"
)

// DefaultLocale is used when no preference matches.
const DefaultLocale = LocaleEnglish

var (
	supportedTags    = []language.Tag{language.English, language.TraditionalChinese}
	supportedLocales = []Locale{LocaleEnglish, LocaleTraditionalChinese}
	localeMatcher    = language.NewMatcher(supportedTags)
)

// SupportedLocales lists the locales with a phrasebook.
func SupportedLocales() []string {
	out := make([]string, len(supportedLocales))
	for i, l := range supportedLocales {
		out[i] = string(l)
	}
	return out
}

// MatchLocale picks the best supported locale for the given preferences. Each
// preference may be a single tag ("zh-TW") or a full Accept-Language value.
func MatchLocale(preferences ...string) Locale {
	if l, ok := FindLocale(preferences...); ok {
		return l
	}
	return DefaultLocale
}

// FindLocale is MatchLocale without the default: ok is false when none of
// the preferences is close to a supported locale.
func FindLocale(preferences ...string) (Locale, bool) {
	var tags []language.Tag
	for _, p := range preferences {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return "", false
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(supportedLocales) {
		return "", false
	}
	return supportedLocales[idx], true
}

// RegionLocale infers the locale most likely spoken in an ISO 3166 region,
// e.g. "TW" yields zh-TW. ok is false for unknown regions or unsupported
// languages.
func RegionLocale(country string) (Locale, bool) {
	region, err := language.ParseRegion(strings.ToUpper(strings.TrimSpace(country)))
	if err != nil {
		return "", false
	}
	tag, err := language.Compose(language.Und, region)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	script, _ := tag.Script()
	full, err := language.Compose(base, script, region)
	if err != nil {
		return "", false
	}
	return FindLocale(full.String())
}
