package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"listingai/internal/providers/prompt"
)

type assertError string

func (e assertError) Error() string { return string(e) }

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(r *http.Request)
		fallback prompt.Locale
		country  string
		want     prompt.Locale
	}{
		{
			name: "x-locale overrides",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "zh-TW")
				r.Header.Set("Accept-Language", "en-US")
			},
			country: "US",
			want:    prompt.LocaleTraditionalChinese,
		},
		{
			name: "accept-language used",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "en-US,en;q=0.9")
			},
			want: prompt.LocaleEnglish,
		},
		{
			name: "accept-language traditional chinese preference",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "zh-TW,zh;q=0.9,en;q=0.8")
			},
			want: prompt.LocaleTraditionalChinese,
		},
		{
			name:    "country hint",
			country: "TW",
			want:    prompt.LocaleTraditionalChinese,
		},
		{
			name:     "configured fallback",
			fallback: prompt.LocaleTraditionalChinese,
			want:     prompt.LocaleTraditionalChinese,
		},
		{
			name: "default to en",
			want: prompt.LocaleEnglish,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.setup != nil {
				tc.setup(req)
			}
			got := detectLocale(req, tc.fallback, tc.country)
			if got != tc.want {
				t.Fatalf("detectLocale() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveCountry(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(r *http.Request)
		resolver CountryLookup
		want     string
	}{
		{
			name: "header precedence",
			setup: func(r *http.Request) {
				r.Header.Set("X-Country-Code", "tw")
				r.Header.Set("CF-IPCountry", "us")
			},
			want: "TW",
		},
		{
			name: "locale region fallback",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "en-AU")
			},
			want: "AU",
		},
		{
			name: "accept-language region",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "en-GB,en;q=0.9")
			},
			want: "GB",
		},
		{
			name: "resolver fallback",
			resolver: func(ip string) (string, error) {
				if ip != "203.0.113.4" {
					t.Fatalf("unexpected ip: %s", ip)
				}
				return "tw", nil
			},
			want: "TW",
		},
		{
			name: "resolver error returns empty",
			resolver: func(ip string) (string, error) {
				return "", assertError("boom")
			},
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "203.0.113.4:80"
			if tc.setup != nil {
				tc.setup(req)
			}
			got := ResolveCountry(req, tc.resolver)
			if got != tc.want {
				t.Fatalf("ResolveCountry() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestI18NStoresLocale(t *testing.T) {
	var got prompt.Locale
	h := I18N("en", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LocaleFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("CF-IPCountry", "TW")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got != prompt.LocaleTraditionalChinese {
		t.Fatalf("locale = %q, want %q", got, prompt.LocaleTraditionalChinese)
	}
	if rec.Header().Get("Content-Language") != "zh-TW" {
		t.Fatalf("Content-Language = %q", rec.Header().Get("Content-Language"))
	}
}

func TestLocaleFromContext(t *testing.T) {
	ctx := context.Background()
	if got := LocaleFromContext(ctx); got != prompt.LocaleEnglish {
		t.Fatalf("LocaleFromContext() default = %q, want %q", got, prompt.LocaleEnglish)
	}
	ctx = context.WithValue(ctx, LocaleKey, prompt.LocaleTraditionalChinese)
	if got := LocaleFromContext(ctx); got != prompt.LocaleTraditionalChinese {
		t.Fatalf("LocaleFromContext() with value = %q, want %q", got, prompt.LocaleTraditionalChinese)
	}
}
