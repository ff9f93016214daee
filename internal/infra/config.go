package infra

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env"
)

// Credential backends understood by LoadConfig.
const (
	CredentialBackendMemory   = "memory"
	CredentialBackendFile     = "file"
	CredentialBackendPostgres = "postgres"
)

// Gemini transports understood by LoadConfig.
const (
	TransportREST = "rest"
	TransportSDK  = "sdk"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	Port    string `env:"PORT" envDefault:"8080"`
	LogFile string `env:"LOG_FILE"`

	GeminiAPIKey         string `env:"GEMINI_API_KEY"`
	GeminiBaseURL        string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	GeminiTransport      string `env:"GEMINI_TRANSPORT" envDefault:"rest"`
	GeminiTimeoutSeconds int    `env:"GEMINI_TIMEOUT_SECONDS" envDefault:"120"`
	DescriptionModel     string `env:"DESCRIPTION_MODEL" envDefault:"gemini-1.5-pro"`
	ImageModel           string `env:"IMAGE_MODEL" envDefault:"gemini-2.0-flash-exp-image-generation"`
	VisionModel          string `env:"VISION_MODEL" envDefault:"gemini-2.0-flash"`
	VisionFallbackModel  string `env:"VISION_FALLBACK_MODEL"`
	PhotoModel           string `env:"PHOTO_MODEL" envDefault:"imagen-3.0-generate-002"`

	CredentialBackend string `env:"CREDENTIAL_BACKEND" envDefault:"file"`
	CredentialFile    string `env:"CREDENTIAL_FILE" envDefault:"data/credential.json"`
	DatabaseURL       string `env:"DATABASE_URL"`
	ValidateOnSave    bool   `env:"VALIDATE_ON_SAVE" envDefault:"true"`

	StoragePath   string `env:"STORAGE_PATH" envDefault:"data/assets"`
	GeoIPDBPath   string `env:"GEOIP_DB_PATH"`
	DefaultLocale string `env:"DEFAULT_LOCALE" envDefault:"en"`

	RateLimitPerMin    int      `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	HTTPReadTimeoutSeconds  int `env:"HTTP_READ_TIMEOUT_SECONDS" envDefault:"15"`
	HTTPWriteTimeoutSeconds int `env:"HTTP_WRITE_TIMEOUT_SECONDS" envDefault:"180"`
	HTTPIdleTimeoutSeconds  int `env:"HTTP_IDLE_TIMEOUT_SECONDS" envDefault:"60"`
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := fillBlankDefaults(cfg); err != nil {
		return nil, err
	}

	cfg.CredentialBackend = strings.ToLower(strings.TrimSpace(cfg.CredentialBackend))
	switch cfg.CredentialBackend {
	case CredentialBackendMemory, CredentialBackendFile:
	case CredentialBackendPostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres credential backend")
		}
	default:
		return nil, fmt.Errorf("unsupported CREDENTIAL_BACKEND %q", cfg.CredentialBackend)
	}

	cfg.GeminiTransport = strings.ToLower(strings.TrimSpace(cfg.GeminiTransport))
	if cfg.GeminiTransport != TransportREST && cfg.GeminiTransport != TransportSDK {
		return nil, fmt.Errorf("unsupported GEMINI_TRANSPORT %q", cfg.GeminiTransport)
	}

	cfg.CORSAllowedOrigins = trimNonEmpty(cfg.CORSAllowedOrigins)
	if cfg.RateLimitPerMin <= 0 {
		cfg.RateLimitPerMin = 30
	}
	return cfg, nil
}

// GeminiTimeout is the per-request deadline applied to outbound generation calls.
func (c *Config) GeminiTimeout() time.Duration {
	return seconds(c.GeminiTimeoutSeconds, 120)
}

func (c *Config) HTTPReadTimeout() time.Duration {
	return seconds(c.HTTPReadTimeoutSeconds, 15)
}

func (c *Config) HTTPWriteTimeout() time.Duration {
	return seconds(c.HTTPWriteTimeoutSeconds, 180)
}

func (c *Config) HTTPIdleTimeout() time.Duration {
	return seconds(c.HTTPIdleTimeoutSeconds, 60)
}

func seconds(v, fallback int) time.Duration {
	if v <= 0 {
		v = fallback
	}
	return time.Duration(v) * time.Second
}

func trimNonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// fillBlankDefaults applies envDefault to variables that are set but blank,
// as an unfilled .env template leaves them. env only applies defaults to
// variables that are absent.
func fillBlankDefaults(cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		def, hasDefault := field.Tag.Lookup("envDefault")
		key := strings.Split(field.Tag.Get("env"), ",")[0]
		if !hasDefault || key == "" {
			continue
		}
		raw, set := os.LookupEnv(key)
		if !set || strings.TrimSpace(raw) != "" {
			continue
		}
		f := v.Field(i)
		switch f.Kind() {
		case reflect.String:
			f.SetString(def)
		case reflect.Bool:
			b, err := strconv.ParseBool(def)
			if err != nil {
				return fmt.Errorf("default for %s: %w", key, err)
			}
			f.SetBool(b)
		case reflect.Int:
			n, err := strconv.Atoi(def)
			if err != nil {
				return fmt.Errorf("default for %s: %w", key, err)
			}
			f.SetInt(int64(n))
		}
	}
	return nil
}
