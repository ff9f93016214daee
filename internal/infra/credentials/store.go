package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"listingai/internal/infra"
)

// Key is the single well-known key the API credential is stored under.
const Key = "credential"

var (
	ErrEmptyCredential   = errors.New("credential is required")
	ErrInvalidCredential = errors.New("credential was rejected by the provider")
)

// Backend is a flat string key-value store.
type Backend interface {
	Load(ctx context.Context, key string) (string, bool, error)
	Save(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Validator checks a candidate credential against the provider.
type Validator func(ctx context.Context, value string) bool

// Publisher is notified after the stored credential changes.
type Publisher interface {
	PublishCredentialUpdated(ctx context.Context, value string)
}

type Options struct {
	Backend   Backend
	Validator Validator
	Publisher Publisher
	Logger    *infra.Logger
}

// Store holds the single API credential.
type Store struct {
	backend   Backend
	validate  Validator
	publisher Publisher
	logger    *infra.Logger
}

func NewStore(opts Options) *Store {
	backend := opts.Backend
	if backend == nil {
		backend = NewMemoryBackend()
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Store{
		backend:   backend,
		validate:  opts.Validator,
		publisher: opts.Publisher,
		logger:    logger,
	}
}

// Save validates the credential when a validator is configured and persists it
// only if validation succeeds.
func (s *Store) Save(ctx context.Context, value string) error {
	return s.save(ctx, value, true)
}

// SaveUnverified persists the credential without probing the provider.
func (s *Store) SaveUnverified(ctx context.Context, value string) error {
	return s.save(ctx, value, false)
}

func (s *Store) save(ctx context.Context, value string, validate bool) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return ErrEmptyCredential
	}
	if validate && s.validate != nil && !s.validate(ctx, value) {
		s.logger.Info().Str("credential", Mask(value)).Msg("credentials: validator rejected credential")
		return ErrInvalidCredential
	}
	if err := s.backend.Save(ctx, Key, value); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	s.logger.Info().Str("credential", Mask(value)).Bool("validated", validate && s.validate != nil).Msg("credentials: saved")
	s.publish(ctx, value)
	return nil
}

// Get returns the stored credential and whether one exists.
func (s *Store) Get(ctx context.Context) (string, bool, error) {
	value, ok, err := s.backend.Load(ctx, Key)
	if err != nil {
		return "", false, fmt.Errorf("load credential: %w", err)
	}
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return "", false, nil
	}
	return value, true, nil
}

// Exists reports whether a non-empty credential is stored.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	_, ok, err := s.Get(ctx)
	return ok, err
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Delete(ctx, Key); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	s.logger.Info().Msg("credentials: cleared")
	s.publish(ctx, "")
	return nil
}

func (s *Store) publish(ctx context.Context, value string) {
	if s.publisher != nil {
		s.publisher.PublishCredentialUpdated(ctx, value)
	}
}

// Mask keeps the first and last four characters of long values for logging.
func Mask(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}
