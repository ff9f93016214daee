package app

import (
	"context"
	"sync"

	"listingai/internal/events"
	"listingai/internal/infra"
	"listingai/internal/providers/genai"
)

// ClientFactory builds a Gemini client for an API key. A blank key must yield
// a client that reports HasCredential() == false.
type ClientFactory func(apiKey string) (*genai.Client, error)

// NewClientFactory builds clients from the service configuration.
func NewClientFactory(cfg *infra.Config, logger *infra.Logger) ClientFactory {
	return func(apiKey string) (*genai.Client, error) {
		return genai.NewClient(genai.Options{
			APIKey:  apiKey,
			BaseURL: cfg.GeminiBaseURL,
			Timeout: cfg.GeminiTimeout(),
			UseSDK:  cfg.GeminiTransport == infra.TransportSDK,
			Logger:  logger,
		})
	}
}

// Session owns the current Gemini client. It is the only place the client is
// replaced; controllers read it through Client on every request.
type Session struct {
	build  ClientFactory
	logger *infra.Logger

	mu     sync.RWMutex
	client *genai.Client
}

// NewSession starts without a credential.
func NewSession(build ClientFactory, logger *infra.Logger) (*Session, error) {
	if logger == nil {
		logger = infra.NopLogger()
	}
	s := &Session{build: build, logger: logger}
	if err := s.SetCredential(""); err != nil {
		return nil, err
	}
	return s, nil
}

// Client returns the client built from the latest credential.
func (s *Session) Client() *genai.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

// SetCredential rebuilds the client for apiKey. The previous client is kept
// when the rebuild fails.
func (s *Session) SetCredential(apiKey string) error {
	c, err := s.build(apiKey)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.client = c
	s.mu.Unlock()
	return nil
}

// Subscribe keeps the session in sync with credential changes on bus.
func (s *Session) Subscribe(bus *events.Bus) (unsubscribe func()) {
	return bus.CredentialUpdated.Subscribe(s.onCredentialUpdated)
}

func (s *Session) onCredentialUpdated(_ context.Context, ev events.CredentialUpdated) {
	if err := s.SetCredential(ev.Value); err != nil {
		s.logger.Error().Err(err).Msg("session: rebuild gemini client")
		return
	}
	s.logger.Info().Bool("has_credential", ev.Value != "").Msg("session: gemini client rebuilt")
}

// Validate checks a candidate key with a throwaway client, leaving the
// current client untouched. It satisfies credentials.Validator.
func (s *Session) Validate(ctx context.Context, apiKey string) bool {
	c, err := s.build(apiKey)
	if err != nil {
		s.logger.Debug().Err(err).Msg("session: build validation client")
		return false
	}
	return c.ValidateCredential(ctx)
}
