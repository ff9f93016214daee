package controller

import (
	"context"
	"sync"

	"listingai/internal/events"
	"listingai/internal/providers/genai"
)

// selection tracks the most recently selected product image.
type selection struct {
	mu    sync.RWMutex
	image *genai.InlineImage
	name  string
}

func (s *selection) onSelected(_ context.Context, ev events.ImageSelected) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(ev.Data) == 0 {
		s.image = nil
		s.name = ""
		return
	}
	s.image = &genai.InlineImage{MIMEType: ev.MIMEType, Data: ev.Data}
	s.name = ev.FileName
}

// pick prefers an explicit override, then the last selection.
func (s *selection) pick(override *genai.InlineImage) (*genai.InlineImage, bool) {
	if override != nil && len(override.Data) > 0 {
		return override, true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.image == nil {
		return nil, false
	}
	img := *s.image
	return &img, true
}

func (s *selection) fileName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}
