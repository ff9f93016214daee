package credentials

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// MemoryBackend keeps values for the lifetime of the process.
type MemoryBackend struct {
	items *cache.Cache
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{items: cache.New(cache.NoExpiration, 0)}
}

func (m *MemoryBackend) Load(_ context.Context, key string) (string, bool, error) {
	v, ok := m.items.Get(key)
	if !ok {
		return "", false, nil
	}
	s, _ := v.(string)
	return s, true, nil
}

func (m *MemoryBackend) Save(_ context.Context, key, value string) error {
	m.items.Set(key, value, cache.NoExpiration)
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.items.Delete(key)
	return nil
}
