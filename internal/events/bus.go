// Package events carries process-wide notifications between the credential
// store and the feature controllers.
package events

import (
	"context"
	"sync"
)

// CredentialUpdated announces that the stored API key changed. An empty Value
// means the credential was cleared.
type CredentialUpdated struct {
	Value string
}

// ImageSelected announces the product image the user picked.
type ImageSelected struct {
	FileName string
	MIMEType string
	Data     []byte
	DataURL  string
}

// Topic is a typed broadcast channel. Handlers run synchronously on the
// publisher's goroutine, in subscription order.
type Topic[T any] struct {
	mu       sync.RWMutex
	next     int
	handlers []subscription[T]
}

type subscription[T any] struct {
	id int
	fn func(context.Context, T)
}

// Subscribe registers fn and returns a function that removes it.
func (t *Topic[T]) Subscribe(fn func(context.Context, T)) (unsubscribe func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	id := t.next
	t.handlers = append(t.handlers, subscription[T]{id: id, fn: fn})
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		for i, s := range t.handlers {
			if s.id == id {
				t.handlers = append(t.handlers[:i:i], t.handlers[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers ev to every current subscriber.
func (t *Topic[T]) Publish(ctx context.Context, ev T) {
	t.mu.RLock()
	handlers := make([]subscription[T], len(t.handlers))
	copy(handlers, t.handlers)
	t.mu.RUnlock()

	for _, s := range handlers {
		s.fn(ctx, ev)
	}
}

// Len reports the number of subscribers.
func (t *Topic[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.handlers)
}

// Bus groups the application's topics.
type Bus struct {
	CredentialUpdated Topic[CredentialUpdated]
	ImageSelected     Topic[ImageSelected]
}

func NewBus() *Bus {
	return &Bus{}
}

// PublishCredentialUpdated satisfies the credential store's publisher contract.
func (b *Bus) PublishCredentialUpdated(ctx context.Context, value string) {
	b.CredentialUpdated.Publish(ctx, CredentialUpdated{Value: value})
}
