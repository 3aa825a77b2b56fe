// Package event provides the publisher that journals engine events and
// fans them out to listeners.
package event

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/suggest-go/domain/event"
)

// Publisher publishes events to an optional event store and to listeners.
type Publisher struct {
	store     event.Store
	listeners []event.Listener
	buffer    []event.Event
	bufSize   int
	closed    bool
	mu        sync.Mutex
}

// PublisherOption configures the publisher.
type PublisherOption func(*Publisher)

// WithBufferSize sets the event buffer size. Buffering only delays store
// writes; listeners always see events on Publish.
func WithBufferSize(size int) PublisherOption {
	return func(p *Publisher) {
		p.bufSize = size
	}
}

// WithListener registers a listener called synchronously for every event.
func WithListener(l event.Listener) PublisherOption {
	return func(p *Publisher) {
		if l != nil {
			p.listeners = append(p.listeners, l)
		}
	}
}

// NewPublisher creates a new event publisher. A nil store publishes to
// listeners only.
func NewPublisher(store event.Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		store: store,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufSize > 0 {
		p.buffer = make([]event.Event, 0, p.bufSize)
	}
	return p
}

// Publish notifies listeners and sends events to the event store.
func (p *Publisher) Publish(ctx context.Context, events ...event.Event) error {
	if len(events) == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return event.ErrPublisherClosed
	}

	for _, e := range events {
		for _, l := range p.listeners {
			l(e)
		}
	}

	if p.store == nil {
		return nil
	}

	if p.bufSize == 0 {
		return p.store.Append(ctx, events...)
	}

	p.buffer = append(p.buffer, events...)
	if len(p.buffer) >= p.bufSize {
		return p.flush(ctx)
	}

	return nil
}

// Flush writes all buffered events to the store.
func (p *Publisher) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flush(ctx)
}

// flush writes buffered events to the store (must hold lock).
func (p *Publisher) flush(ctx context.Context) error {
	if p.store == nil || len(p.buffer) == 0 {
		return nil
	}

	if err := p.store.Append(ctx, p.buffer...); err != nil {
		return err
	}

	p.buffer = p.buffer[:0]
	return nil
}

// Close flushes remaining events. Publish fails with
// event.ErrPublisherClosed afterwards.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	return p.flush(context.Background())
}

// Ensure Publisher implements event.Publisher
var _ event.Publisher = (*Publisher)(nil)
