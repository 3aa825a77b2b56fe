// Package notification delivers presented suggestions to webhook endpoints.
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/felixgeelhaar/suggest-go/domain/notification"
)

// BatcherConfig configures the event batcher.
type BatcherConfig struct {
	// MaxBatchSize is the maximum number of events per batch.
	MaxBatchSize int
	// MaxWait is the maximum time to wait before flushing a batch.
	MaxWait time.Duration
	// OnBatch is called when a batch is ready to send.
	OnBatch func(ctx context.Context, events []*notification.Event) error
}

// DefaultBatcherConfig returns a sensible default configuration.
func DefaultBatcherConfig() BatcherConfig {
	return BatcherConfig{
		MaxBatchSize: 20,
		MaxWait:      2 * time.Second,
	}
}

// Batcher accumulates events and flushes them in batches, either when the
// batch is full or MaxWait after its first event.
type Batcher struct {
	config BatcherConfig
	events []*notification.Event
	timer  *time.Timer
	closed bool
	mu     sync.Mutex
}

// NewBatcher creates a new event batcher.
func NewBatcher(config BatcherConfig) *Batcher {
	defaults := DefaultBatcherConfig()
	if config.MaxBatchSize <= 0 {
		config.MaxBatchSize = defaults.MaxBatchSize
	}
	if config.MaxWait <= 0 {
		config.MaxWait = defaults.MaxWait
	}

	return &Batcher{
		config: config,
		events: make([]*notification.Event, 0, config.MaxBatchSize),
	}
}

// Add queues an event, flushing immediately when the batch is full.
func (b *Batcher) Add(ctx context.Context, event *notification.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return notification.ErrNotifierClosed
	}

	b.events = append(b.events, event)

	// The timer outlives the caller's request.
	if b.timer == nil {
		detached := context.WithoutCancel(ctx)
		b.timer = time.AfterFunc(b.config.MaxWait, func() {
			_ = b.Flush(detached)
		})
	}

	if len(b.events) >= b.config.MaxBatchSize {
		return b.flushLocked(ctx)
	}
	return nil
}

// Flush flushes any pending events immediately.
func (b *Batcher) Flush(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flushLocked(ctx)
}

func (b *Batcher) flushLocked(ctx context.Context) error {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if len(b.events) == 0 {
		return nil
	}

	events := make([]*notification.Event, len(b.events))
	copy(events, b.events)
	b.events = b.events[:0]

	if b.config.OnBatch != nil {
		return b.config.OnBatch(ctx, events)
	}
	return nil
}

// Close rejects further events and flushes any remaining ones.
func (b *Batcher) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	return b.flushLocked(ctx)
}

// PendingCount returns the number of events waiting to be flushed.
func (b *Batcher) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}
