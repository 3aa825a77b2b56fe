package notification

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/suggest-go/domain/notification"
	"github.com/felixgeelhaar/suggest-go/domain/suggestion"
	"github.com/felixgeelhaar/suggest-go/infrastructure/logging"
)

// WebhookConfig configures the webhook presenter.
type WebhookConfig struct {
	// Endpoints are the webhook endpoints to notify.
	Endpoints []*notification.Endpoint
	// EnableBatching enables event batching.
	EnableBatching bool
	// BatcherConfig configures the batcher (if enabled).
	BatcherConfig BatcherConfig
	// SenderConfig configures the HTTP sender.
	SenderConfig SenderConfig
	// GlobalFilter is applied to all events before endpoint filters.
	GlobalFilter notification.EventFilter
}

// DefaultWebhookConfig returns sensible defaults.
func DefaultWebhookConfig() WebhookConfig {
	return WebhookConfig{
		EnableBatching: true,
		BatcherConfig:  DefaultBatcherConfig(),
		SenderConfig:   DefaultSenderConfig(),
	}
}

// WebhookPresenter presents suggestions by posting them to webhook
// endpoints. With batching enabled Present only queues the event, so the
// engine never waits on the network.
type WebhookPresenter struct {
	config    WebhookConfig
	endpoints []*notification.Endpoint
	sender    *Sender
	batcher   *Batcher
	closed    bool
	mu        sync.RWMutex
}

// NewWebhookPresenter creates a new webhook presenter.
func NewWebhookPresenter(config WebhookConfig) *WebhookPresenter {
	w := &WebhookPresenter{
		config:    config,
		endpoints: append([]*notification.Endpoint(nil), config.Endpoints...),
		sender:    NewSender(config.SenderConfig),
	}

	if config.EnableBatching {
		batcherConfig := config.BatcherConfig
		batcherConfig.OnBatch = w.sendToAllEndpoints
		w.batcher = NewBatcher(batcherConfig)
	}

	return w
}

// Present implements suggestion.Presenter.
func (w *WebhookPresenter) Present(ctx context.Context, session suggestion.Session, s suggestion.Suggestion) error {
	if s.IsNone() {
		return suggestion.ErrNoneSuggestion
	}

	event, err := notification.SuggestionEvent(session, s)
	if err != nil {
		return err
	}
	return w.Notify(ctx, event)
}

// Notify implements notification.Notifier.
func (w *WebhookPresenter) Notify(ctx context.Context, event *notification.Event) error {
	w.mu.RLock()
	closed := w.closed
	w.mu.RUnlock()
	if closed {
		return notification.ErrNotifierClosed
	}

	if w.config.GlobalFilter != nil && !w.config.GlobalFilter(event) {
		return nil
	}

	if w.batcher != nil {
		return w.batcher.Add(ctx, event)
	}
	return w.sendToAllEndpoints(ctx, []*notification.Event{event})
}

// Flush immediately sends any pending batched events.
func (w *WebhookPresenter) Flush(ctx context.Context) error {
	if w.batcher != nil {
		return w.batcher.Flush(ctx)
	}
	return nil
}

// Close flushes pending events and rejects further ones.
func (w *WebhookPresenter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	if w.batcher != nil {
		return w.batcher.Close(context.Background())
	}
	return nil
}

// AddEndpoint adds a new endpoint.
func (w *WebhookPresenter) AddEndpoint(endpoint *notification.Endpoint) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.endpoints = append(w.endpoints, endpoint)
}

// RemoveEndpoint removes every endpoint with the given URL.
func (w *WebhookPresenter) RemoveEndpoint(url string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	filtered := make([]*notification.Endpoint, 0, len(w.endpoints))
	for _, ep := range w.endpoints {
		if ep.URL != url {
			filtered = append(filtered, ep)
		}
	}
	w.endpoints = filtered
}

// Endpoints returns a copy of the configured endpoints.
func (w *WebhookPresenter) Endpoints() []*notification.Endpoint {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]*notification.Endpoint(nil), w.endpoints...)
}

// sendToAllEndpoints delivers events to every enabled endpoint in parallel
// and returns the first failure.
func (w *WebhookPresenter) sendToAllEndpoints(ctx context.Context, events []*notification.Event) error {
	var (
		wg       sync.WaitGroup
		firstErr error
		errMu    sync.Mutex
	)

	for _, endpoint := range w.Endpoints() {
		if !endpoint.Enabled {
			continue
		}

		endpointEvents := events
		if endpoint.Filter != nil {
			endpointEvents = nil
			for _, event := range events {
				if endpoint.Filter(event) {
					endpointEvents = append(endpointEvents, event)
				}
			}
		}
		if len(endpointEvents) == 0 {
			continue
		}

		wg.Add(1)
		go func(ep *notification.Endpoint, evts []*notification.Event) {
			defer wg.Done()

			if err := w.sender.SendBatch(ctx, ep, evts); err != nil {
				logging.Warn().
					Add(logging.Component("webhook")).
					Add(logging.Str("endpoint", ep.URL)).
					Add(logging.Str("endpoint_name", ep.Name)).
					Add(logging.Int("event_count", len(evts))).
					Add(logging.ErrorField(err)).
					Msg("webhook delivery failed")

				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
				return
			}

			logging.Debug().
				Add(logging.Component("webhook")).
				Add(logging.Str("endpoint", ep.URL)).
				Add(logging.Int("event_count", len(evts))).
				Msg("webhook delivered")
		}(endpoint, endpointEvents)
	}

	wg.Wait()
	return firstErr
}

var (
	_ suggestion.Presenter  = (*WebhookPresenter)(nil)
	_ notification.Notifier = (*WebhookPresenter)(nil)
)
