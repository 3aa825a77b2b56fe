package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/suggest-go/domain/notification"
)

// SenderConfig configures the HTTP sender.
type SenderConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration
	// MaxRetries is the maximum number of attempts per delivery.
	MaxRetries int
	// RetryDelay is the initial delay between retries.
	RetryDelay time.Duration
	// CircuitBreakerThreshold is consecutive failures before opening circuit.
	CircuitBreakerThreshold int
	// CircuitBreakerTimeout is how long circuit stays open.
	CircuitBreakerTimeout time.Duration
	// UserAgent is the User-Agent header value.
	UserAgent string
}

// DefaultSenderConfig returns sensible default configuration.
func DefaultSenderConfig() SenderConfig {
	return SenderConfig{
		Timeout:                 10 * time.Second,
		MaxRetries:              3,
		RetryDelay:              500 * time.Millisecond,
		CircuitBreakerThreshold: 5,
		CircuitBreakerTimeout:   30 * time.Second,
		UserAgent:               "suggest-go-webhook/1.0",
	}
}

// Sender delivers batches of events to one endpoint at a time, retrying
// server errors and tripping a per-endpoint circuit breaker.
type Sender struct {
	config   SenderConfig
	client   *http.Client
	signer   *Signer
	breakers map[string]circuitbreaker.CircuitBreaker[*http.Response]
	retrier  retry.Retry[*http.Response]
	mu       sync.RWMutex
}

// NewSender creates a new HTTP sender. Zero fields take their defaults.
func NewSender(config SenderConfig) *Sender {
	defaults := DefaultSenderConfig()
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = defaults.MaxRetries
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = defaults.RetryDelay
	}
	if config.CircuitBreakerThreshold <= 0 {
		config.CircuitBreakerThreshold = defaults.CircuitBreakerThreshold
	}
	if config.CircuitBreakerTimeout <= 0 {
		config.CircuitBreakerTimeout = defaults.CircuitBreakerTimeout
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}

	return &Sender{
		config:   config,
		client:   &http.Client{Timeout: config.Timeout},
		signer:   NewSigner(),
		breakers: make(map[string]circuitbreaker.CircuitBreaker[*http.Response]),
		retrier: retry.New[*http.Response](retry.Config{
			MaxAttempts:   config.MaxRetries,
			InitialDelay:  config.RetryDelay,
			BackoffPolicy: retry.BackoffExponential,
			Multiplier:    2.0,
			// 4xx responses are final.
			NonRetryableErrors: []error{notification.ErrEndpointRejected},
		}),
	}
}

// Send delivers a single event.
func (s *Sender) Send(ctx context.Context, endpoint *notification.Endpoint, event *notification.Event) error {
	return s.SendBatch(ctx, endpoint, []*notification.Event{event})
}

// SendBatch delivers events as one JSON array.
func (s *Sender) SendBatch(ctx context.Context, endpoint *notification.Endpoint, events []*notification.Event) error {
	if endpoint == nil || endpoint.URL == "" {
		return notification.ErrInvalidEndpoint
	}

	payload, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("failed to serialize events: %w", err)
	}

	breaker := s.getBreaker(endpoint.URL)

	_, err = breaker.Execute(ctx, func(ctx context.Context) (*http.Response, error) {
		return s.retrier.Do(ctx, func(ctx context.Context) (*http.Response, error) {
			return s.post(ctx, endpoint, payload)
		})
	})
	return err
}

// post performs one attempt. The request is rebuilt per attempt so the body
// is never replayed from a drained reader.
func (s *Sender) post(ctx context.Context, endpoint *notification.Endpoint, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", notification.ErrInvalidEndpoint, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.config.UserAgent)
	for key, value := range endpoint.Headers {
		req.Header.Set(key, value)
	}
	if endpoint.Secret != "" {
		for key, value := range s.signer.Headers(payload, endpoint.Secret) {
			req.Header.Set(key, value)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", notification.ErrEndpointUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return resp, nil
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: server error %d: %s", notification.ErrEndpointUnavailable, resp.StatusCode, string(body))
	default:
		return nil, fmt.Errorf("%w: status %d: %s", notification.ErrEndpointRejected, resp.StatusCode, string(body))
	}
}

func (s *Sender) getBreaker(url string) circuitbreaker.CircuitBreaker[*http.Response] {
	s.mu.RLock()
	breaker, exists := s.breakers[url]
	s.mu.RUnlock()
	if exists {
		return breaker
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if breaker, exists = s.breakers[url]; exists {
		return breaker
	}

	threshold := uint32(s.config.CircuitBreakerThreshold) // #nosec G115 -- positive after defaults
	breaker = circuitbreaker.New[*http.Response](circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    s.config.CircuitBreakerTimeout,
		Timeout:     s.config.CircuitBreakerTimeout,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	})
	s.breakers[url] = breaker

	return breaker
}

// BreakerState returns the circuit breaker state for an endpoint, or
// "unknown" before the first delivery to it.
func (s *Sender) BreakerState(url string) string {
	s.mu.RLock()
	breaker, exists := s.breakers[url]
	s.mu.RUnlock()

	if !exists {
		return "unknown"
	}
	return breaker.State().String()
}
