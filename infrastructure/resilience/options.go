package resilience

import (
	"time"

	"github.com/felixgeelhaar/suggest-go/domain/suggestion"
)

// Option configures the guarded presenter.
type Option func(*PresenterConfig)

// WithMaxConcurrent sets the maximum concurrent presentations.
func WithMaxConcurrent(n int) Option {
	return func(c *PresenterConfig) {
		c.MaxConcurrent = n
	}
}

// WithCircuitBreakerThreshold sets the failure threshold for circuit breaker.
func WithCircuitBreakerThreshold(n int) Option {
	return func(c *PresenterConfig) {
		c.CircuitBreakerThreshold = n
	}
}

// WithCircuitBreakerTimeout sets the circuit breaker open duration.
func WithCircuitBreakerTimeout(d time.Duration) Option {
	return func(c *PresenterConfig) {
		c.CircuitBreakerTimeout = d
	}
}

// WithRetryAttempts sets the number of attempts per suggestion.
func WithRetryAttempts(n int) Option {
	return func(c *PresenterConfig) {
		c.RetryMaxAttempts = n
	}
}

// WithRetryDelay sets the initial retry delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *PresenterConfig) {
		c.RetryInitialDelay = d
	}
}

// WithTimeout sets the per-presentation timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *PresenterConfig) {
		c.Timeout = d
	}
}

// NewPresenterWithOptions guards next with the given options.
func NewPresenterWithOptions(next suggestion.Presenter, opts ...Option) *Presenter {
	config := DefaultPresenterConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return NewPresenter(next, config)
}
