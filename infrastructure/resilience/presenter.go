// Package resilience guards presenters that do I/O using fortify.
package resilience

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/suggest-go/domain/suggestion"
)

// Presenter wraps a presenter with a bulkhead, a timeout, a circuit breaker
// and optional retries. Once the breaker opens, suggestions are dropped
// without reaching the wrapped presenter until it half-opens again.
type Presenter struct {
	next     suggestion.Presenter
	bulkhead bulkhead.Bulkhead[struct{}]
	breaker  circuitbreaker.CircuitBreaker[struct{}]
	retry    retry.Retry[struct{}]
	attempts int
	timeout  time.Duration
}

// PresenterConfig configures the guarded presenter.
type PresenterConfig struct {
	// MaxConcurrent limits concurrent presentations.
	MaxConcurrent int

	// CircuitBreakerThreshold is the number of consecutive failures before
	// opening.
	CircuitBreakerThreshold int

	// CircuitBreakerTimeout is how long the circuit stays open.
	CircuitBreakerTimeout time.Duration

	// RetryMaxAttempts is the number of attempts per suggestion. One means
	// no retry.
	RetryMaxAttempts int

	// RetryInitialDelay is the initial delay between retries.
	RetryInitialDelay time.Duration

	// RetryBackoffMultiplier is the exponential backoff multiplier.
	RetryBackoffMultiplier float64

	// Timeout bounds one presentation including retries.
	Timeout time.Duration
}

// DefaultPresenterConfig returns the configuration used by NewPresenter.
func DefaultPresenterConfig() PresenterConfig {
	return PresenterConfig{
		MaxConcurrent:           4,
		CircuitBreakerThreshold: 5,
		CircuitBreakerTimeout:   30 * time.Second,
		RetryMaxAttempts:        1,
		RetryInitialDelay:       100 * time.Millisecond,
		RetryBackoffMultiplier:  2.0,
		Timeout:                 2 * time.Second,
	}
}

// NewPresenter guards next with config.
func NewPresenter(next suggestion.Presenter, config PresenterConfig) *Presenter {
	defaults := DefaultPresenterConfig()
	maxConcurrent := config.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = defaults.MaxConcurrent
	}
	threshold := config.CircuitBreakerThreshold
	if threshold <= 0 {
		threshold = defaults.CircuitBreakerThreshold
	}
	attempts := config.RetryMaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaults.Timeout
	}

	return &Presenter{
		next: next,
		bulkhead: bulkhead.New[struct{}](bulkhead.Config{
			MaxConcurrent: maxConcurrent,
		}),
		breaker: circuitbreaker.New[struct{}](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    config.CircuitBreakerTimeout,
			Timeout:     config.CircuitBreakerTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(threshold) // #nosec G115 -- threshold is positive
			},
		}),
		retry: retry.New[struct{}](retry.Config{
			MaxAttempts:   attempts,
			InitialDelay:  config.RetryInitialDelay,
			BackoffPolicy: retry.BackoffExponential,
			Multiplier:    config.RetryBackoffMultiplier,
		}),
		attempts: attempts,
		timeout:  timeout,
	}
}

// Present implements suggestion.Presenter.
// Composition order: Bulkhead → Timeout → Circuit Breaker → Retry
func (p *Presenter) Present(ctx context.Context, session suggestion.Session, s suggestion.Suggestion) error {
	present := func(ctx context.Context) (struct{}, error) {
		return struct{}{}, p.next.Present(ctx, session, s)
	}

	_, err := p.bulkhead.Execute(ctx, func(ctx context.Context) (struct{}, error) {
		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		return p.breaker.Execute(ctx, func(ctx context.Context) (struct{}, error) {
			if p.attempts > 1 {
				return p.retry.Do(ctx, present)
			}
			return present(ctx)
		})
	})
	return err
}

// CircuitBreakerState returns the current state of the circuit breaker.
func (p *Presenter) CircuitBreakerState() circuitbreaker.State {
	return p.breaker.State()
}

var _ suggestion.Presenter = (*Presenter)(nil)
