package application

import (
	"time"

	"github.com/felixgeelhaar/suggest-go/domain/cooldown"
	"github.com/felixgeelhaar/suggest-go/domain/detector"
	"github.com/felixgeelhaar/suggest-go/domain/event"
	"github.com/felixgeelhaar/suggest-go/domain/language"
	"github.com/felixgeelhaar/suggest-go/domain/suggestion"
	"github.com/felixgeelhaar/suggest-go/infrastructure/telemetry"
)

// Option configures the engine.
type Option func(*EngineConfig)

// WithSession sets the session the engine serves.
func WithSession(s suggestion.Session) Option {
	return func(c *EngineConfig) {
		c.Session = s
	}
}

// WithHistoryCapacity sets the number of actions kept.
func WithHistoryCapacity(n int) Option {
	return func(c *EngineConfig) {
		c.HistoryCapacity = n
	}
}

// WithResolver sets the language resolver.
func WithResolver(r language.Resolver) Option {
	return func(c *EngineConfig) {
		c.Resolver = r
	}
}

// WithDetectors sets the detectors in dispatch order.
func WithDetectors(detectors ...detector.Detector) Option {
	return func(c *EngineConfig) {
		c.Detectors = detectors
	}
}

// WithSettings sets the user settings.
func WithSettings(s detector.Settings) Option {
	return func(c *EngineConfig) {
		c.Settings = s
	}
}

// WithCooldownStore sets where presentation times are kept. The default is
// an in-memory store.
func WithCooldownStore(s cooldown.Store) Option {
	return func(c *EngineConfig) {
		c.Cooldown = s
	}
}

// WithPresenter sets the presenter.
func WithPresenter(p suggestion.Presenter) Option {
	return func(c *EngineConfig) {
		c.Presenter = p
	}
}

// WithPublisher sets the event publisher.
func WithPublisher(p event.Publisher) Option {
	return func(c *EngineConfig) {
		c.Publisher = p
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m telemetry.Metrics) Option {
	return func(c *EngineConfig) {
		c.Metrics = m
	}
}

// WithTracer sets the tracer.
func WithTracer(t *telemetry.Tracer) Option {
	return func(c *EngineConfig) {
		c.Tracer = t
	}
}

// WithClock sets the time source used for cooldowns.
func WithClock(now func() time.Time) Option {
	return func(c *EngineConfig) {
		c.Clock = now
	}
}

// NewEngineWithOptions creates an engine with functional options.
func NewEngineWithOptions(opts ...Option) (*Engine, error) {
	config := EngineConfig{}
	for _, opt := range opts {
		opt(&config)
	}
	return NewEngine(config)
}
