package config

import (
	"errors"
	"fmt"
	"time"

	domainconfig "github.com/felixgeelhaar/suggest-go/domain/config"
	"github.com/felixgeelhaar/suggest-go/domain/cooldown"
	"github.com/felixgeelhaar/suggest-go/domain/notification"
	"github.com/felixgeelhaar/suggest-go/domain/suggestion"
	"github.com/felixgeelhaar/suggest-go/infrastructure/logging"
	infranotif "github.com/felixgeelhaar/suggest-go/infrastructure/notification"
	"github.com/felixgeelhaar/suggest-go/infrastructure/resilience"
	"github.com/felixgeelhaar/suggest-go/infrastructure/storage/badger"
	"github.com/felixgeelhaar/suggest-go/infrastructure/storage/memory"
	"github.com/felixgeelhaar/suggest-go/infrastructure/storage/redis"
	"github.com/felixgeelhaar/suggest-go/infrastructure/storage/sqlite"
)

// Builder builds engine components from configuration.
type Builder struct {
	config *domainconfig.Config
}

// NewBuilder creates a new configuration builder.
func NewBuilder(config *domainconfig.Config) *Builder {
	return &Builder{config: config}
}

// BuildResult contains the built components from configuration.
type BuildResult struct {
	// Settings is the detector settings view of the configuration.
	Settings *domainconfig.Config
	// HistoryCapacity is the action history size.
	HistoryCapacity int
	// Cooldown is the configured cooldown store.
	Cooldown cooldown.Store
	// Webhook is the configured webhook presenter (nil if disabled).
	Webhook *infranotif.WebhookPresenter
	// Presenter is Webhook behind a timeout and circuit breaker (nil if
	// disabled). Engines should present through it.
	Presenter suggestion.Presenter
	// Logging is the logger configuration.
	Logging logging.Config

	closers []func() error
}

// Close releases every component that holds resources.
func (r *BuildResult) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// Build creates all components from the configuration.
func (b *Builder) Build() (*BuildResult, error) {
	if b.config == nil {
		return nil, fmt.Errorf("%w: nil configuration", domainconfig.ErrBuildFailed)
	}

	result := &BuildResult{
		Settings:        b.config,
		HistoryCapacity: b.config.History.Capacity,
		Logging:         b.buildLogging(),
	}

	if err := b.buildCooldown(result); err != nil {
		_ = result.Close()
		return nil, err
	}
	b.buildWebhook(result)

	return result, nil
}

func (b *Builder) buildLogging() logging.Config {
	cfg := logging.DefaultConfig()
	if b.config.Logging.Level != "" {
		cfg.Level = b.config.Logging.Level
	}
	if b.config.Logging.Format != "" {
		cfg.Format = b.config.Logging.Format
	}
	return cfg
}

func (b *Builder) buildCooldown(result *BuildResult) error {
	type closingStore interface {
		cooldown.Store
		Close() error
	}

	var (
		store closingStore
		err   error
	)

	cfg := b.config.Cooldown
	switch cfg.Backend {
	case "", domainconfig.BackendMemory:
		result.Cooldown = memory.NewCooldownStore()
		return nil
	case domainconfig.BackendBadger:
		store, err = badger.NewCooldownStore(badger.DefaultConfig(), badger.WithDir(cfg.Dir))
	case domainconfig.BackendSQLite:
		store, err = sqlite.NewCooldownStore(sqlite.DefaultConfig(), sqlite.WithPath(cfg.Path))
	case domainconfig.BackendRedis:
		opts := []redis.ConfigOption{
			redis.WithAddress(cfg.Redis.Address),
			redis.WithPassword(cfg.Redis.Password),
			redis.WithDB(cfg.Redis.DB),
		}
		if cfg.Redis.KeyPrefix != "" {
			opts = append(opts, redis.WithKeyPrefix(cfg.Redis.KeyPrefix))
		}
		store, err = redis.NewCooldownStore(redis.DefaultConfig(), opts...)
	default:
		return fmt.Errorf("%w: unknown cooldown backend %q", domainconfig.ErrBuildFailed, cfg.Backend)
	}
	if err != nil {
		return fmt.Errorf("%w: cooldown store: %w", domainconfig.ErrBuildFailed, err)
	}

	result.Cooldown = store
	result.closers = append(result.closers, store.Close)
	return nil
}

func (b *Builder) buildWebhook(result *BuildResult) {
	wh := b.config.Webhook
	if !wh.Enabled {
		return
	}

	endpoints := make([]*notification.Endpoint, 0, len(wh.Endpoints))
	for _, ep := range wh.Endpoints {
		endpoint := &notification.Endpoint{
			Name:    ep.Name,
			URL:     ep.URL,
			Enabled: ep.Enabled,
			Secret:  ep.Secret,
			Headers: ep.Headers,
		}
		if len(ep.Detectors) > 0 {
			endpoint.Filter = notification.FilterByDetector(ep.Detectors...)
		}
		endpoints = append(endpoints, endpoint)
	}

	cfg := infranotif.DefaultWebhookConfig()
	cfg.Endpoints = endpoints
	cfg.EnableBatching = wh.Batching.Enabled
	if wh.Batching.Enabled {
		if wh.Batching.MaxSize > 0 {
			cfg.BatcherConfig.MaxBatchSize = wh.Batching.MaxSize
		}
		if wait := wh.Batching.MaxWait.Duration(); wait > 0 {
			cfg.BatcherConfig.MaxWait = wait
		}
	}
	if timeout := wh.Timeout.Duration(); timeout > 0 {
		cfg.SenderConfig.Timeout = timeout
	}
	if wh.MaxRetries > 0 {
		cfg.SenderConfig.MaxRetries = wh.MaxRetries
	}

	presenter := infranotif.NewWebhookPresenter(cfg)
	result.Webhook = presenter
	result.Presenter = resilience.NewPresenterWithOptions(presenter,
		resilience.WithTimeout(cfg.SenderConfig.Timeout*time.Duration(cfg.SenderConfig.MaxRetries+1)),
	)
	result.closers = append(result.closers, presenter.Close)
}
