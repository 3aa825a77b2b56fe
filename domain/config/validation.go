package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Path is the dotted path to the invalid field.
	Path string
	// Message describes the validation error.
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(e), strings.Join(msgs, "\n  - "))
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates engine configuration.
type Validator struct {
	known  map[string]bool
	errors ValidationErrors
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithKnownDetectors rejects detector settings for ids not in ids.
func WithKnownDetectors(ids ...string) ValidatorOption {
	return func(v *Validator) {
		v.known = make(map[string]bool, len(ids))
		for _, id := range ids {
			v.known[id] = true
		}
	}
}

// NewValidator creates a new validator.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate validates the configuration and returns every error found.
func (v *Validator) Validate(config *Config) ValidationErrors {
	v.errors = nil

	if config.Version == "" {
		v.addError("version", "version is required")
	}
	if config.History.Capacity <= 0 {
		v.addError("history.capacity", "capacity must be positive")
	}
	if config.IntervalDays < 0 {
		v.addError("suggesting_interval_days", "interval must be non-negative")
	}

	v.validateDetectors(config)
	v.validateLogging(config)
	v.validateCooldown(config)
	v.validateWebhook(config)

	return v.errors
}

func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: message})
}

func (v *Validator) validateDetectors(config *Config) {
	for id := range config.Detectors {
		if id == "" {
			v.addError("detectors", "detector id must not be empty")
			continue
		}
		if v.known != nil && !v.known[id] {
			v.addError("detectors."+id, "unknown detector")
		}
	}
}

func (v *Validator) validateLogging(config *Config) {
	switch strings.ToLower(config.Logging.Level) {
	case "", "trace", "debug", "info", "warn", "warning", "error":
	default:
		v.addError("logging.level", fmt.Sprintf("invalid level: %s", config.Logging.Level))
	}

	switch config.Logging.Format {
	case "", "console", "json":
	default:
		v.addError("logging.format", fmt.Sprintf("invalid format: %s", config.Logging.Format))
	}
}

func (v *Validator) validateCooldown(config *Config) {
	switch config.Cooldown.Backend {
	case "", BackendMemory:
	case BackendBadger:
		if config.Cooldown.Dir == "" {
			v.addError("cooldown.dir", "dir is required for the badger backend")
		}
	case BackendSQLite:
		if config.Cooldown.Path == "" {
			v.addError("cooldown.path", "path is required for the sqlite backend")
		}
	case BackendRedis:
		if config.Cooldown.Redis.Address == "" {
			v.addError("cooldown.redis.address", "address is required for the redis backend")
		}
		if config.Cooldown.Redis.DB < 0 {
			v.addError("cooldown.redis.db", "db must be non-negative")
		}
	default:
		v.addError("cooldown.backend", fmt.Sprintf("invalid backend: %s", config.Cooldown.Backend))
	}
}

func (v *Validator) validateWebhook(config *Config) {
	if !config.Webhook.Enabled {
		return
	}

	if len(config.Webhook.Endpoints) == 0 {
		v.addError("webhook.endpoints", "at least one endpoint is required when enabled")
	}

	for i, ep := range config.Webhook.Endpoints {
		path := fmt.Sprintf("webhook.endpoints[%d]", i)
		if ep.URL == "" {
			v.addError(path+".url", "URL is required")
		} else if u, err := url.Parse(ep.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			v.addError(path+".url", fmt.Sprintf("invalid URL: %s", ep.URL))
		}
		for j, id := range ep.Detectors {
			if id == "" {
				v.addError(fmt.Sprintf("%s.detectors[%d]", path, j), "detector id must not be empty")
			}
		}
	}

	if config.Webhook.Batching.Enabled && config.Webhook.Batching.MaxSize <= 0 {
		v.addError("webhook.batching.max_size", "max_size must be positive when enabled")
	}
	if config.Webhook.MaxRetries < 0 {
		v.addError("webhook.max_retries", "max_retries must be non-negative")
	}
}
