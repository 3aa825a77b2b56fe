// Package config provides the configuration model of the suggestion engine.
package config

import (
	"time"

	"github.com/felixgeelhaar/suggest-go/domain/detector"
)

// Defaults applied before a file is decoded; keys absent from the file keep
// these values.
const (
	DefaultHistoryCapacity = 100
	DefaultIntervalDays    = 14
)

// Config represents the complete engine configuration.
type Config struct {
	// Name is a human-readable name for this configuration.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Version is the configuration schema version.
	Version string `json:"version" yaml:"version"`

	// History configures the action history.
	History HistoryConfig `json:"history" yaml:"history"`
	// IntervalDays is the minimum number of days between two presented
	// suggestions of the same detector. Zero disables the cooldown.
	IntervalDays int `json:"suggesting_interval_days" yaml:"suggesting_interval_days"`
	// Detectors holds per-detector settings keyed by detector id.
	Detectors map[string]DetectorConfig `json:"detectors,omitempty" yaml:"detectors,omitempty"`

	// Logging configures the logger.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
	// Cooldown selects where last-presented times are stored.
	Cooldown CooldownConfig `json:"cooldown" yaml:"cooldown"`
	// Webhook configures the webhook presenter.
	Webhook WebhookConfig `json:"webhook,omitempty" yaml:"webhook,omitempty"`
}

// HistoryConfig configures the action history.
type HistoryConfig struct {
	// Capacity is the number of actions kept.
	Capacity int `json:"capacity" yaml:"capacity"`
}

// DetectorConfig configures one detector.
type DetectorConfig struct {
	// Enabled turns the detector on or off. Unset means enabled.
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	// Level is trace, debug, info, warn or error.
	Level string `json:"level" yaml:"level"`
	// Format is console or json.
	Format string `json:"format" yaml:"format"`
}

// Cooldown backends.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// CooldownConfig selects the cooldown store.
type CooldownConfig struct {
	// Backend is memory, badger, sqlite or redis.
	Backend string `json:"backend" yaml:"backend"`
	// Dir is the badger data directory.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
	// Path is the sqlite database file.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	// Redis configures the redis backend.
	Redis RedisConfig `json:"redis,omitempty" yaml:"redis,omitempty"`
}

// RedisConfig locates a shared Redis cooldown store.
type RedisConfig struct {
	Address   string `json:"address,omitempty" yaml:"address,omitempty"`
	Password  string `json:"password,omitempty" yaml:"password,omitempty"`
	DB        int    `json:"db,omitempty" yaml:"db,omitempty"`
	KeyPrefix string `json:"key_prefix,omitempty" yaml:"key_prefix,omitempty"`
}

// WebhookConfig contains webhook presenter settings.
type WebhookConfig struct {
	// Enabled enables the webhook presenter.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// Endpoints is the list of webhook endpoints.
	Endpoints []EndpointConfig `json:"endpoints,omitempty" yaml:"endpoints,omitempty"`
	// Batching configures event batching.
	Batching BatchingConfig `json:"batching,omitempty" yaml:"batching,omitempty"`
	// Timeout is the per-request HTTP timeout.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	// MaxRetries is the number of delivery attempts.
	MaxRetries int `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`
}

// EndpointConfig configures a webhook endpoint.
type EndpointConfig struct {
	// Name is a human-readable name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// URL is the webhook URL.
	URL string `json:"url" yaml:"url"`
	// Enabled enables the endpoint.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// Secret is the HMAC signing secret.
	Secret string `json:"secret,omitempty" yaml:"secret,omitempty"`
	// Headers are additional HTTP headers.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	// Detectors restricts the endpoint to suggestions of these detectors.
	Detectors []string `json:"detectors,omitempty" yaml:"detectors,omitempty"`
}

// BatchingConfig configures event batching.
type BatchingConfig struct {
	// Enabled enables batching.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// MaxSize is the maximum batch size.
	MaxSize int `json:"max_size,omitempty" yaml:"max_size,omitempty"`
	// MaxWait is the maximum wait before flushing.
	MaxWait Duration `json:"max_wait,omitempty" yaml:"max_wait,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Version:      "1",
		History:      HistoryConfig{Capacity: DefaultHistoryCapacity},
		IntervalDays: DefaultIntervalDays,
		Logging:      LoggingConfig{Level: "info", Format: "console"},
		Cooldown:     CooldownConfig{Backend: BackendMemory},
	}
}

// IsEnabled implements detector.Settings.
func (c *Config) IsEnabled(id string) bool {
	d, ok := c.Detectors[id]
	if !ok || d.Enabled == nil {
		return true
	}
	return *d.Enabled
}

// SuggestingIntervalDays implements detector.Settings.
func (c *Config) SuggestingIntervalDays() int {
	return c.IntervalDays
}

var _ detector.Settings = (*Config)(nil)

// Duration is a time.Duration that supports JSON/YAML string representation.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
