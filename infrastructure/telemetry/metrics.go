// Package telemetry provides OpenTelemetry metrics and tracing for the
// suggestion engine.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsProvider provides access to metrics instruments.
type MetricsProvider struct {
	meter metric.Meter

	// Counters
	actionsReceived       metric.Int64Counter
	actionsDropped        metric.Int64Counter
	suggestionsPresented  metric.Int64Counter
	suggestionsSuppressed metric.Int64Counter
	detectorPanics        metric.Int64Counter

	// Histograms
	detectDuration metric.Float64Histogram

	initOnce sync.Once
	initErr  error
}

// MetricsConfig configures the metrics provider.
type MetricsConfig struct {
	// MeterName is the name of the meter (default: "github.com/felixgeelhaar/suggest-go").
	MeterName string
	// MeterVersion is the version of the meter.
	MeterVersion string
	// Provider supplies the meter. Nil means the global provider.
	Provider metric.MeterProvider
}

// DefaultMetricsConfig returns a default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		MeterName:    "github.com/felixgeelhaar/suggest-go",
		MeterVersion: "1.0.0",
	}
}

// NewMetricsProvider creates a new metrics provider.
func NewMetricsProvider(config MetricsConfig) *MetricsProvider {
	defaults := DefaultMetricsConfig()
	if config.MeterName == "" {
		config.MeterName = defaults.MeterName
		config.MeterVersion = defaults.MeterVersion
	}

	provider := config.Provider
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(
		config.MeterName,
		metric.WithInstrumentationVersion(config.MeterVersion),
	)

	mp := &MetricsProvider{
		meter: meter,
	}

	mp.initOnce.Do(func() {
		mp.initErr = mp.initInstruments()
	})

	return mp
}

// initInstruments initializes all metric instruments.
func (mp *MetricsProvider) initInstruments() error {
	var err error

	mp.actionsReceived, err = mp.meter.Int64Counter(
		"suggest.actions.received",
		metric.WithDescription("Number of editor actions received"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return err
	}

	mp.actionsDropped, err = mp.meter.Int64Counter(
		"suggest.actions.dropped",
		metric.WithDescription("Number of actions dropped for an unsupported language"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return err
	}

	mp.suggestionsPresented, err = mp.meter.Int64Counter(
		"suggest.suggestions.presented",
		metric.WithDescription("Number of suggestions handed to the presenter"),
		metric.WithUnit("{suggestion}"),
	)
	if err != nil {
		return err
	}

	mp.suggestionsSuppressed, err = mp.meter.Int64Counter(
		"suggest.suggestions.suppressed",
		metric.WithDescription("Number of suggestions withheld"),
		metric.WithUnit("{suggestion}"),
	)
	if err != nil {
		return err
	}

	mp.detectorPanics, err = mp.meter.Int64Counter(
		"suggest.detector.panics",
		metric.WithDescription("Number of recovered detector panics"),
		metric.WithUnit("{panic}"),
	)
	if err != nil {
		return err
	}

	mp.detectDuration, err = mp.meter.Float64Histogram(
		"suggest.detect.duration",
		metric.WithDescription("Duration of a single detector invocation"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Error returns any initialization error.
func (mp *MetricsProvider) Error() error {
	return mp.initErr
}

// RecordActionReceived records an incoming action.
func (mp *MetricsProvider) RecordActionReceived(ctx context.Context, kind, language string) {
	mp.actionsReceived.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action.kind", kind),
		attribute.String("language", language),
	))
}

// RecordActionDropped records an action dropped before reaching history.
func (mp *MetricsProvider) RecordActionDropped(ctx context.Context, language string) {
	mp.actionsDropped.Add(ctx, 1, metric.WithAttributes(
		attribute.String("language", language),
	))
}

// RecordSuggestionPresented records a presented suggestion.
func (mp *MetricsProvider) RecordSuggestionPresented(ctx context.Context, detectorID string) {
	mp.suggestionsPresented.Add(ctx, 1, metric.WithAttributes(
		attribute.String("detector.id", detectorID),
	))
}

// RecordSuggestionSuppressed records a withheld suggestion.
func (mp *MetricsProvider) RecordSuggestionSuppressed(ctx context.Context, detectorID, reason string) {
	mp.suggestionsSuppressed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("detector.id", detectorID),
		attribute.String("reason", reason),
	))
}

// RecordDetectorPanic records a recovered detector panic.
func (mp *MetricsProvider) RecordDetectorPanic(ctx context.Context, detectorID string) {
	mp.detectorPanics.Add(ctx, 1, metric.WithAttributes(
		attribute.String("detector.id", detectorID),
	))
}

// RecordDetectDuration records how long one detector took.
func (mp *MetricsProvider) RecordDetectDuration(ctx context.Context, detectorID string, duration time.Duration) {
	mp.detectDuration.Record(ctx, float64(duration.Microseconds())/1000, metric.WithAttributes(
		attribute.String("detector.id", detectorID),
	))
}

// NoopMetricsProvider is a no-op metrics provider for testing or when metrics are disabled.
type NoopMetricsProvider struct{}

// RecordActionReceived is a no-op.
func (n *NoopMetricsProvider) RecordActionReceived(context.Context, string, string) {}

// RecordActionDropped is a no-op.
func (n *NoopMetricsProvider) RecordActionDropped(context.Context, string) {}

// RecordSuggestionPresented is a no-op.
func (n *NoopMetricsProvider) RecordSuggestionPresented(context.Context, string) {}

// RecordSuggestionSuppressed is a no-op.
func (n *NoopMetricsProvider) RecordSuggestionSuppressed(context.Context, string, string) {}

// RecordDetectorPanic is a no-op.
func (n *NoopMetricsProvider) RecordDetectorPanic(context.Context, string) {}

// RecordDetectDuration is a no-op.
func (n *NoopMetricsProvider) RecordDetectDuration(context.Context, string, time.Duration) {}

// Metrics defines the interface for metrics recording.
type Metrics interface {
	RecordActionReceived(ctx context.Context, kind, language string)
	RecordActionDropped(ctx context.Context, language string)
	RecordSuggestionPresented(ctx context.Context, detectorID string)
	RecordSuggestionSuppressed(ctx context.Context, detectorID, reason string)
	RecordDetectorPanic(ctx context.Context, detectorID string)
	RecordDetectDuration(ctx context.Context, detectorID string, duration time.Duration)
}

// Ensure implementations satisfy the interface.
var (
	_ Metrics = (*MetricsProvider)(nil)
	_ Metrics = (*NoopMetricsProvider)(nil)
)
