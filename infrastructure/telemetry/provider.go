package telemetry

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ExporterType specifies the trace exporter.
type ExporterType string

const (
	// ExporterOTLP exports to an OTLP gRPC endpoint.
	ExporterOTLP ExporterType = "otlp"

	// ExporterStdout writes spans as JSON (useful for development).
	ExporterStdout ExporterType = "stdout"

	// ExporterNoop records spans without exporting them.
	ExporterNoop ExporterType = "noop"
)

// ErrUnknownExporter is returned for an unsupported exporter type.
var ErrUnknownExporter = errors.New("unknown trace exporter type")

// ProviderConfig configures the telemetry provider.
type ProviderConfig struct {
	// ServiceName is the name of the service for telemetry.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment.
	Environment string

	// Exporter specifies the trace exporter type.
	Exporter ExporterType
	// Endpoint is the OTLP endpoint (e.g., "localhost:4317").
	Endpoint string
	// Insecure disables TLS for the OTLP connection.
	Insecure bool
	// Output receives stdout exporter spans.
	Output io.Writer

	// SampleRate is the sampling rate (0.0-1.0).
	SampleRate float64
	// BatchTimeout is the batch export timeout.
	BatchTimeout time.Duration
	// MaxExportBatchSize is the maximum batch size.
	MaxExportBatchSize int
}

// DefaultProviderConfig returns a default configuration.
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		ServiceName:        "suggest-go",
		ServiceVersion:     "1.0.0",
		Environment:        "development",
		Exporter:           ExporterNoop,
		Output:             os.Stdout,
		SampleRate:         1.0,
		BatchTimeout:       5 * time.Second,
		MaxExportBatchSize: 512,
	}
}

// ProviderOption configures the provider.
type ProviderOption func(*ProviderConfig)

// WithServiceName sets the service name.
func WithServiceName(name string) ProviderOption {
	return func(c *ProviderConfig) {
		c.ServiceName = name
	}
}

// WithServiceVersion sets the service version.
func WithServiceVersion(version string) ProviderOption {
	return func(c *ProviderConfig) {
		c.ServiceVersion = version
	}
}

// WithStdoutTracing writes spans to w.
func WithStdoutTracing(w io.Writer) ProviderOption {
	return func(c *ProviderConfig) {
		c.Exporter = ExporterStdout
		if w != nil {
			c.Output = w
		}
	}
}

// WithOTLP exports spans to an OTLP gRPC endpoint.
func WithOTLP(endpoint string) ProviderOption {
	return func(c *ProviderConfig) {
		c.Exporter = ExporterOTLP
		c.Endpoint = endpoint
	}
}

// WithInsecure disables TLS for the OTLP connection.
func WithInsecure() ProviderOption {
	return func(c *ProviderConfig) {
		c.Insecure = true
	}
}

// WithSampleRate sets the trace sampling rate.
func WithSampleRate(rate float64) ProviderOption {
	return func(c *ProviderConfig) {
		c.SampleRate = rate
	}
}

// Provider owns an SDK tracer provider and a metric provider read on
// demand. It does not touch the global otel providers.
type Provider struct {
	config         ProviderConfig
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	reader         *sdkmetric.ManualReader
	tracer         *Tracer
	metrics        *MetricsProvider
	shutdownFuncs  []func(context.Context) error
}

// NewProvider creates a telemetry provider.
func NewProvider(opts ...ProviderOption) (*Provider, error) {
	cfg := DefaultProviderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Provider{config: cfg}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironment(cfg.Environment),
	)

	if err := p.setupTracing(res); err != nil {
		return nil, err
	}

	p.reader = sdkmetric.NewManualReader()
	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(p.reader),
	)
	p.shutdownFuncs = append(p.shutdownFuncs, p.meterProvider.Shutdown)
	p.metrics = NewMetricsProvider(MetricsConfig{Provider: p.meterProvider})

	return p, nil
}

func (p *Provider) setupTracing(res *resource.Resource) error {
	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(p.config.SampleRate)),
	}

	switch p.config.Exporter {
	case ExporterOTLP:
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(p.config.Endpoint),
		}
		if p.config.Insecure {
			opts = append(opts,
				otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
				otlptracegrpc.WithInsecure(),
			)
		}
		exp, err := otlptracegrpc.New(context.Background(), opts...)
		if err != nil {
			return err
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exp,
			sdktrace.WithBatchTimeout(p.config.BatchTimeout),
			sdktrace.WithMaxExportBatchSize(p.config.MaxExportBatchSize),
		))

	case ExporterStdout:
		exp, err := stdouttrace.New(
			stdouttrace.WithWriter(p.config.Output),
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return err
		}
		tpOpts = append(tpOpts, sdktrace.WithSyncer(exp))

	case ExporterNoop, "":

	default:
		return ErrUnknownExporter
	}

	p.tracerProvider = sdktrace.NewTracerProvider(tpOpts...)
	p.tracer = NewTracer(p.tracerProvider)
	p.shutdownFuncs = append(p.shutdownFuncs, p.tracerProvider.Shutdown)
	return nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0.0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Tracer returns the engine tracer.
func (p *Provider) Tracer() *Tracer {
	return p.tracer
}

// Metrics returns the engine metrics recorder.
func (p *Provider) Metrics() *MetricsProvider {
	return p.metrics
}

// CounterTotals collects every integer counter and returns its total across
// all attribute sets, keyed by instrument name.
func (p *Provider) CounterTotals(ctx context.Context) (map[string]int64, error) {
	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		return nil, err
	}

	totals := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			totals[m.Name] = total
		}
	}
	return totals, nil
}

// Shutdown flushes and stops the providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range p.shutdownFuncs {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
