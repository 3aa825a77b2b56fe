package telemetry

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNewProvider_Defaults(t *testing.T) {
	t.Parallel()

	p, err := NewProvider()
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer func() { _ = p.Shutdown(context.Background()) }()

	if p.Tracer() == nil {
		t.Error("Tracer() should not be nil")
	}
	if p.Metrics() == nil {
		t.Error("Metrics() should not be nil")
	}
	if p.config.Exporter != ExporterNoop {
		t.Errorf("Exporter = %q, want %q", p.config.Exporter, ExporterNoop)
	}
}

func TestNewProvider_UnknownExporter(t *testing.T) {
	t.Parallel()

	_, err := NewProvider(func(c *ProviderConfig) { c.Exporter = "zipkin" })
	if !errors.Is(err, ErrUnknownExporter) {
		t.Errorf("error = %v, want %v", err, ErrUnknownExporter)
	}
}

func TestProvider_StdoutTracing(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p, err := NewProvider(WithServiceName("suggest-test"), WithStdoutTracing(&buf))
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	_, span := p.Tracer().StartAction(context.Background(), "s1", "find", "JAVA")
	MarkPresented(span, "file-structure", "sg-1")
	span.End()

	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"engine.on_action", "suggest-test", "file-structure"} {
		if !strings.Contains(out, want) {
			t.Errorf("span output missing %q:\n%s", want, out)
		}
	}
}

func TestProvider_CounterTotals(t *testing.T) {
	t.Parallel()

	p, err := NewProvider()
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer func() { _ = p.Shutdown(context.Background()) }()

	ctx := context.Background()
	m := p.Metrics()
	m.RecordActionReceived(ctx, "find", "JAVA")
	m.RecordActionReceived(ctx, "caret", "kotlin")
	m.RecordSuggestionPresented(ctx, "unwrap")

	totals, err := p.CounterTotals(ctx)
	if err != nil {
		t.Fatalf("CounterTotals() error = %v", err)
	}
	if got := totals["suggest.actions.received"]; got != 2 {
		t.Errorf("actions.received = %d, want 2", got)
	}
	if got := totals["suggest.suggestions.presented"]; got != 1 {
		t.Errorf("suggestions.presented = %d, want 1", got)
	}
	if _, ok := totals["suggest.detect.duration"]; ok {
		t.Error("histograms should not be reported as counters")
	}
}

func TestSampler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{0.5, "TraceIDRatioBased{0.5}"},
	}
	for _, tt := range tests {
		if got := sampler(tt.rate).Description(); got != tt.want {
			t.Errorf("sampler(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}
