package config

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	domainconfig "github.com/felixgeelhaar/suggest-go/domain/config"
	"github.com/felixgeelhaar/suggest-go/domain/suggestion"
	"github.com/felixgeelhaar/suggest-go/infrastructure/storage/badger"
	"github.com/felixgeelhaar/suggest-go/infrastructure/storage/memory"
	"github.com/felixgeelhaar/suggest-go/infrastructure/storage/redis"
	"github.com/felixgeelhaar/suggest-go/infrastructure/storage/sqlite"
)

func TestBuilder_Defaults(t *testing.T) {
	t.Parallel()

	result, err := NewBuilder(domainconfig.Default()).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer result.Close()

	if _, ok := result.Cooldown.(*memory.CooldownStore); !ok {
		t.Errorf("Cooldown = %T, want *memory.CooldownStore", result.Cooldown)
	}
	if result.Webhook != nil {
		t.Error("Webhook should be nil when disabled")
	}
	if result.Presenter != nil {
		t.Error("Presenter should be nil when disabled")
	}
	if result.HistoryCapacity != domainconfig.DefaultHistoryCapacity {
		t.Errorf("HistoryCapacity = %d", result.HistoryCapacity)
	}
	if result.Logging.Level != "info" || result.Logging.Format != "console" {
		t.Errorf("Logging = %+v", result.Logging)
	}
	if result.Settings.SuggestingIntervalDays() != domainconfig.DefaultIntervalDays {
		t.Errorf("SuggestingIntervalDays() = %d", result.Settings.SuggestingIntervalDays())
	}
}

func TestBuilder_BadgerCooldown(t *testing.T) {
	t.Parallel()

	cfg := domainconfig.Default()
	cfg.Cooldown = domainconfig.CooldownConfig{Backend: domainconfig.BackendBadger, Dir: t.TempDir()}

	result, err := NewBuilder(cfg).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if _, ok := result.Cooldown.(*badger.CooldownStore); !ok {
		t.Fatalf("Cooldown = %T, want *badger.CooldownStore", result.Cooldown)
	}

	ctx := context.Background()
	at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	if err := result.Cooldown.RecordFired(ctx, "unwrap", at); err != nil {
		t.Fatalf("RecordFired() error = %v", err)
	}

	if err := result.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, _, err := result.Cooldown.LastFired(ctx, "unwrap"); err == nil {
		t.Error("LastFired() after Close should fail")
	}
}

func TestBuilder_SQLiteCooldown(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cooldown.db")
	cfg := domainconfig.Default()
	cfg.Cooldown = domainconfig.CooldownConfig{Backend: domainconfig.BackendSQLite, Path: path}

	ctx := context.Background()
	at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	result, err := NewBuilder(cfg).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if _, ok := result.Cooldown.(*sqlite.CooldownStore); !ok {
		t.Fatalf("Cooldown = %T, want *sqlite.CooldownStore", result.Cooldown)
	}
	if err := result.Cooldown.RecordFired(ctx, "unwrap", at); err != nil {
		t.Fatalf("RecordFired() error = %v", err)
	}
	if err := result.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	again, err := NewBuilder(cfg).Build()
	if err != nil {
		t.Fatalf("second Build() error = %v", err)
	}
	defer again.Close()

	got, ok, err := again.Cooldown.LastFired(ctx, "unwrap")
	if err != nil || !ok || !got.Equal(at) {
		t.Errorf("LastFired() = %v, %v, %v; want %v", got, ok, err, at)
	}
}

func TestBuilder_RedisUnreachable(t *testing.T) {
	t.Parallel()

	cfg := domainconfig.Default()
	cfg.Cooldown = domainconfig.CooldownConfig{
		Backend: domainconfig.BackendRedis,
		Redis:   domainconfig.RedisConfig{Address: "127.0.0.1:1"},
	}

	_, err := NewBuilder(cfg).Build()
	if !errors.Is(err, domainconfig.ErrBuildFailed) {
		t.Errorf("Build() error = %v, want ErrBuildFailed", err)
	}
	if !errors.Is(err, redis.ErrConnectionFailed) {
		t.Errorf("Build() error = %v, want redis.ErrConnectionFailed", err)
	}
}

func TestBuilder_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewBuilder(nil).Build(); !errors.Is(err, domainconfig.ErrBuildFailed) {
		t.Errorf("Build(nil) error = %v, want ErrBuildFailed", err)
	}

	cfg := domainconfig.Default()
	cfg.Cooldown.Backend = "etcd"
	if _, err := NewBuilder(cfg).Build(); !errors.Is(err, domainconfig.ErrBuildFailed) {
		t.Errorf("Build(etcd) error = %v, want ErrBuildFailed", err)
	}
}

func TestBuilder_WebhookDetectorFilter(t *testing.T) {
	t.Parallel()

	var received atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := domainconfig.Default()
	cfg.Webhook = domainconfig.WebhookConfig{
		Enabled: true,
		Endpoints: []domainconfig.EndpointConfig{{
			Name:      "team",
			URL:       server.URL,
			Enabled:   true,
			Detectors: []string{"run_to_cursor"},
		}},
		Timeout:    domainconfig.Duration(2 * time.Second),
		MaxRetries: 1,
	}

	result, err := NewBuilder(cfg).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer result.Close()

	if result.Webhook == nil {
		t.Fatal("Webhook should be built when enabled")
	}
	if n := len(result.Webhook.Endpoints()); n != 1 {
		t.Fatalf("Endpoints() = %d, want 1", n)
	}

	ctx := context.Background()
	session := suggestion.Session{ID: "s1", Name: "editor"}

	if err := result.Presenter.Present(ctx, session, suggestion.NewTip("unwrap it", "unwrap", "Unwrap.html")); err != nil {
		t.Fatalf("Present(unwrap) error = %v", err)
	}
	if received.Load() != 0 {
		t.Errorf("filtered suggestion was delivered")
	}

	if err := result.Presenter.Present(ctx, session, suggestion.NewTip("run to cursor", "run_to_cursor", "RunToCursor.html")); err != nil {
		t.Fatalf("Present(run_to_cursor) error = %v", err)
	}
	if received.Load() != 1 {
		t.Errorf("received = %d, want 1", received.Load())
	}
}
