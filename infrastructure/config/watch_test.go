package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	domainconfig "github.com/felixgeelhaar/suggest-go/domain/config"
)

// writeConfig replaces path atomically, the way editors save.
func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatchFile_Reload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "suggest.yaml")
	writeConfig(t, path, "version: \"1\"\nsuggesting_interval_days: 3\n")

	var reloads atomic.Int32
	s, err := WatchFile(path, WithReloadHook(func(*domainconfig.Config) { reloads.Add(1) }))
	if err != nil {
		t.Fatalf("WatchFile() error = %v", err)
	}
	defer s.Close()

	if s.SuggestingIntervalDays() != 3 {
		t.Fatalf("SuggestingIntervalDays() = %d, want 3", s.SuggestingIntervalDays())
	}
	if !s.IsEnabled("unwrap") {
		t.Fatal("unwrap should be enabled")
	}

	writeConfig(t, path, "version: \"1\"\nsuggesting_interval_days: 9\ndetectors:\n  unwrap:\n    enabled: false\n")
	waitFor(t, func() bool { return s.SuggestingIntervalDays() == 9 })

	if s.IsEnabled("unwrap") {
		t.Error("unwrap should be disabled after reload")
	}
	if reloads.Load() == 0 {
		t.Error("reload hook was not called")
	}
}

func TestWatchFile_InvalidReloadKeepsPrevious(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "suggest.yaml")
	writeConfig(t, path, "version: \"1\"\nsuggesting_interval_days: 4\n")

	s, err := WatchFile(path)
	if err != nil {
		t.Fatalf("WatchFile() error = %v", err)
	}
	defer s.Close()

	writeConfig(t, path, "version: [")
	// A sibling file change must not trigger a reload of path.
	writeConfig(t, filepath.Join(dir, "other.yaml"), "version: \"1\"\nsuggesting_interval_days: 1\n")
	time.Sleep(200 * time.Millisecond)

	if s.SuggestingIntervalDays() != 4 {
		t.Errorf("SuggestingIntervalDays() = %d, want 4", s.SuggestingIntervalDays())
	}

	writeConfig(t, path, "version: \"1\"\nsuggesting_interval_days: 5\n")
	waitFor(t, func() bool { return s.SuggestingIntervalDays() == 5 })
}

func TestWatchFile_Errors(t *testing.T) {
	t.Parallel()

	if _, err := WatchFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, domainconfig.ErrConfigNotFound) {
		t.Errorf("WatchFile(missing) error = %v, want ErrConfigNotFound", err)
	}
}

func TestFileSettings_CloseTwice(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "suggest.json")
	writeConfig(t, path, `{"version":"1"}`)

	s, err := WatchFile(path)
	if err != nil {
		t.Fatalf("WatchFile() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
