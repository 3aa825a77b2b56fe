package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	domainconfig "github.com/felixgeelhaar/suggest-go/domain/config"
	"github.com/felixgeelhaar/suggest-go/domain/detector"
	"github.com/felixgeelhaar/suggest-go/infrastructure/logging"
)

// FileSettings is a detector.Settings backed by a configuration file. The
// file is reloaded whenever it changes; a reload that fails to load or
// validate keeps the last good configuration.
type FileSettings struct {
	path    string
	loader  *Loader
	watcher *fsnotify.Watcher

	mu       sync.RWMutex
	current  *domainconfig.Config
	onReload func(*domainconfig.Config)

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// FileSettingsOption configures FileSettings.
type FileSettingsOption func(*FileSettings)

// WithLoader sets the loader used for every (re)load.
func WithLoader(l *Loader) FileSettingsOption {
	return func(s *FileSettings) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithReloadHook registers fn to run after every successful reload.
func WithReloadHook(fn func(*domainconfig.Config)) FileSettingsOption {
	return func(s *FileSettings) {
		s.onReload = fn
	}
}

// WatchFile loads path and starts watching it for changes.
func WatchFile(path string, opts ...FileSettingsOption) (*FileSettings, error) {
	s := &FileSettings{
		path:   filepath.Clean(path),
		loader: NewLoader(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	cfg, err := s.loader.LoadFile(s.path)
	if err != nil {
		return nil, err
	}
	s.current = cfg

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// Editors often replace the file instead of writing it, so watch the
	// directory.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.path, err)
	}
	s.watcher = watcher

	s.wg.Add(1)
	go s.run()

	return s, nil
}

func (s *FileSettings) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != s.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				s.reload()
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn().
				Add(logging.Component("config")).
				Add(logging.ErrorField(err)).
				Msg("config watcher error")
		}
	}
}

func (s *FileSettings) reload() {
	// A truncate-then-write save fires once with the file still empty.
	if info, err := os.Stat(s.path); err != nil || info.Size() == 0 {
		return
	}

	cfg, err := s.loader.LoadFile(s.path)
	if err != nil {
		logging.Warn().
			Add(logging.Component("config")).
			Add(logging.Str("path", s.path)).
			Add(logging.ErrorField(err)).
			Msg("config reload failed, keeping previous settings")
		return
	}

	s.mu.Lock()
	s.current = cfg
	hook := s.onReload
	s.mu.Unlock()

	logging.Info().
		Add(logging.Component("config")).
		Add(logging.Str("path", s.path)).
		Msg("config reloaded")

	if hook != nil {
		hook(cfg)
	}
}

// Current returns the active configuration. Callers must not modify it.
func (s *FileSettings) Current() *domainconfig.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// IsEnabled implements detector.Settings.
func (s *FileSettings) IsEnabled(id string) bool {
	return s.Current().IsEnabled(id)
}

// SuggestingIntervalDays implements detector.Settings.
func (s *FileSettings) SuggestingIntervalDays() int {
	return s.Current().SuggestingIntervalDays()
}

// Close stops watching. It is safe to call more than once.
func (s *FileSettings) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.watcher.Close()
		s.wg.Wait()
		if errors.Is(err, fsnotify.ErrClosed) {
			err = nil
		}
	})
	return err
}

var _ detector.Settings = (*FileSettings)(nil)
