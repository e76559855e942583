package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// LoadConfigFile loads environment configuration and overlays it with the
// YAML file at path. Values present in the file win over environment values.
func LoadConfigFile(path string) (*Config, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyFile(path); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ApplyFile overlays the YAML file at path onto the config.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// Watcher reloads the rate-limit section when the overlay file changes.
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
}

// WatchRateLimit watches the YAML overlay at path and calls onChange with
// the new rate-limit section on every write. Invalid files are skipped; the
// previous settings stay in effect.
func WatchRateLimit(path string, onChange func(RateLimitConfig) error) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}

	// Watch the directory: editors replace files on save, which drops the
	// watch on the file itself.
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	w := &Watcher{
		watcher: fsWatcher,
		done:    make(chan struct{}),
	}

	go w.run(path, onChange)

	return w, nil
}

func (w *Watcher) run(path string, onChange func(RateLimitConfig) error) {
	target := filepath.Clean(path)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			var overlay Config
			if err := overlay.ApplyFile(path); err != nil {
				fmt.Fprintf(os.Stderr, "config reload skipped: %v\n", err)
				continue
			}
			if overlay.RateLimit.Requests <= 0 || overlay.RateLimit.Window <= 0 {
				continue
			}
			if err := onChange(overlay.RateLimit); err != nil {
				fmt.Fprintf(os.Stderr, "config reload rejected: %v\n", err)
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

		case <-w.done:
			return
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}
