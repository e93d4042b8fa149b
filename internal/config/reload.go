package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 500 * time.Millisecond

// Reloader watches the gateway configuration file and invokes a callback with
// the freshly loaded configuration after changes settle.
type Reloader struct {
	watcher *fsnotify.Watcher
	path    string
	log     *slog.Logger
	apply   func(*File)
}

// NewReloader creates a file watcher for path. The apply callback runs on the
// watcher goroutine after each successful reload.
func NewReloader(path string, log *slog.Logger, apply func(*File)) (*Reloader, error) {
	if path == "" {
		return nil, fmt.Errorf("reloader needs a config path")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %q: %w", path, err)
	}

	if log == nil {
		log = slog.Default()
	}

	return &Reloader{
		watcher: watcher,
		path:    path,
		log:     log,
		apply:   apply,
	}, nil
}

// Run blocks until ctx is cancelled, reloading after each write settles.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	// Editors produce bursts of writes; wait for them to settle.
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(reloadDebounce, r.reload)
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Error("config watcher error", "error", err)
		}
	}
}

func (r *Reloader) reload() {
	cfg, err := Load(r.path)
	if err != nil {
		r.log.Error("config reload failed", "path", r.path, "error", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		r.log.Error("config reload rejected", "path", r.path, "error", err)
		return
	}
	r.log.Info("config reloaded", "path", r.path)
	if r.apply != nil {
		r.apply(cfg)
	}
}
