// Package watch follows a single input document on disk and hands its
// content to a callback whenever it settles after a change.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/fsnotify.v1"
)

// DefaultDebounce is used when Config.Debounce is zero.
const DefaultDebounce = 200 * time.Millisecond

// Event describes the state of the watched file after a change.
type Event struct {
	Path    string
	Data    []byte
	Hash    string
	Removed bool
}

// Handler is called with every settled change. Calls are sequential.
type Handler func(ctx context.Context, ev Event)

// Config holds watcher settings.
type Config struct {
	Debounce time.Duration
	Logger   *slog.Logger
}

// FileWatcher watches one file. The parent directory is watched rather than
// the file itself so that editors replacing the file by rename are seen.
type FileWatcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger

	lastHash string
	removed  bool
}

// New creates a watcher for path.
func New(path string, cfg Config) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &FileWatcher{
		path:     abs,
		debounce: cfg.Debounce,
		logger:   cfg.Logger.With("component", "watch", "path", abs),
	}, nil
}

// Path returns the absolute path being watched.
func (w *FileWatcher) Path() string {
	return w.path
}

// Run reports the current content once, then every settled change until
// ctx is done. It returns nil on cancellation.
func (w *FileWatcher) Run(ctx context.Context, handle Handler) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}

	if err := w.check(ctx, handle); err != nil {
		return err
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path || event.Op == fsnotify.Chmod {
				continue
			}
			w.logger.Debug("file event", "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)

		case <-fire:
			fire = nil
			if err := w.check(ctx, handle); err != nil {
				w.logger.Warn("reading watched file", "error", err)
			}
		}
	}
}

// check reads the file and calls handle when its content differs from the
// last reported content, or once when the file disappears.
func (w *FileWatcher) check(ctx context.Context, handle Handler) error {
	data, err := os.ReadFile(w.path)
	if errors.Is(err, fs.ErrNotExist) {
		if !w.removed {
			w.removed = true
			w.lastHash = ""
			handle(ctx, Event{Path: w.path, Removed: true})
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", w.path, err)
	}

	hash := contentHash(data)
	if hash == w.lastHash && !w.removed {
		w.logger.Debug("content unchanged")
		return nil
	}
	w.lastHash = hash
	w.removed = false
	handle(ctx, Event{Path: w.path, Data: data, Hash: hash})
	return nil
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
