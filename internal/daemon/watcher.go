package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 250 * time.Millisecond

// Watcher calls OnChange after the config file has been written and left
// alone for the debounce interval.
type Watcher struct {
	path     string
	base     string
	debounce time.Duration
	logger   *slog.Logger
	onChange func()
	fsw      *fsnotify.Watcher
}

// NewWatcher watches the directory containing path, so replace-by-rename
// saves are seen too.
func NewWatcher(path string, debounce time.Duration, logger *slog.Logger, onChange func()) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{
		path:     filepath.Clean(abs),
		base:     filepath.Base(abs),
		debounce: debounce,
		logger:   logger,
		onChange: onChange,
		fsw:      fsw,
	}, nil
}

// Run delivers debounced change notifications until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fsw.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	w.logger.Info("config watcher started", "path", w.path)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("config watcher stopped")
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if shouldReload(w.path, w.base, ev) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		case <-timer.C:
			w.logger.Info("config file changed", "path", w.path)
			w.onChange()
		}
	}
}

// shouldReload reports whether ev touches the config file.
func shouldReload(path, base string, ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(ev.Name)
	if name == path {
		return true
	}
	// Editors that save through a temp file report partial paths.
	return filepath.Base(name) == base
}
