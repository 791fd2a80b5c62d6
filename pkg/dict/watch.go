package dict

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce collapses bursts of file events into one reload.
const DefaultWatchDebounce = 500 * time.Millisecond

// Watch reloads the registry whenever a file under the dicts directory
// changes, until ctx is cancelled. The directory and every dataset directory
// are watched; datasets created later are picked up. Failed reloads are
// logged and keep the previous state.
func (r *Registry) Watch(ctx context.Context, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(r.dictsDir); err != nil {
		return fmt.Errorf("watch %s: %w", r.dictsDir, err)
	}
	dirs, err := os.ReadDir(r.dictsDir)
	if err != nil {
		return fmt.Errorf("read dicts dir %s: %w", r.dictsDir, err)
	}
	for _, d := range dirs {
		if d.IsDir() {
			if err := w.Add(filepath.Join(r.dictsDir, d.Name())); err != nil {
				return fmt.Errorf("watch %s: %w", d.Name(), err)
			}
		}
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 && filepath.Dir(event.Name) == filepath.Clean(r.dictsDir) {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					if err := w.Add(event.Name); err != nil {
						r.logger.Warn("watch new dataset dir", "dir", event.Name, "error", err)
					}
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			r.logger.Debug("dataset change detected", "file", event.Name, "op", event.Op.String())
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("dataset watcher error", "error", err)

		case <-timer.C:
			if err := r.Reload(ctx); err != nil {
				r.logger.Error("reload failed", "error", err)
			}
		}
	}
}
