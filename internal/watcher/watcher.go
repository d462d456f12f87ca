// Package watcher reloads source configuration when the config file
// changes on disk, so credential rotation does not require a restart.
package watcher

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher watches one config file and invokes onChange after edits
// settle. Editors tend to emit bursts of writes, so events are debounced.
type ConfigWatcher struct {
	path     string
	onChange func()
	debounce time.Duration
}

// New creates a config watcher
func New(path string, onChange func()) *ConfigWatcher {
	return &ConfigWatcher{
		path:     path,
		onChange: onChange,
		debounce: 500 * time.Millisecond,
	}
}

// WithDebounce sets the debounce duration
func (w *ConfigWatcher) WithDebounce(d time.Duration) *ConfigWatcher {
	w.debounce = d
	return w
}

// Watch blocks until ctx is cancelled, invoking onChange on settled
// writes. The parent directory is watched rather than the file itself so
// atomic rename-replace saves are seen too.
func (w *ConfigWatcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	filename := filepath.Base(w.path)

	if err := fsw.Add(dir); err != nil {
		return err
	}

	log.Printf("Watching %s for config changes", w.path)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				log.Printf("Config file changed: %s", w.path)
				w.onChange()
			})

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("Config watcher error: %v", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
