package watcher

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alexisbeaulieu97/tokenflow/internal/logger"
)

// DefaultDebounce collapses editor save bursts into one notification.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reports changes to a single palette file.
type Watcher struct {
	path     string
	onChange func(path string)
	debounce time.Duration
	log      *logger.Logger
}

// New creates a watcher for path. onChange runs on its own goroutine after the debounce.
func New(path string, onChange func(path string), log *logger.Logger) *Watcher {
	return &Watcher{
		path:     path,
		onChange: onChange,
		debounce: DefaultDebounce,
		log:      log.WithFields(map[string]any{"component": "watcher", "path": path}),
	}
}

// WithDebounce sets the debounce duration.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Watch blocks until ctx is cancelled. The parent directory is watched so
// editors that replace the file on save are still observed.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	absPath, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		return err
	}
	w.log.Debug("watching for changes")

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			eventPath, err := filepath.Abs(event.Name)
			if err != nil || eventPath != absPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				if ctx.Err() != nil {
					return
				}
				w.log.Info("palette file changed")
				w.onChange(absPath)
			})

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error(err, "watcher error")

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
