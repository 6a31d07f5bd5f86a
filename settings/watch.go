package settings

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a store whenever its config file (or the .env next to it)
// is written or created.
type Watcher struct {
	store      *Store
	watcher    *fsnotify.Watcher
	configPath string
	envPath    string
}

// NewWatcher starts watching the directory of configPath. Setup failures are
// returned here so callers can report them before anything runs.
func NewWatcher(store *Store, configPath string) (*Watcher, error) {
	configPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &Watcher{
		store:      store,
		watcher:    watcher,
		configPath: configPath,
		envPath:    filepath.Join(dir, ".env"),
	}, nil
}

// Run handles file events until ctx is done. Reload and watcher errors are
// passed to onError and do not stop the watch.
func (w *Watcher) Run(ctx context.Context, onError func(error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			name := filepath.Clean(event.Name)
			if name != w.configPath && name != w.envPath {
				continue
			}

			// Atomic saves remove or rename the old file first; the
			// following Create carries the new content.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if _, err := w.store.Reload(); err != nil && onError != nil {
				onError(err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			if onError != nil {
				onError(fmt.Errorf("config watcher: %w", err))
			}
		}
	}
}

// Close stops the underlying file watcher
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Watch is NewWatcher followed by Run. It blocks until ctx is done and only
// returns setup errors.
func Watch(ctx context.Context, store *Store, configPath string, onError func(error)) error {
	w, err := NewWatcher(store, configPath)
	if err != nil {
		return err
	}
	defer w.Close()

	w.Run(ctx, onError)

	return nil
}
