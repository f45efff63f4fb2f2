package server

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/falconforge/athena-bridge/internal/schema"
)

// Reloader watches the schema file and swaps the store's document when
// it changes. The swap replaces the whole immutable reference, so
// concurrent readers never observe a half-updated schema.
type Reloader struct {
	watcher *fsnotify.Watcher
	store   *schema.Store
}

// NewReloader creates a file watcher on the store's schema path.
func NewReloader(store *schema.Store) (*Reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := watcher.Add(store.Path()); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %q: %w", store.Path(), err)
	}
	return &Reloader{watcher: watcher, store: store}, nil
}

// Run watches for file changes and reloads the schema. Blocks until
// ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	// Debounce: wait 500ms after the last write before reloading.
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
				debounce = time.AfterFunc(500*time.Millisecond, func() {
					if err := r.store.Reload(); err != nil {
						fmt.Fprintf(os.Stderr, "hot-reload failed: %v\n", err)
					} else {
						fmt.Fprintf(os.Stderr, "hot-reload: schema reloaded\n")
					}
				})
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "file watcher error: %v\n", err)
		}
	}
}
