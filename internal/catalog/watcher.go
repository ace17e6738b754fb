package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// DefaultDebounce collapses the burst of events editors emit for one save.
const DefaultDebounce = 250 * time.Millisecond

// Watcher rebuilds the catalog index when its source files change.
type Watcher struct {
	store    *Store
	loader   Loader
	debounce time.Duration
}

// NewWatcher creates a watcher that reloads store from loader.
func NewWatcher(store *Store, loader Loader) *Watcher {
	return &Watcher{store: store, loader: loader, debounce: DefaultDebounce}
}

// Run watches the loader's files until ctx is cancelled. It returns
// immediately when the loader only uses embedded data.
//
// The parent directories are watched rather than the files, because editors
// and config management tools usually replace files by renaming over them.
func (w *Watcher) Run(ctx context.Context) error {
	paths := w.loader.Paths()
	if len(paths) == 0 {
		log.Debug().Msg("catalog uses embedded data, not watching")
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	wanted := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		wanted[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	log.Info().Strs("paths", paths).Msg("watching catalog files")

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("catalog watcher stopped")
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !wanted[abs] {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				log.Debug().Str("path", abs).Str("op", event.Op.String()).Msg("catalog file changed")
				timer.Reset(w.debounce)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("catalog watcher error")
		case <-timer.C:
			if err := w.store.Reload(w.loader); err != nil {
				log.Error().Err(err).Msg("keeping previous category index")
			}
		}
	}
}
