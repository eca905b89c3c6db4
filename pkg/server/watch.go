package server

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rkm/s1etad/internal/etad"
)

// ProductWatcher monitors the annotation file of a product directory via
// fsnotify and reloads the source when it changes.
type ProductWatcher struct {
	source *ReloadableSource
	dir    string
	logger *slog.Logger

	mu       sync.Mutex
	debounce *time.Timer
}

// NewProductWatcher creates a watcher for the product served by source.
func NewProductWatcher(source *ReloadableSource, productDir string, logger *slog.Logger) *ProductWatcher {
	return &ProductWatcher{
		source: source,
		dir:    productDir,
		logger: logger,
	}
}

// Run watches the product annotation directory until ctx is cancelled.
// Writes to the annotation file trigger a debounced reload.
func (w *ProductWatcher) Run(ctx context.Context) {
	annotPath, err := etad.AnnotationPath(w.dir)
	if err != nil {
		w.logger.Error("product watcher: cannot locate annotation", "dir", w.dir, "error", err)
		return
	}
	annotDir := filepath.Dir(annotPath)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Error("product watcher: failed to create watcher", "error", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(annotDir); err != nil {
		w.logger.Error("product watcher: failed to watch directory", "dir", annotDir, "error", err)
		return
	}

	w.logger.Info("watching product annotation", "path", annotPath)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(annotPath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.debounceReload(100 * time.Millisecond)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("product watcher: error", "error", err)
		}
	}
}

func (w *ProductWatcher) debounceReload(delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}

	w.debounce = time.AfterFunc(delay, w.reload)
}

// reload swaps in the product read from disk. On failure the previous
// product stays in place and the error is logged.
func (w *ProductWatcher) reload() {
	if err := w.source.Reload(); err != nil {
		w.logger.Error("product reload failed, keeping previous product", "error", err)
		return
	}
	p := w.source.Product()
	w.logger.Info("product reloaded", "path", p.Path(), "bursts", p.Catalogue().Len())
}
