package knowledge

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ppiankov/brandguard/internal/model"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher re-ingests corpus files when they change on disk
type Watcher struct {
	root     string
	ingester *Ingester
	debounce time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	fsw     *fsnotify.Watcher
	wg      sync.WaitGroup
}

// NewWatcher creates a watcher for the corpus under root
func NewWatcher(root string, ingester *Ingester, debounce time.Duration, logger *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		root:     filepath.Clean(root),
		ingester: ingester,
		debounce: debounce,
		logger:   logger,
		pending:  make(map[string]*time.Timer),
	}
}

// Run watches until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	err = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		_ = fsw.Close()
		return err
	}

	w.mu.Lock()
	w.fsw = fsw
	w.mu.Unlock()

	w.logger.Info("watching corpus", zap.String("root", w.root))

	defer w.stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	path := ev.Name

	switch {
	case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
		if isDir(path) {
			if ev.Has(fsnotify.Create) {
				w.mu.Lock()
				if w.fsw != nil {
					_ = w.fsw.Add(path)
				}
				w.mu.Unlock()
			}
			return
		}
		if w.relevant(path) {
			w.schedule(ctx, path)
		}

	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		w.cancel(path)
		if w.relevant(path) {
			if err := w.ingester.Remove(ctx, path); err != nil {
				w.logger.Warn("remove failed", zap.String("path", path), zap.Error(err))
			}
		}
	}
}

func (w *Watcher) relevant(path string) bool {
	if !SupportedExtension(filepath.Ext(path)) {
		return false
	}
	_, ok := w.category(path)
	return ok
}

func (w *Watcher) category(path string) (model.Category, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return InferCategory(rel)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok && t.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		cat, ok := w.category(path)
		if !ok {
			return
		}
		n, err := w.ingester.IngestFile(ctx, path, cat)
		if err != nil {
			w.logger.Warn("re-ingest failed", zap.String("path", path), zap.Error(err))
			return
		}
		w.logger.Info("re-ingested", zap.String("path", path), zap.Int("chunks", n))
	})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
}

func (w *Watcher) stop() {
	w.mu.Lock()
	for path, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
	if w.fsw != nil {
		_ = w.fsw.Close()
		w.fsw = nil
	}
	w.mu.Unlock()
	w.wg.Wait()
}
