package file

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/flowcanvas/internal/logging"
)

// DefaultDebounce coalesces the burst of events editors emit on a single save.
const DefaultDebounce = 100 * time.Millisecond

// Watcher signals when one file changes. It implements ports.Watchable.
//
// The parent directory is watched rather than the file itself, so editors that
// save by writing a new file and renaming it over the old one are still seen.
type Watcher struct {
	Path     string
	Debounce time.Duration
	Logger   *slog.Logger
}

// NewWatcher creates a Watcher for path.
func NewWatcher(path string) *Watcher {
	return &Watcher{Path: path, Debounce: DefaultDebounce, Logger: logging.NewNop()}
}

// Watch starts watching until ctx is done. The returned channel is closed on exit.
func (w *Watcher) Watch(ctx context.Context) (<-chan struct{}, error) {
	abs, err := filepath.Abs(w.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", w.Path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	logger := w.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer fw.Close()

		timer := time.NewTimer(debounce)
		timer.Stop()
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				logger.Debug("file event", "path", ev.Name, "op", ev.Op.String())
				timer.Reset(debounce)
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				logger.Warn("watch error", "path", abs, "err", err)
			case <-timer.C:
				select {
				case out <- struct{}{}:
				default:
					// A signal is already pending.
				}
			}
		}
	}()
	return out, nil
}
