package dropfolder

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap/logging"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
)

const defaultSettle = 500 * time.Millisecond

// Handler receives a file once it has stopped changing.
type Handler func(ctx context.Context, path string) error

// Watcher hands new anomaly exports dropped into a directory to a Handler.
// Files are reported after no write was seen for the settle duration, so a
// copy in progress is not read half way.
type Watcher struct {
	dir        string
	settle     time.Duration
	extensions map[string]struct{}
}

func NewWatcher(dir string, settle time.Duration, extensions ...string) *Watcher {
	if settle <= 0 {
		settle = defaultSettle
	}
	if len(extensions) == 0 {
		extensions = []string{".csv", ".xlsx"}
	}
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}
	return &Watcher{dir: dir, settle: settle, extensions: allowed}
}

// Run blocks until ctx is done. Handler errors are logged and do not stop
// the watch.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	if handle == nil {
		return errors.New("drop folder handler is required")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errs.Wrap(err, "create file watcher")
	}
	defer func() {
		_ = fsw.Close()
	}()
	if err := fsw.Add(w.dir); err != nil {
		return errs.Wrapf(err, "watch %s", w.dir)
	}

	ctx = logging.WithAttrs(ctx, slog.String("component", "dropfolder"), slog.String("dir", w.dir))
	logging.Info(ctx, "watching drop folder")

	tick := w.settle / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	pending := map[string]time.Time{}
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.accepts(event) {
				continue
			}
			pending[event.Name] = time.Now()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logging.Warn(ctx, "file watcher error", slog.Any("err", errs.Loggable(err)))

		case now := <-ticker.C:
			for _, path := range settled(pending, now, w.settle) {
				delete(pending, path)
				if err := handle(ctx, path); err != nil {
					logging.Warn(ctx, "drop folder file failed",
						slog.String("path", path),
						slog.Any("err", errs.Loggable(err)),
					)
				}
			}
		}
	}
}

func (w *Watcher) accepts(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return false
	}
	_, ok := w.extensions[strings.ToLower(filepath.Ext(base))]
	return ok
}

func settled(pending map[string]time.Time, now time.Time, settle time.Duration) []string {
	var out []string
	for path, last := range pending {
		if now.Sub(last) >= settle {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}
