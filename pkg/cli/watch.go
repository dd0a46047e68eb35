package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 200 * time.Millisecond

// fileWatcher reports changes to a fixed set of files. Parent directories are
// watched so editors that replace files on save are still seen.
type fileWatcher struct {
	w       *fsnotify.Watcher
	targets map[string]bool
	logger  *slog.Logger
}

func newFileWatcher(files []string, logger *slog.Logger) (*fileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	fw := &fileWatcher{w: w, targets: make(map[string]bool), logger: logger}
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("resolve %q: %w", f, err)
		}
		fw.targets[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("watch %q: %w", dir, err)
		}
		dirs[dir] = true
	}
	return fw, nil
}

// run calls onChange after a burst of changes settles, until ctx is done.
func (fw *fileWatcher) run(ctx context.Context, onChange func()) error {
	defer func() { _ = fw.w.Close() }()

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || !fw.targets[abs] {
				continue
			}
			fw.logger.Debug("projection file changed", "path", abs, "op", ev.Op.String())
			fire = time.After(watchDebounce)
		case <-fire:
			fire = nil
			onChange()
		case err, ok := <-fw.w.Errors:
			if !ok {
				return nil
			}
			fw.logger.Warn("watch error", "error", err)
		}
	}
}
