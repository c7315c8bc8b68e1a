package refract

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce is how long the watcher waits after the last write event
// before re-indexing a file. Editors often emit several events per save.
const watchDebounce = 200 * time.Millisecond

// Watch re-indexes files under root as they change, until ctx is canceled.
// New directories are picked up as they appear; deleted files are pruned
// from the index and the store. Indexing errors are logged, not fatal.
func (e *Engine) Watch(ctx context.Context, root string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("refract: watcher: %w", err)
	}
	defer w.Close()

	if err := e.watchTree(w, root); err != nil {
		return err
	}

	var mu sync.Mutex
	timers := make(map[string]*time.Timer)
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := timers[path]; ok {
			t.Reset(watchDebounce)
			return
		}
		timers[path] = time.AfterFunc(watchDebounce, func() {
			mu.Lock()
			delete(timers, path)
			mu.Unlock()
			if err := e.indexFile(ctx, path); err != nil {
				e.log.Warn("watch reindex failed", "path", path, "error", err)
				return
			}
			e.touch(path)
		})
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			e.log.Warn("watch error", "error", err)
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			e.handleEvent(ctx, w, ev, schedule)
		}
	}
}

func (e *Engine) handleEvent(ctx context.Context, w *fsnotify.Watcher, ev fsnotify.Event, schedule func(string)) {
	switch {
	case ev.Op.Has(fsnotify.Create):
		info, err := os.Stat(ev.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			if !e.skipWatchDir(ev.Name) {
				if err := e.watchTree(w, ev.Name); err != nil {
					e.log.Warn("watch add failed", "path", ev.Name, "error", err)
				}
			}
			return
		}
		if e.frontendFor(ev.Name) != nil {
			schedule(ev.Name)
		}
	case ev.Op.Has(fsnotify.Write):
		if e.frontendFor(ev.Name) != nil {
			schedule(ev.Name)
		}
	case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
		if e.frontendFor(ev.Name) == nil {
			return
		}
		if err := e.RemoveFile(ev.Name); err != nil {
			e.log.Warn("watch prune failed", "path", ev.Name, "error", err)
		} else {
			e.log.Debug("pruned file", "path", ev.Name)
		}
	}
}

// watchTree registers root and every non-skipped directory under it.
func (e *Engine) watchTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && e.skipWatchDir(path) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

func (e *Engine) skipWatchDir(path string) bool {
	name := filepath.Base(path)
	return strings.HasPrefix(name, ".") || skipDirs[name] || e.cfg.ignored(name)
}
