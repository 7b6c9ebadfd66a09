package cmd

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/nsxbet/klc-reviewer/pkg/logger"
)

// defaultWatchDelay collapses the burst of events an editor produces when
// saving into one re-check.
const defaultWatchDelay = 500 * time.Millisecond

// watchFiles calls recheck for every file of files that is written or
// re-created, once per burst of events, until ctx is done. The directories
// are watched rather than the files so that atomic saves are seen.
func watchFiles(ctx context.Context, files []string, delay time.Duration, recheck func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create watcher")
	}
	defer watcher.Close()

	watched := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			continue
		}
		watched[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return errors.Wrapf(err, "failed to watch %s", dir)
		}
		dirs[dir] = true
	}
	appLogger.Info("Watching files for changes", "files", len(watched), "directories", len(dirs))

	var (
		mu      sync.Mutex
		pending = make(map[string]*time.Timer)
		checks  sync.Mutex
	)
	defer func() {
		mu.Lock()
		for _, t := range pending {
			t.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			appLogger.Warn("Watcher error", logger.Error(err))
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !watched[event.Name] {
				continue
			}
			path := event.Name
			mu.Lock()
			if t, ok := pending[path]; ok {
				t.Reset(delay)
			} else {
				pending[path] = time.AfterFunc(delay, func() {
					mu.Lock()
					delete(pending, path)
					mu.Unlock()
					if ctx.Err() != nil {
						return
					}
					checks.Lock()
					defer checks.Unlock()
					appLogger.Debug("Re-checking file", logger.File(path))
					recheck(path)
				})
			}
			mu.Unlock()
		}
	}
}
