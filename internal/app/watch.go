package app

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vk/blockflow/internal/ctxlog"
)

// debounce coalesces the burst of filesystem events most editors emit for a
// single save.
const debounce = 250 * time.Millisecond

// watch runs the pipeline once, then re-runs it whenever an .hcl file under
// the grid path changes. A failing run is reported and watching continues;
// only a watcher failure or context cancellation ends the loop.
func (a *App) watch(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := a.addWatchPaths(watcher); err != nil {
		return err
	}

	if err := a.runOnce(ctx); err != nil {
		logger.Error("Initial run failed; watching for changes.", "error", err)
	}

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevantEvent(event) {
				continue
			}
			logger.Debug("Change detected.", "path", event.Name, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case <-pending:
			if err := a.runOnce(ctx); err != nil {
				logger.Error("Run failed; watching for changes.", "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

// addWatchPaths registers the grid path with the watcher: the file's
// directory for a single grid file, or the directory tree for a grid
// directory.
func (a *App) addWatchPaths(watcher *fsnotify.Watcher) error {
	info, err := os.Stat(a.config.GridPath)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return watcher.Add(filepath.Dir(a.config.GridPath))
	}
	return filepath.Walk(a.config.GridPath, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return watcher.Add(p)
		}
		return nil
	})
}

// relevantEvent filters watcher noise down to .hcl content changes.
func relevantEvent(event fsnotify.Event) bool {
	if filepath.Ext(event.Name) != ".hcl" {
		return false
	}
	return event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename)
}
