// Package watch re-runs discovery when test sources change on disk.
// It drives `scout discover --watch`, which is only meaningful for
// local sources; remote clones do not change underneath a run.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce batches bursts of filesystem events into one callback.
const DefaultDebounce = 500 * time.Millisecond

// Dirs watches root and every visible subdirectory and invokes fn once
// events have settled for the debounce interval (DefaultDebounce when
// zero or negative). Directories created while watching join the watch
// set; `.git` and other dot-prefixed directories are ignored, as are
// events for dot-prefixed files. Blocks until ctx is cancelled, which
// returns nil, or until the watcher fails.
func Dirs(ctx context.Context, root string, debounce time.Duration, fn func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := addRecursive(watcher, root); err != nil {
		return err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	// Armed by the first event; each further event pushes it out again,
	// so fn fires once per burst.
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			if hidden(filepath.Base(event.Name)) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addRecursive(watcher, event.Name); err != nil {
						return err
					}
				}
			}
			timer.Reset(debounce)
		case <-timer.C:
			fn()
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// addRecursive watches dir and every visible subdirectory below it.
func addRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && hidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// hidden reports whether an entry name is dot-prefixed.
func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
