package event

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the registry from path whenever the file is written or
// recreated, until ctx is done. A reload that fails to parse keeps the
// previous components.
func (r *Registry) Watch(ctx context.Context, path string, log *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating registry watcher: %w", err)
	}
	defer watcher.Close()

	// Editors replace files on save, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching registry dir: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			components, err := LoadRegistryFile(path)
			if err != nil {
				log.Warn("keeping previous component registry", "path", path, "error", err)
				continue
			}
			r.Replace(components)
			log.Info("component registry reloaded", "path", path, "components", len(components))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("registry watcher error: %w", err)
		}
	}
}
