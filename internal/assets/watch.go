package assets

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/orrery/internal/logger"
)

// Watch reports asset files under the manager root that are written or recreated.
// Names on the returned channel are relative to the root and use forward slashes.
// The cache entry for a changed file is dropped before its name is sent.
// The channel is closed when ctx is done.
func (m *Manager) Watch(ctx context.Context) (<-chan string, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(m.root); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", m.root, err)
	}

	changed := make(chan string, 16)
	go func() {
		defer close(changed)
		defer w.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				rel, err := filepath.Rel(m.root, ev.Name)
				if err != nil {
					continue
				}
				name := filepath.ToSlash(rel)
				m.Invalidate(name)
				logger.Debug("asset changed", zap.String("name", name))

				select {
				case changed <- name:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("asset watcher error", zap.Error(err))
			}
		}
	}()

	return changed, nil
}
