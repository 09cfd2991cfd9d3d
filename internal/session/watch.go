package session

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the store whenever the session file at path changes, so a
// login or logout done by another process reaches a running dashboard. It
// blocks until ctx is done.
func (s *Store) Watch(ctx context.Context, path string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating session watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: the file is replaced by rename on every save.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching session directory: %w", err)
	}

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if err := s.LoadFile(path); err != nil {
				logger.Warn("Reloading session file failed", zap.Error(err))
				continue
			}
			logger.Debug("Session file reloaded", zap.String("op", ev.Op.String()))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Session watcher error", zap.Error(err))
		}
	}
}
