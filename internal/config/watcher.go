package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-dispatch/internal/models"
)

const debounce = 200 * time.Millisecond

// Watch calls apply with the reloaded settings each time the file at path
// changes, until ctx is done. The directory is watched rather than the file
// so editors that replace the file on save are still seen. A file that fails
// to parse is logged and skipped.
func Watch(ctx context.Context, path string, apply func(models.Settings)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create settings watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve settings path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	log.WithField("path", abs).Info("Watching settings file")

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				timer.Reset(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("Settings watcher error")

		case <-timer.C:
			settings, err := LoadSettingsFile(abs)
			if err != nil {
				log.WithError(err).Warn("Ignoring unreadable settings file")
				continue
			}
			log.WithField("path", abs).Info("Settings file reloaded")
			apply(settings)
		}
	}
}
