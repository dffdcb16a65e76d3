package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Watch observes the configuration file for on-disk changes. Configuration
// is immutable after process start, so the watcher does not reload anything;
// it warns the operator that a restart is required for the change to take
// effect. The returned function stops the watcher.
func Watch(configFile string) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}

	// Watch the directory rather than the file itself so that editors
	// which replace the file (rename+create) keep being observed.
	dir := filepath.Dir(configFile)
	if err = watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch config directory %s: %w", dir, err)
	}

	target := filepath.Clean(configFile)
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					log.Warnf("configuration file %s changed on disk; restart the server to apply it", configFile)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Errorf("config watcher error: %v", err)
			}
		}
	}()

	return func() { _ = watcher.Close() }, nil
}
