package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the configuration whenever the config file is written or
// created in place, and hands every valid result to onChange. The parent
// directory is watched rather than the file so that editors which replace
// the file on save are still noticed. Watch blocks until ctx is done.
//
// Renames, removals and empty files never trigger a reload, and a reload
// that would fall back to the default token secret is refused.
func Watch(ctx context.Context, onChange func(*Config)) error {
	path := Path()

	current, err := Load()
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			next, err := reload(path, current)
			if err != nil {
				log.Printf("config: keeping previous configuration: %v", err)
				continue
			}
			if next == nil {
				continue
			}
			current = next
			onChange(next)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("config: watcher error: %v", err)
		case <-ctx.Done():
			return nil
		}
	}
}

// reload returns nil, nil when the file is absent or empty, which is the
// state editors leave it in partway through a save.
func reload(path string, current *Config) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return nil, nil
	}

	next, err := Load()
	if err != nil {
		return nil, err
	}
	if err := next.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if secretDowngraded(current, next) {
		return nil, fmt.Errorf("token_secret would revert to the default")
	}
	return next, nil
}

// secretDowngraded reports whether next signs tokens with the default secret
// while current was configured with a real one.
func secretDowngraded(current, next *Config) bool {
	return current.Source("token_secret") != "default" && next.Source("token_secret") == "default"
}
