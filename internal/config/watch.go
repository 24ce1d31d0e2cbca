package config

import (
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config file whenever it changes on disk and hands the
// fresh config to onChange. Editors replace files instead of writing in
// place, so the parent directory is watched and events are debounced.
// Returns a stop function.
func Watch(path string, onChange func(*Config)) (func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(strings.TrimSpace(path))
	if err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		var pending <-chan time.Time
		for {
			select {
			case <-done:
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				pending = time.After(250 * time.Millisecond)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("config watch error: %v", err)
			case <-pending:
				pending = nil
				cfg, err := Load(abs)
				if err != nil {
					log.Printf("config reload failed: %v", err)
					continue
				}
				onChange(cfg)
			}
		}
	}()

	return func() {
		close(done)
		_ = w.Close()
	}, nil
}
