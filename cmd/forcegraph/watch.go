// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounce is how long file events must pause before the
// watched files are processed again.
var WatchDebounce = 100 * time.Millisecond

// watchFiles calls fn now and after every burst of changes to any of
// the files, until the context is done. The directories of the files
// are watched, since editors often save by renaming a new file over
// the old one. Errors from fn are logged and watching continues.
func watchFiles(ctx context.Context, files []string, fn func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	names := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		names[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	runLogged := func() {
		if err := fn(); err != nil {
			slog.Error("watch", "err", err)
		}
	}
	runLogged()
	slog.Info("watching for changes", "files", files)

	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer
	defer debounce.Stop()
	var pending []string

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !names[filepath.Clean(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			pending = append(pending, event.Name)
			debounce.Reset(WatchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher", "err", err)

		case <-debounce.C:
			if len(pending) == 0 {
				continue
			}
			slog.Info("files changed", "events", len(pending), "file", pending[len(pending)-1])
			pending = nil
			runLogged()
		}
	}
}
