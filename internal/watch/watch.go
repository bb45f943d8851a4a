// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package watch reports changes to a fixed set of files.
//
// Parent directories are watched rather than the files themselves, so
// editors that save by writing a temp file and renaming it over the
// original are still seen. Bursts of events for a file are debounced into
// a single change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 300 * time.Millisecond

// ChangeFunc receives the files that changed, sorted. It runs on the
// watcher's goroutine; events arriving meanwhile are held until it returns.
type ChangeFunc func(ctx context.Context, paths []string)

// =============================================================================
// WATCHER
// =============================================================================

// Watcher debounces fsnotify events for a set of files.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   zerolog.Logger

	// files maps cleaned absolute paths to the spelling the caller used
	files map[string]string

	mu      sync.Mutex
	pending map[string]time.Time
}

// New watches paths, each of which must be an existing regular file.
func New(paths []string, debounce time.Duration, logger zerolog.Logger) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.New("no files to watch")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	files := make(map[string]string, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", p)
		}
		files[abs] = p
		dirs[filepath.Dir(abs)] = true
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	return &Watcher{
		watcher:  fsw,
		debounce: debounce,
		logger:   logger,
		files:    files,
		pending:  make(map[string]time.Time),
	}, nil
}

// Close stops watching. It is safe to call after Run has returned.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run delivers changes to fn until ctx is cancelled or the watcher is
// closed. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context, fn ChangeFunc) error {
	tick := w.debounce / 3
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("watch error")

		case now := <-ticker.C:
			if due := w.due(now); len(due) > 0 {
				fn(ctx, due)
			}
		}
	}
}

// handle records a change for watched files. Removal is ignored until
// the file is recreated.
func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	if _, ok := w.files[abs]; !ok {
		return
	}
	w.logger.Debug().Str("path", abs).Str("op", event.Op.String()).Msg("file event")

	w.mu.Lock()
	w.pending[abs] = time.Now()
	w.mu.Unlock()
}

// due removes and returns the files quiet for at least the debounce
// period, in the caller's spelling.
func (w *Watcher) due(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []string
	for abs, changed := range w.pending {
		if now.Sub(changed) >= w.debounce {
			out = append(out, w.files[abs])
			delete(w.pending, abs)
		}
	}
	sort.Strings(out)
	return out
}
