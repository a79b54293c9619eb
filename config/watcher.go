// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceDelay is how long the watcher waits after the last change
// event before reloading.
const DefaultDebounceDelay = 100 * time.Millisecond

// ChangeCallback is called with each successfully reloaded route table.
type ChangeCallback func(*File)

// ErrorCallback is called when reloading fails or the watcher reports an error.
type ErrorCallback func(error)

// Watcher reloads a route table file when it changes.
type Watcher struct {
	path          string
	watcher       *fsnotify.Watcher
	callback      ChangeCallback
	errorCallback ErrorCallback
	logger        *slog.Logger
	debounceDelay time.Duration
	loadOpts      []LoadOption
	last          *File
	mu            sync.RWMutex
	stopCh        chan struct{}
	stoppedCh     chan struct{}
	running       bool
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounceDelay sets the delay between the last change event and the reload.
func WithDebounceDelay(delay time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounceDelay = delay
	}
}

// WithLogger sets the logger for the watcher.
func WithLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithErrorCallback sets the error callback for the watcher.
func WithErrorCallback(callback ErrorCallback) WatcherOption {
	return func(w *Watcher) {
		w.errorCallback = callback
	}
}

// WithLoadOptions sets the options each reload passes to Load.
func WithLoadOptions(opts ...LoadOption) WatcherOption {
	return func(w *Watcher) {
		w.loadOpts = slices.Clone(opts)
	}
}

// NewWatcher creates a watcher for path. Nothing is read until Start.
func NewWatcher(path string, callback ChangeCallback, opts ...WatcherOption) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, NewError(path, "watch", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, NewError(path, "watch", err)
	}

	w := &Watcher{
		path:          absPath,
		watcher:       fsWatcher,
		callback:      callback,
		debounceDelay: DefaultDebounceDelay,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start loads the file once and then watches it until ctx is done or Stop
// is called. The initial load does not invoke the change callback.
// Start on a running watcher does nothing; once ctx is done the watcher
// can be started again.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	f, err := Load(w.path, w.loadOpts...)
	if err != nil {
		return err
	}

	// Editors often replace the file, so the directory is watched.
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return NewError(w.path, "watch", err)
	}

	w.last = f
	w.running = true
	w.stopCh = make(chan struct{})
	w.stoppedCh = make(chan struct{})

	w.logger.Info("watching route table", "path", w.path)
	go w.watch(ctx, w.stopCh, w.stoppedCh)
	return nil
}

// Running reports whether the watcher is watching.
func (w *Watcher) Running() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// Stop stops watching and releases the underlying watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.running = false
	stop, stopped := w.stopCh, w.stoppedCh
	w.mu.Unlock()

	close(stop)
	<-stopped
	return w.watcher.Close()
}

// Last returns the last successfully loaded route table.
func (w *Watcher) Last() *File {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last
}

func (w *Watcher) watch(ctx context.Context, stop <-chan struct{}, stopped chan struct{}) {
	defer func() {
		w.mu.Lock()
		if w.stoppedCh == stopped {
			w.running = false
		}
		w.mu.Unlock()
		close(stopped)
	}()

	var (
		debounceTimer *time.Timer
		debounceCh    <-chan time.Time
	)
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("route table watcher stopped", "reason", ctx.Err())
			return

		case <-stop:
			w.logger.Info("route table watcher stopped")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("route table changed", "path", event.Name, "op", event.Op.String())
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.NewTimer(w.debounceDelay)
			debounceCh = debounceTimer.C

		case <-debounceCh:
			debounceCh = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("route table watcher error", "error", err)
			w.fail(NewError(w.path, "watch", err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	return filepath.Clean(event.Name) == w.path && event.Op&(fsnotify.Write|fsnotify.Create) != 0
}

func (w *Watcher) reload() {
	f, err := Load(w.path, w.loadOpts...)
	if err != nil {
		w.logger.Error("route table reload failed", "path", w.path, "error", err)
		w.fail(err)
		return
	}

	w.mu.Lock()
	w.last = f
	w.mu.Unlock()

	w.logger.Info("route table reloaded", "path", w.path, "routes", len(f.Routes))
	if w.callback != nil {
		w.callback(f)
	}
}

func (w *Watcher) fail(err error) {
	if w.errorCallback != nil {
		w.errorCallback(err)
	}
}
