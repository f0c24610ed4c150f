package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce is how long rapid changes to the config file are coalesced.
const debounce = 100 * time.Millisecond

// Watcher reloads the configuration file when it changes on disk.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	getenv   func(string) string
	onChange func(*Config)
	onError  func(error)

	mu     sync.Mutex
	timer  *time.Timer
	reload uint64 // Incremented on each successful reload
}

// Watch starts watching the config file at path. onChange receives each
// successfully reloaded config; onError receives watch and load errors
// (an invalid file keeps the previous config in effect). Watching stops
// when ctx is done or Close is called.
func Watch(ctx context.Context, path string, getenv func(string) string, onChange func(*Config), onError func(error)) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("no config file to watch")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(absPath)); err == nil {
		absPath = filepath.Join(dir, filepath.Base(absPath))
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	if err := fsWatcher.Add(filepath.Dir(absPath)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch config dir: %w", err)
	}

	if onError == nil {
		onError = func(error) {}
	}

	w := &Watcher{
		watcher:  fsWatcher,
		path:     absPath,
		getenv:   getenv,
		onChange: onChange,
		onError:  onError,
	}

	go w.eventLoop(ctx)

	return w, nil
}

// eventLoop processes file system events
func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				w.stopTimer()
				return
			}

			// Only handle write and create events on the config file
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}

			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.onError(fmt.Errorf("watcher error: %w", err))
		}
	}
}

// schedule debounces reloads: a burst of events produces one reload
// debounce after the last event.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounce, w.reloadConfig)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) reloadConfig() {
	cfg, err := Load(w.path, w.getenv)
	if err != nil {
		w.onError(fmt.Errorf("reloading config: %w", err))
		return
	}

	w.mu.Lock()
	w.reload++
	w.mu.Unlock()

	w.onChange(cfg)
}

// Reloads returns the number of successful reloads.
func (w *Watcher) Reloads() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reload
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops the watcher
func (w *Watcher) Close() error {
	w.stopTimer()
	return w.watcher.Close()
}
