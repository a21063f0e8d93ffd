package config

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 150 * time.Millisecond

// Reload carries the outcome of re-reading a changed config file.
type Reload struct {
	Config Config
	Err    error
}

// Watcher re-loads one config file whenever it changes on disk.
type Watcher struct {
	Path    string
	Reloads <-chan Reload

	reloads  chan Reload
	done     chan struct{}
	defaults Config
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a watcher for path. Loaded configs start from defaults.
func NewWatcher(path string, defaults Config, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	ch := make(chan Reload, 4)
	return &Watcher{
		Path:     filepath.Clean(path),
		Reloads:  ch,
		reloads:  ch,
		done:     make(chan struct{}),
		defaults: defaults,
		debounce: debounce,
		watcher:  fw,
	}, nil
}

// Start watches the file's directory, so editors that replace the file on
// save are still seen.
func (w *Watcher) Start() error {
	if err := EnsureConfigDir(w.Path); err != nil {
		return err
	}
	if err := w.watcher.Add(filepath.Dir(w.Path)); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and the Reloads channel.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done
	close(w.reloads)
}

func (w *Watcher) loop() {
	defer close(w.done)

	var pending time.Time
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.Path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.Now()
			}

		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < w.debounce {
				continue
			}
			pending = time.Time{}
			cfg, err := Load(w.Path, w.defaults)
			select {
			case w.reloads <- Reload{Config: cfg, Err: err}:
			default:
				// Buffer full: drop the oldest reload.
				select {
				case <-w.reloads:
				default:
				}
				w.reloads <- Reload{Config: cfg, Err: err}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
