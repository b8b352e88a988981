package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher polls file modification times and triggers a callback on change.
// Filesystem events make it react between polls; polling alone is used when
// they are unavailable. A file that disappears and comes back counts as
// changed.
type FileWatcher struct {
	Paths     []string
	Interval  time.Duration
	onChange  func(string) // called with path that changed
	lastMTime map[string]time.Time
}

// NewFileWatcher creates a watcher for given paths and interval.
func NewFileWatcher(paths []string, interval time.Duration, onChange func(string)) *FileWatcher {
	clean := make([]string, len(paths))
	for i, p := range paths {
		clean[i] = filepath.Clean(p)
	}
	return &FileWatcher{
		Paths:     clean,
		Interval:  interval,
		onChange:  onChange,
		lastMTime: make(map[string]time.Time),
	}
}

// Run watches until ctx is done. The first scan only records mtimes.
func (w *FileWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	w.scanAll(true)

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	if fw, err := w.notify(); err == nil {
		defer fw.Close()
		events, errs = fw.Events, fw.Errors
	}

	for {
		select {
		case <-ticker.C:
			w.scanAll(false)
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if w.watched(ev.Name) {
				w.scanAll(false)
			}
		case _, ok := <-errs:
			if !ok {
				errs = nil
			}
		case <-ctx.Done():
			return
		}
	}
}

// notify watches the parent directories so files replaced by rename are seen.
func (w *FileWatcher) notify() (*fsnotify.Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, p := range w.Paths {
		dir := filepath.Dir(p)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return fw, nil
}

func (w *FileWatcher) watched(name string) bool {
	name = filepath.Clean(name)
	for _, p := range w.Paths {
		if p == name {
			return true
		}
	}
	return false
}

// scanAll checks mtimes and invokes onChange for files that changed since last scan.
func (w *FileWatcher) scanAll(prime bool) {
	for _, p := range w.Paths {
		fi, err := os.Stat(p)
		if err != nil {
			delete(w.lastMTime, p)
			continue
		}
		mt := fi.ModTime()
		last, ok := w.lastMTime[p]
		w.lastMTime[p] = mt
		if prime {
			continue
		}
		if (!ok || !mt.Equal(last)) && w.onChange != nil {
			w.onChange(p)
		}
	}
}
