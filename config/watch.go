package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// SourceChangeEvent describes one fetch-source file that changed under a
// RootDir being watched.
type SourceChangeEvent struct {
	Path string
	Op   string
}

// Watcher wraps fsnotify to report fetch-source edits under a root
// directory as SourceChangeEvents. It only relays the events: hvmlrun does
// not start a Watcher, and no observers are re-fired when a file changes.
type Watcher struct {
	watcher *fsnotify.Watcher
	events  chan SourceChangeEvent
	done    chan struct{}
}

// NewWatcher creates a stopped Watcher; call Watch to start it.
func NewWatcher() (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	return &Watcher{
		watcher: w,
		events:  make(chan SourceChangeEvent, 10),
		done:    make(chan struct{}),
	}, nil
}

// Watch adds root (and its subdirectories) to the watch set and returns a
// channel of change events. The channel closes once Stop is called or ctx
// is cancelled.
func (w *Watcher) Watch(ctx context.Context, root string) (<-chan SourceChangeEvent, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("invalid watch root: %w", err)
	}
	if !info.IsDir() {
		if err := w.watcher.Add(root); err != nil {
			return nil, err
		}
	} else if err := w.addRecursive(root); err != nil {
		return nil, err
	}

	go w.pump(ctx)
	return w.events, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}
		_ = w.watcher.Add(path)
		return nil
	})
}

func (w *Watcher) pump(ctx context.Context) {
	defer close(w.events)
	for {
		select {
		case <-w.done:
			return
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			select {
			case w.events <- SourceChangeEvent{Path: ev.Name, Op: opName(ev.Op)}:
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func opName(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Write == fsnotify.Write:
		return "write"
	case op&fsnotify.Create == fsnotify.Create:
		return "create"
	case op&fsnotify.Remove == fsnotify.Remove:
		return "remove"
	case op&fsnotify.Rename == fsnotify.Rename:
		return "rename"
	default:
		return "write"
	}
}

// Stop halts watching and closes the underlying fsnotify watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.watcher.Close()
}
