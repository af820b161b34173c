// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shader

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// NewWatcher starts watching dir and all of it's subdirectories
// for changed compiled shaders.
func NewWatcher(dir string, logger log.FieldLogger) (*Watcher, error) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "fsnotify.NewWatcher()")
	}
	w := &Watcher{
		dir:     dir,
		watcher: fsw,
		logger:  logger.WithField("component", "shader"),
		pending: make(map[string]bool),
		done:    make(chan struct{}),
	}
	if err := w.addTree(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	go w.run()
	return w, nil
}

// Watcher collects the names of shaders that changed on disk.
// Names are relative to the watched directory and slash separated,
// the same as DirSource lists them.
type Watcher struct {
	dir     string
	watcher *fsnotify.Watcher
	logger  log.FieldLogger

	mutex   sync.Mutex
	pending map[string]bool
	done    chan struct{}
}

func (w *Watcher) addTree(root string) error {
	return filepath.Walk(root, func(path string, f os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !f.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return errors.Wrapf(err, "watching %s", path)
		}
		return nil
	})
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("shader watcher error")
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.WithError(err).Warn("shader watcher error")
			}
			return
		}
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if KindFromName(event.Name) == Unknown {
		return
	}
	rel, err := filepath.Rel(w.dir, event.Name)
	if err != nil {
		return
	}
	name := filepath.ToSlash(rel)

	w.mutex.Lock()
	w.pending[name] = true
	w.mutex.Unlock()
	w.logger.WithField("shader", name).Debug("shader changed")
}

// Changes returns the shaders changed since the last call, sorted.
// It never blocks.
func (w *Watcher) Changes() []string {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if len(w.pending) == 0 {
		return nil
	}
	names := make([]string, 0, len(w.pending))
	for name := range w.pending {
		names = append(names, name)
	}
	w.pending = make(map[string]bool)
	sort.Strings(names)
	return names
}

// Close stops watching
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
