package viewfs

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/example/viewfs/pkg/fs"
)

// configWatcher rebuilds the mount table when the config file changes on
// disk. The parent directory is watched rather than the file itself so
// editors and config management tools that replace the file atomically
// still trigger a reload.
type configWatcher struct {
	ns      *Namespace
	path    string
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// WatchConfig starts watching the YAML config file at path. On every
// change the table is rebuilt from scratch and swapped in atomically; a
// reload that fails to parse or validate is logged and the running table
// stays in effect. The watch stops when the namespace is closed.
func (ns *Namespace) WatchConfig(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return err
	}

	cw := &configWatcher{
		ns:      ns,
		path:    abs,
		watcher: w,
		done:    make(chan struct{}),
	}

	ns.mu.Lock()
	if ns.closed {
		ns.mu.Unlock()
		w.Close()
		return fs.NewError("watch", path, fs.ErrNotSupported)
	}
	if ns.watcher != nil {
		ns.mu.Unlock()
		w.Close()
		return fs.NewError("watch", path, fs.ErrExist)
	}
	ns.watcher = cw
	ns.mu.Unlock()

	go cw.run()
	return nil
}

func (cw *configWatcher) run() {
	defer close(cw.done)
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			cw.reload()
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.ns.logger.Warn("config watch error", "path", cw.path, "err", err)
		}
	}
}

func (cw *configWatcher) reload() {
	cfg, err := LoadFile(cw.path)
	if err != nil {
		cw.ns.logger.Error("config reload failed, keeping current mount table",
			"path", cw.path, "err", err)
		return
	}
	if err := cw.ns.Reload(cfg); err != nil {
		cw.ns.logger.Error("mount table rebuild failed, keeping current mount table",
			"path", cw.path, "err", err)
		return
	}
	cw.ns.logger.Info("mount table reloaded", "path", cw.path)
}

func (cw *configWatcher) stop() error {
	err := cw.watcher.Close()
	<-cw.done
	return err
}
