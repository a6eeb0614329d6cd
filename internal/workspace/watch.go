package workspace

import (
	"io/fs"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind classifies an external filesystem change reported by Watcher.
type ChangeKind int

const (
	ChangeModified ChangeKind = iota
	ChangeCreated
	ChangeRemoved
)

// Change is one external-edit notification for a file changed outside the
// editor. internal/engine does not subscribe to a Watcher; a host that
// wants these changes applied passes them on itself.
type Change struct {
	URI  string
	Kind ChangeKind
}

// Watcher wraps fsnotify to report PHP-file changes under a watched root,
// filtering everything else out (directory events, non-source files).
type Watcher struct {
	fs      *fsnotify.Watcher
	changes chan Change
	done    chan struct{}
}

// Watch starts watching root (recursively, one fsnotify.Add per directory
// since fsnotify itself is non-recursive). Callers drain Changes() and
// call Close when done.
func Watch(root string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{fs: fw, changes: make(chan Change, 64), done: make(chan struct{})}

	if err := addDirsRecursive(fw, root); err != nil {
		fw.Close()
		return nil, err
	}

	go w.loop()
	return w, nil
}

func addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if matchesAny(DefaultExcludes, filepath.ToSlash(path)) {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case _, ok := <-w.fs.Errors:
			if !ok {
				return
			}
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	rel := filepath.ToSlash(ev.Name)
	if !matchesAny(DefaultIncludes, filepath.Base(rel)) && !matchesAny(DefaultIncludes, rel) {
		return
	}

	var kind ChangeKind
	switch {
	case ev.Op&fsnotify.Remove != 0 || ev.Op&fsnotify.Rename != 0:
		kind = ChangeRemoved
	case ev.Op&fsnotify.Create != 0:
		kind = ChangeCreated
	case ev.Op&fsnotify.Write != 0:
		kind = ChangeModified
	default:
		return
	}

	select {
	case w.changes <- Change{URI: "file://" + ev.Name, Kind: kind}:
	default:
		// Drop the change if the consumer is behind; the next debounce
		// window's reparse (if any) will pick up the file's latest state.
	}
}

// Changes returns the channel of external change notifications.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Close stops the watcher and releases its fsnotify handle.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}
