// Package watch signals changes to the glyph asset directory and the config
// file, using fsnotify with a stat-polling fallback.
package watch

import (
	"fmt"
	"hash/fnv"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ///////////////////////////////////////////////
// Watcher
// ///////////////////////////////////////////////

// relevantOps are the fsnotify operations that can change a rendered strip.
const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Watcher monitors a directory and a set of individual files.
type Watcher struct {
	// dir is the watched directory; any entry change inside it is reported.
	dir string
	// files are individually watched paths, matched by cleaned path.
	files map[string]bool
	// events delivers a signal each time something changes. Buffered to 1
	// so bursts coalesce.
	events chan struct{}
	// done is closed by [Watcher.Close] to stop goroutines.
	done chan struct{}
	// mu guards fsw, which is swapped to nil on fallback to polling.
	mu  sync.Mutex
	fsw *fsnotify.Watcher
	// once makes [Watcher.Close] idempotent.
	once sync.Once
	// polling is true once the watcher uses stat-based polling.
	polling atomic.Bool
	// pollInterval is the duration between snapshots in polling mode.
	pollInterval time.Duration
}

// New watches dir and files. Files are watched through their parent
// directories so editors that replace files by rename are still seen.
func New(dir string, files ...string) (*Watcher, error) {
	return newWatcher(dir, files, 2*time.Second, false)
}

func newWatcher(dir string, files []string, pollInterval time.Duration, forcePoll bool) (*Watcher, error) {
	w := &Watcher{
		dir:          filepath.Clean(dir),
		files:        make(map[string]bool, len(files)),
		events:       make(chan struct{}, 1),
		done:         make(chan struct{}),
		pollInterval: pollInterval,
	}
	for _, f := range files {
		w.files[filepath.Clean(f)] = true
	}

	if forcePoll {
		w.startPolling()
		return w, nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Info("fsnotify unavailable, falling back to polling", "error", err)
		w.startPolling()
		return w, nil
	}

	for _, d := range w.watchDirs() {
		if err := fsw.Add(d); err != nil {
			slog.Info("cannot watch directory, falling back to polling", "path", d, "error", err)
			fsw.Close()
			w.startPolling()
			return w, nil
		}
	}

	w.fsw = fsw
	go w.watch(fsw)
	return w, nil
}

// watchDirs returns the distinct directories handed to fsnotify.
func (w *Watcher) watchDirs() []string {
	seen := map[string]bool{w.dir: true}
	dirs := []string{w.dir}
	for f := range w.files {
		d := filepath.Dir(f)
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	sort.Strings(dirs[1:])
	return dirs
}

// relevant reports whether an event on name should trigger a signal.
func (w *Watcher) relevant(name string) bool {
	name = filepath.Clean(name)
	return filepath.Dir(name) == w.dir || w.files[name]
}

// watch forwards relevant fsnotify events until Close, switching to polling
// if fsnotify reports an error.
func (w *Watcher) watch(fsw *fsnotify.Watcher) {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if event.Op&relevantOps != 0 && w.relevant(event.Name) {
				slog.Debug("change detected", "path", event.Name, "op", event.Op.String())
				w.notify()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			slog.Info("fsnotify error, switching to polling", "error", err)
			w.mu.Lock()
			w.fsw = nil
			w.mu.Unlock()
			fsw.Close()
			w.startPolling()
			return
		}
	}
}

// startPolling marks the watcher as polling and starts the poll loop. The
// baseline snapshot is taken before returning so that any change made after
// that point is reported.
func (w *Watcher) startPolling() {
	w.polling.Store(true)
	last := w.snapshot()
	go w.poll(last)
}

// poll takes a snapshot every pollInterval and signals when it differs from
// last.
func (w *Watcher) poll(last uint64) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			cur := w.snapshot()
			if cur != last {
				last = cur
				w.notify()
			}
		}
	}
}

// snapshot hashes name, size, and modification time of every entry in the
// watched directory and of every watched file. Missing paths hash as absent.
func (w *Watcher) snapshot() uint64 {
	h := fnv.New64a()
	record := func(name string, info os.FileInfo) {
		fmt.Fprintf(h, "%s\x00%d\x00%d\x00", name, info.Size(), info.ModTime().UnixNano())
	}

	if entries, err := os.ReadDir(w.dir); err == nil {
		for _, e := range entries {
			if info, err := e.Info(); err == nil {
				record(e.Name(), info)
			}
		}
	}

	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		if info, err := os.Stat(f); err == nil {
			record(f, info)
		}
	}
	return h.Sum64()
}

// Polling reports whether the watcher is using polling instead of fsnotify.
func (w *Watcher) Polling() bool {
	return w.polling.Load()
}

// Events returns a channel that receives a signal when something changes.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.mu.Lock()
		fsw := w.fsw
		w.fsw = nil
		w.mu.Unlock()
		if fsw != nil {
			if closeErr := fsw.Close(); closeErr != nil {
				err = fmt.Errorf("closing fsnotify watcher: %w", closeErr)
			}
		}
	})
	return err
}

// notify sends a single signal to the events channel. If a signal is already
// pending the call is a no-op.
func (w *Watcher) notify() {
	select {
	case w.events <- struct{}{}:
	default:
	}
}
