package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce window: editors and atomic renames produce bursts of events for a
// single logical change.
const watchSettleDelay = 100 * time.Millisecond

// FileWatcher watches a single file and calls the callback when it changes.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	filename string
	callback func()
	closeC   chan struct{}
	started  atomic.Bool
}

// NewFileWatcher creates a watcher for path. The parent directory is watched
// rather than the file itself so replace-by-rename writes are seen.
func NewFileWatcher(path string, callback func()) *FileWatcher {
	return &FileWatcher{
		dir:      filepath.Dir(path),
		filename: filepath.Base(path),
		callback: callback,
	}
}

func (fw *FileWatcher) Start() error {
	if !fw.started.CompareAndSwap(false, true) {
		slog.Debug("File watcher already started")
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fw.started.Store(false)
		return fmt.Errorf("start watcher: %w", err)
	}
	if err := watcher.Add(fw.dir); err != nil {
		fw.started.Store(false)
		watcher.Close()
		return fmt.Errorf("watch %s: %w", fw.dir, err)
	}
	fw.watcher = watcher
	fw.closeC = make(chan struct{})
	go fw.watchLoop()
	return nil
}

func (fw *FileWatcher) Close() error {
	if !fw.started.CompareAndSwap(true, false) {
		return nil
	}
	close(fw.closeC)
	return fw.watcher.Close()
}

func (fw *FileWatcher) watchLoop() {
	var mu sync.Mutex
	var timer *time.Timer
	for {
		select {
		case <-fw.closeC:
			return
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", "error", err)
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != fw.filename {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			mu.Lock()
			if timer == nil {
				timer = time.AfterFunc(watchSettleDelay, func() {
					mu.Lock()
					timer = nil
					mu.Unlock()
					fw.callback()
				})
			} else {
				timer.Reset(watchSettleDelay)
			}
			mu.Unlock()
		}
	}
}
