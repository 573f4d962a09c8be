// Package watch monitors the prefix source file and triggers a reload
// callback when it changes. The live trie is never mutated; the callback is
// expected to rebuild a fresh matcher and swap it in atomically.
package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dhowes/lpmatch/internal/logging"
)

// Watcher watches a single file for modification.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()
	log      *logging.Logger

	fsw     *fsnotify.Watcher
	closeCh chan struct{}
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New starts watching path. onChange is called from the watcher goroutine
// after file events settle for the debounce window. The parent directory is
// watched rather than the file itself so rename-and-replace writes are
// observed.
func New(path string, debounce time.Duration, onChange func(), log *logging.Logger) (*Watcher, error) {
	if log == nil {
		log = logging.Null
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrPathNotExist
		}
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     absPath,
		debounce: debounce,
		onChange: onChange,
		log:      log.WithComponent("watch"),
		fsw:      fsw,
		closeCh:  make(chan struct{}),
	}

	w.wg.Add(1)
	go w.loop()

	w.log.Debug("watching %s", absPath)
	return w, nil
}

// loop consumes fsnotify events, debounces them, and fires onChange.
func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.closeCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug("event %s on %s", ev.Op, ev.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error: %v", err)

		case <-fire:
			timer = nil
			fire = nil
			w.onChange()
		}
	}
}

// relevant reports whether ev concerns the watched file and an operation
// that changes its content.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename)
}

// Close stops the watcher and waits for the event loop to exit.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}
