package watch

import "errors"

// Watcher errors.
var (
	// ErrWatcherClosed indicates the watcher has already been closed.
	ErrWatcherClosed = errors.New("watch: watcher is closed")

	// ErrPathNotExist indicates the watched path does not exist.
	ErrPathNotExist = errors.New("watch: path does not exist")
)
