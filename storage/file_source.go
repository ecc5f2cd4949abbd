package storage

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/teranos/cashngo/db"
	"github.com/teranos/cashngo/errors"
	"github.com/teranos/cashngo/logger"
)

// DefaultDebounce coalesces the burst of events one SQLite commit produces
const DefaultDebounce = 50 * time.Millisecond

// FileChangeSource notices writes to a shared SQLite file by other processes.
// fsnotify reports activity on the database, -wal and -shm files; after a
// debounce the kv_entries table is queried for rows past the last seen revision.
type FileChangeSource struct {
	backend  *SQLiteBackend
	dbPath   string
	debounce time.Duration
	poll     time.Duration

	mu            sync.Mutex
	debounceTimer *time.Timer
	since         int64
}

// NewFileChangeSource watches dbPath. poll > 0 also re-queries on that interval,
// for filesystems where inotify events are not delivered.
func NewFileChangeSource(backend *SQLiteBackend, dbPath string, debounce, poll time.Duration) *FileChangeSource {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &FileChangeSource{
		backend:  backend,
		dbPath:   dbPath,
		debounce: debounce,
		poll:     poll,
	}
}

// Tail emits every row written after the source started, plus a catch-up pass
// over all rows at start.
func (fs *FileChangeSource) Tail(ctx context.Context, emit func(Change)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	defer watcher.Close()

	// The directory, not the file: SQLite creates and removes -wal/-shm as it goes
	dir := filepath.Dir(fs.dbPath)
	if err := watcher.Add(dir); err != nil {
		return errors.Wrapf(err, "failed to watch %s", dir)
	}

	trigger := make(chan struct{}, 1)
	defer fs.stopTimer()

	var tick <-chan time.Time
	if fs.poll > 0 {
		ticker := time.NewTicker(fs.poll)
		defer ticker.Stop()
		tick = ticker.C
	}

	if !fs.sync(ctx, emit) {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !fs.isDatabaseFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fs.schedule(trigger)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("Store watcher error", logger.FieldError, err)

		case <-trigger:
			if !fs.sync(ctx, emit) {
				return nil
			}

		case <-tick:
			if !fs.sync(ctx, emit) {
				return nil
			}
		}
	}
}

// schedule debounces rapid file events into one sync
func (fs *FileChangeSource) schedule(trigger chan<- struct{}) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.debounceTimer != nil {
		fs.debounceTimer.Stop()
	}
	fs.debounceTimer = time.AfterFunc(fs.debounce, func() {
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
}

func (fs *FileChangeSource) stopTimer() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.debounceTimer != nil {
		fs.debounceTimer.Stop()
	}
}

// sync emits rows past the last seen revision. It reports false once the
// database has been closed, which ends Tail.
func (fs *FileChangeSource) sync(ctx context.Context, emit func(Change)) bool {
	changes, err := fs.backend.ChangesSince(ctx, fs.since)
	if err != nil {
		if db.IsDatabaseClosed(err) {
			logger.Debugw("Store watcher stopping, database closed", logger.FieldPath, fs.dbPath)
			return false
		}
		if ctx.Err() == nil {
			logger.Warnw("Store watcher failed to read changes",
				logger.FieldRevision, fs.since,
				logger.FieldError, err,
			)
		}
		return true
	}
	for _, c := range changes {
		emit(c)
		if c.Revision > fs.since {
			fs.since = c.Revision
		}
	}
	return true
}

func (fs *FileChangeSource) isDatabaseFile(name string) bool {
	base := filepath.Base(name)
	file := filepath.Base(fs.dbPath)
	return base == file || base == file+"-wal" || base == file+"-shm"
}
