package storage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/cashngo/db"
	"github.com/teranos/cashngo/gig"
)

// twoProcesses opens two independent stores on one database file, the second
// one watching for the first one's writes.
func twoProcesses(t *testing.T) (writer, reader *Store, watcher *Watcher) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shared.db")

	writer = NewStore(openBackend(t, path), testPrefix)
	readerBackend := openBackend(t, path)
	reader = NewStore(readerBackend, testPrefix)

	source := NewFileChangeSource(readerBackend, path, 10*time.Millisecond, 25*time.Millisecond)
	watcher = NewWatcher(reader, source)
	require.NoError(t, watcher.Start(context.Background()))
	t.Cleanup(watcher.Stop)
	return writer, reader, watcher
}

func TestWatcherDeliversOtherProcessWrites(t *testing.T) {
	writer, reader, _ := twoProcesses(t)
	ctx := context.Background()
	theirs := NewCollections(writer).PostedGigs
	mine := NewCollections(reader).PostedGigs

	var mu sync.Mutex
	var latest []gig.Gig
	mine.Subscribe(func(v []gig.Gig) {
		mu.Lock()
		latest = v
		mu.Unlock()
	})

	theirs.Write(ctx, []gig.Gig{{ID: "remote", Title: "Event photographer"}})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(latest) == 1 && latest[0].ID == "remote"
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, "Event photographer", mine.Read(ctx)[0].Title)
}

func TestWatcherDeliversClear(t *testing.T) {
	writer, reader, _ := twoProcesses(t)
	ctx := context.Background()
	theirs := NewCollections(writer).CurrentCourseID
	mine := NewCollections(reader).CurrentCourseID

	id := "c1"
	theirs.Write(ctx, &id)
	require.Eventually(t, func() bool { return mine.Read(ctx) != nil }, 3*time.Second, 10*time.Millisecond)

	theirs.Clear(ctx)
	require.Eventually(t, func() bool { return mine.Read(ctx) == nil }, 3*time.Second, 10*time.Millisecond)
}

func TestWatcherSkipsOwnWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "own.db")
	backend := openBackend(t, path)
	store := NewStore(backend, testPrefix)
	ctx := context.Background()

	watcher := NewWatcher(store, NewFileChangeSource(backend, path, 5*time.Millisecond, 10*time.Millisecond))
	var mu sync.Mutex
	external := 0
	watcher.OnChange(func(Change) {
		mu.Lock()
		external++
		mu.Unlock()
	})
	require.NoError(t, watcher.Start(ctx))
	defer watcher.Stop()

	NewCollections(store).GuideShown.Write(ctx, true)
	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, external)
}

func TestWatcherStartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.db")
	backend := openBackend(t, path)
	watcher := NewWatcher(NewStore(backend, testPrefix), NewFileChangeSource(backend, path, 0, 0))

	require.NoError(t, watcher.Start(context.Background()))
	assert.Error(t, watcher.Start(context.Background()))
	watcher.Stop()
	watcher.Stop()
}

func TestFileSourceEndsWhenDatabaseCloses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "closing.db")
	conn, err := db.OpenWithMigrations(path, nil)
	require.NoError(t, err)
	source := NewFileChangeSource(NewSQLiteBackend(conn), path, 5*time.Millisecond, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- source.Tail(ctx, func(Change) {}) }()

	require.NoError(t, conn.Close())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Tail kept running after the database closed")
	}
}
