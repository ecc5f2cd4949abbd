// Package storage is the persisted key/value store behind every CashnGo
// collection.
//
// Values are whole-collection JSON snapshots. Reads never fail: a missing or
// unparsable value reads as the key's fallback. Writes never fail either:
// errors are logged and the in-memory value still updates. Each process holds
// one Store; other processes sharing the backend are observed through a
// Watcher, which routes their writes through ApplyExternal.
package storage

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/teranos/cashngo/logger"
)

type cacheEntry struct {
	raw      []byte // nil when absent
	revision int64
}

type subscriber struct {
	id uint64
	fn func(raw []byte)
}

// Store is safe for concurrent use.
type Store struct {
	backend Backend
	prefix  string
	log     *zap.SugaredLogger

	// verbosity is the CLI -v count; key reads/writes are logged from -vv
	verbosity atomic.Int32

	// writeMu orders every mutation of the cache and the backend
	writeMu sync.Mutex

	mu     sync.RWMutex
	cache  map[string]cacheEntry
	subs   map[string][]subscriber
	nextID uint64
}

// NewStore creates a store over backend. prefix namespaces every key.
func NewStore(backend Backend, prefix string) *Store {
	return &Store{
		backend: backend,
		prefix:  prefix,
		log:     logger.ComponentLogger("storage"),
		cache:   make(map[string]cacheEntry),
		subs:    make(map[string][]subscriber),
	}
}

// SetVerbosity sets the CLI -v count that gates per-key logging
func (s *Store) SetVerbosity(verbosity int) {
	s.verbosity.Store(int32(verbosity))
}

func (s *Store) logStorageOps() bool {
	return logger.ShouldOutput(int(s.verbosity.Load()), logger.OutputStorageOps)
}

// Prefix returns the key namespace
func (s *Store) Prefix() string {
	return s.prefix
}

// FullKey returns the stored name of a collection key
func (s *Store) FullKey(name string) string {
	return s.prefix + name
}

// Close releases the backend
func (s *Store) Close() error {
	return s.backend.Close()
}

// Raw returns the cached bytes for key, loading them from the backend on first
// use. A nil result means the key is absent.
func (s *Store) Raw(ctx context.Context, key string) []byte {
	s.mu.RLock()
	entry, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return entry.raw
	}
	return s.load(ctx, key).raw
}

func (s *Store) load(ctx context.Context, key string) cacheEntry {
	stored, found, err := s.backend.Get(ctx, key)
	if err != nil {
		// Not cached, so the next read retries the backend
		s.log.Warnw("Store read failed, using fallback",
			logger.FieldKey, key,
			logger.FieldError, err,
		)
		return cacheEntry{}
	}

	entry := cacheEntry{revision: stored.Revision}
	if found {
		entry.raw = stored.Value
	}
	if s.logStorageOps() {
		s.log.Debugw("Store read",
			logger.FieldKey, key,
			logger.FieldRevision, stored.Revision,
			logger.FieldSize, len(entry.raw),
		)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A concurrent write or external change may have landed first
	if existing, ok := s.cache[key]; ok {
		return existing
	}
	s.cache[key] = entry
	return entry
}

// put persists raw (nil clears) and updates the cache. Caller holds writeMu.
func (s *Store) put(ctx context.Context, key string, raw []byte) {
	var revision int64
	var err error
	if raw == nil {
		revision, err = s.backend.Delete(ctx, key)
	} else {
		revision, err = s.backend.Set(ctx, key, raw)
	}

	s.mu.Lock()
	if err != nil {
		s.log.Errorw("Store write failed, keeping value in memory only",
			logger.FieldKey, key,
			logger.FieldSize, len(raw),
			logger.FieldError, err,
		)
		revision = s.cache[key].revision
	}
	s.cache[key] = cacheEntry{raw: raw, revision: revision}
	s.mu.Unlock()

	if s.logStorageOps() {
		s.log.Debugw("Store write",
			logger.FieldKey, key,
			logger.FieldRevision, revision,
			logger.FieldSize, len(raw),
		)
	}
}

// ApplyExternal records a change made outside this Store, typically by another
// process, and notifies subscribers. A nil value means the key was cleared.
// Changes older than the cached revision, and changes whose bytes equal the
// cached bytes, are ignored; the latter covers echoes of this process's writes.
// It reports whether subscribers were notified.
func (s *Store) ApplyExternal(change Change) bool {
	s.writeMu.Lock()
	s.mu.Lock()
	current, cached := s.cache[change.Key]
	if cached && change.Revision > 0 && change.Revision <= current.revision {
		s.mu.Unlock()
		s.writeMu.Unlock()
		return false
	}
	if cached && bytes.Equal(current.raw, change.Value) && (current.raw == nil) == (change.Value == nil) {
		current.revision = change.Revision
		s.cache[change.Key] = current
		s.mu.Unlock()
		s.writeMu.Unlock()
		return false
	}
	s.cache[change.Key] = cacheEntry{raw: change.Value, revision: change.Revision}
	s.mu.Unlock()
	s.writeMu.Unlock()

	s.log.Debugw("External change applied",
		logger.FieldKey, change.Key,
		logger.FieldRevision, change.Revision,
	)
	s.notify(change.Key)
	return true
}

// subscribe registers fn for key and returns its release function
func (s *Store) subscribe(key string, fn func(raw []byte)) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs[key] = append(s.subs[key], subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			subs := s.subs[key]
			for i, sub := range subs {
				if sub.id == id {
					s.subs[key] = append(subs[:i:i], subs[i+1:]...)
					break
				}
			}
			if len(s.subs[key]) == 0 {
				delete(s.subs, key)
			}
		})
	}
}

// notify delivers the current cached value of key to its subscribers.
// Called without locks held so subscribers may write to the store.
func (s *Store) notify(key string) {
	s.mu.RLock()
	raw := s.cache[key].raw
	subs := append([]subscriber(nil), s.subs[key]...)
	s.mu.RUnlock()

	for _, sub := range subs {
		sub.fn(raw)
	}
}

// SubscriberCount returns how many subscribers key has
func (s *Store) SubscriberCount(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs[key])
}
