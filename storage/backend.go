package storage

import "context"

// Entry is a raw stored value with the store-wide revision of its last write.
// Value is nil for a cleared key.
type Entry struct {
	Value    []byte
	Revision int64
}

// Change is a write observed on the shared key space, possibly from another process.
type Change struct {
	Key string
	Entry
}

// Backend is durable key/value storage holding whole-value snapshots.
//
// Get reports found=false for keys never written and for cleared keys; a
// cleared key still carries the revision of the clear.
type Backend interface {
	Get(ctx context.Context, key string) (entry Entry, found bool, err error)
	Set(ctx context.Context, key string, value []byte) (revision int64, err error)
	Delete(ctx context.Context, key string) (revision int64, err error)
	Close() error
}

// ChangeSource delivers changes made to the shared key space by any process.
// Tail blocks until ctx is cancelled, calling emit for each change in order.
type ChangeSource interface {
	Tail(ctx context.Context, emit func(Change)) error
}
