package storage

import (
	"context"
	"encoding/json"

	"github.com/teranos/cashngo/logger"
)

// Key is a typed handle on one stored collection.
//
// Every value handed out is freshly decoded, so callers own what they receive
// and mutating it does not affect the store.
type Key[T any] struct {
	store       *Store
	name        string
	fallback    T
	fallbackRaw []byte
}

// NewKey creates a handle for name (namespaced with the store prefix).
// fallback is returned whenever the value is absent or fails to parse.
func NewKey[T any](store *Store, name string, fallback T) *Key[T] {
	raw, err := json.Marshal(fallback)
	if err != nil {
		store.log.Warnw("Fallback is not serializable, handing out shared value",
			logger.FieldKey, name,
			logger.FieldError, err,
		)
		raw = nil
	}
	return &Key[T]{store: store, name: store.FullKey(name), fallback: fallback, fallbackRaw: raw}
}

// Name returns the full stored key
func (k *Key[T]) Name() string {
	return k.name
}

// Fallback returns a fresh copy of the default value
func (k *Key[T]) Fallback() T {
	if k.fallbackRaw != nil {
		var v T
		if err := json.Unmarshal(k.fallbackRaw, &v); err == nil {
			return v
		}
	}
	return k.fallback
}

// decode parses raw, falling back on absence or parse failure
func (k *Key[T]) decode(raw []byte) T {
	if raw == nil {
		return k.Fallback()
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		k.store.log.Warnw("Stored value does not parse, using fallback",
			logger.FieldKey, k.name,
			logger.FieldSize, len(raw),
			logger.FieldError, err,
		)
		return k.Fallback()
	}
	return v
}

// Read returns the current value, or the fallback
func (k *Key[T]) Read(ctx context.Context) T {
	return k.decode(k.store.Raw(ctx, k.name))
}

// Write replaces the value and notifies subscribers in this process
func (k *Key[T]) Write(ctx context.Context, v T) {
	raw, ok := k.encode(v)
	if !ok {
		return
	}
	k.store.writeMu.Lock()
	k.store.put(ctx, k.name, raw)
	k.store.writeMu.Unlock()
	k.store.notify(k.name)
}

// Update applies fn to the current value and writes the result. Updates in one
// process are totally ordered; fn must not call back into the store.
func (k *Key[T]) Update(ctx context.Context, fn func(prev T) T) T {
	k.store.writeMu.Lock()
	next := fn(k.Read(ctx))
	raw, ok := k.encode(next)
	if !ok {
		k.store.writeMu.Unlock()
		return next
	}
	k.store.put(ctx, k.name, raw)
	k.store.writeMu.Unlock()
	k.store.notify(k.name)
	return next
}

// UpdateIf is Update for callers that may decide not to change anything. When
// fn reports false nothing is persisted and no subscriber is notified; the
// current value is returned as read.
func (k *Key[T]) UpdateIf(ctx context.Context, fn func(prev T) (T, bool)) (T, bool) {
	k.store.writeMu.Lock()
	next, changed := fn(k.Read(ctx))
	if !changed {
		k.store.writeMu.Unlock()
		return next, false
	}
	raw, ok := k.encode(next)
	if !ok {
		k.store.writeMu.Unlock()
		return next, false
	}
	k.store.put(ctx, k.name, raw)
	k.store.writeMu.Unlock()
	k.store.notify(k.name)
	return next, true
}

// Clear removes the value; subscribers then observe the fallback
func (k *Key[T]) Clear(ctx context.Context) {
	k.store.writeMu.Lock()
	k.store.put(ctx, k.name, nil)
	k.store.writeMu.Unlock()
	k.store.notify(k.name)
}

// Subscribe calls fn with every new value of the key, from this process or
// (through a Watcher) another. The returned function unsubscribes and is safe
// to call more than once.
func (k *Key[T]) Subscribe(fn func(T)) func() {
	return k.store.subscribe(k.name, func(raw []byte) {
		fn(k.decode(raw))
	})
}

func (k *Key[T]) encode(v T) ([]byte, bool) {
	raw, err := json.Marshal(v)
	if err != nil {
		k.store.log.Errorw("Value does not serialize, write dropped",
			logger.FieldKey, k.name,
			logger.FieldError, err,
		)
		return nil, false
	}
	return raw, true
}
