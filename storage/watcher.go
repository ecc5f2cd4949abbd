package storage

import (
	"context"
	"sync"

	"github.com/teranos/cashngo/errors"
	"github.com/teranos/cashngo/logger"
)

// ChangeCallback observes each change the watcher applies
type ChangeCallback func(Change)

// Watcher feeds a ChangeSource into a Store so subscribers in this process see
// writes made by other processes.
type Watcher struct {
	store  *Store
	source ChangeSource

	mu        sync.RWMutex
	callbacks []ChangeCallback
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewWatcher creates a watcher; call Start to begin
func NewWatcher(store *Store, source ChangeSource) *Watcher {
	return &Watcher{store: store, source: source}
}

// OnChange registers a callback run after each change that reached subscribers
func (w *Watcher) OnChange(cb ChangeCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Start begins tailing in the background until ctx is cancelled or Stop is called
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return errors.New("watcher already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	go func() {
		defer close(w.done)
		if err := w.source.Tail(ctx, w.apply); err != nil {
			logger.Errorw("Store watcher stopped", logger.FieldError, err)
		}
	}()
	return nil
}

// Stop cancels tailing and waits for the loop to exit
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel = nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (w *Watcher) apply(c Change) {
	if !w.store.ApplyExternal(c) {
		return
	}

	w.mu.RLock()
	callbacks := make([]ChangeCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.RUnlock()

	for _, cb := range callbacks {
		cb(c)
	}
}
