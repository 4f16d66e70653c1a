// Package screens holds the view state of each client screen. A screen owns
// one goroutine that follows the device session, keeps the live queries its
// state depends on, and publishes immutable snapshots.
package screens

import (
	"context"
	"sync"
)

// Status is the load state of a screen
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Settled reports whether loading has finished, successfully or not
func (s Status) Settled() bool {
	return s == StatusReady || s == StatusError
}

// Holder keeps the latest snapshot of a screen and fans it out to watchers.
// Snapshots are replaced, never modified in place.
type Holder[S any] struct {
	mu       sync.Mutex
	value    S
	nextID   uint64
	watchers map[uint64]chan S
}

func newHolder[S any](initial S) *Holder[S] {
	return &Holder[S]{value: initial, watchers: make(map[uint64]chan S)}
}

// Snapshot returns the current view state
func (h *Holder[S]) Snapshot() S {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.value
}

// Updates delivers the current snapshot and then every change until ctx is
// done, when the channel is closed. Slow readers only see the latest snapshot.
func (h *Holder[S]) Updates(ctx context.Context) <-chan S {
	ch := make(chan S, 1)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.watchers[id] = ch
	ch <- h.value
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.watchers, id)
		close(ch)
		h.mu.Unlock()
	}()

	return ch
}

// Await blocks until a snapshot satisfies ready or ctx is done
func (h *Holder[S]) Await(ctx context.Context, ready func(S) bool) (S, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for snap := range h.Updates(ctx) {
		if ready(snap) {
			return snap, nil
		}
	}
	var zero S
	return zero, ctx.Err()
}

// update applies fn to a copy of the state when allowed reports true
func (h *Holder[S]) update(allowed func() bool, fn func(*S)) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if allowed != nil && !allowed() {
		return
	}
	next := h.value
	fn(&next)
	h.value = next

	for _, ch := range h.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- next
	}
}
