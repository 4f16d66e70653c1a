package live

import (
	"context"
	"sync"
)

// Snapshot is one evaluation of a live query
type Snapshot[T any] struct {
	Value T
	Err   error
}

// Subscription delivers a fresh Snapshot on C whenever a watched table changes.
// C is closed once the subscription has stopped.
type Subscription[T any] struct {
	C <-chan Snapshot[T]

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Watch evaluates fetch immediately and again after every change to one of the
// tables, until ctx is cancelled or Close is called. Changes that arrive while
// a result is waiting to be consumed are folded into a single re-evaluation.
func Watch[T any](ctx context.Context, n *Notifier, fetch func(context.Context) (T, error), tables ...string) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan Snapshot[T])
	sub := &Subscription[T]{C: out, cancel: cancel, done: make(chan struct{})}

	// Subscribe before the first fetch so no change between the two is lost.
	changed, unsubscribe := n.Subscribe(tables...)

	go func() {
		defer close(sub.done)
		defer close(out)
		defer unsubscribe()

		for {
			value, err := fetch(ctx)
			if ctx.Err() != nil {
				return
			}

			select {
			case out <- Snapshot[T]{Value: value, Err: err}:
			case <-ctx.Done():
				return
			}

			select {
			case <-changed:
			case <-ctx.Done():
				return
			}
		}
	}()

	return sub
}

// Close stops the subscription and waits for its goroutine to exit
func (s *Subscription[T]) Close() {
	s.once.Do(s.cancel)
	<-s.done
}

// Done is closed once the subscription goroutine has exited
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}
