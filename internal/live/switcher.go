package live

import (
	"context"
	"sync"
	"sync/atomic"
)

// Switcher runs at most one task at a time. Starting a task cancels the
// running one and waits for it to return, so a superseded task can never
// publish after its replacement has started.
type Switcher struct {
	mu     sync.Mutex
	gen    atomic.Uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// Start cancels the current task, waits for it, then runs fn in a new
// goroutine with the next generation number. It returns that generation.
func (s *Switcher) Start(ctx context.Context, fn func(ctx context.Context, gen uint64)) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	gen := s.gen.Add(1)
	taskCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go func() {
		defer close(done)
		fn(taskCtx, gen)
	}()

	return gen
}

// Stop cancels the current task, if any, and waits for it to return.
// The generation is advanced so late results of the stopped task are stale.
func (s *Switcher) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.gen.Add(1)
}

// Current returns the generation of the most recently started task
func (s *Switcher) Current() uint64 {
	return s.gen.Load()
}

// IsCurrent reports whether gen still belongs to the latest task
func (s *Switcher) IsCurrent(gen uint64) bool {
	return s.gen.Load() == gen
}

func (s *Switcher) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}
