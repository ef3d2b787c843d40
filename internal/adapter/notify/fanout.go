// Package notify delivers ledger change notifications to in-process
// observers.
package notify

import (
	"sync"

	"landmarket/internal/core/port"
)

type subject[T any] struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(T)
}

func (s *subject[T]) subscribe(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]func(T))
	}
	id := s.next
	s.next++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// emit calls subscribers on the caller's goroutine, outside the lock.
func (s *subject[T]) emit(v T) {
	s.mu.RLock()
	fns := make([]func(T), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(v)
	}
}

// Fanout is the subscriber list shared by LedgerStore implementations. The
// zero value is ready to use.
type Fanout struct {
	changes subject[port.Change]
}

// Subscribe registers fn and returns its cancel func.
func (f *Fanout) Subscribe(fn func(port.Change)) func() {
	return f.changes.subscribe(fn)
}

// Publish calls every subscriber with c.
func (f *Fanout) Publish(c port.Change) {
	f.changes.emit(c)
}
