// Package state provides Slot, an observable value holder.
//
// A Slot is written only by its owner and read by any number of
// subscribers. Writes replace the value; subscribers always observe the
// latest value, and a subscriber that arrives late receives the current
// value immediately. Intermediate values may be skipped by slow readers.
package state

import "sync"

// Slot holds a value of type T and notifies subscribers on every write.
type Slot[T any] struct {
	mu     sync.RWMutex
	value  T
	subs   map[int]chan T
	nextID int
}

// NewSlot creates a slot with an initial value.
func NewSlot[T any](initial T) *Slot[T] {
	return &Slot[T]{value: initial, subs: make(map[int]chan T)}
}

// Get returns the current value.
func (s *Slot[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the value and publishes it.
func (s *Slot[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
	for _, ch := range s.subs {
		offer(ch, v)
	}
}

// Update applies fn to the current value under the write lock.
func (s *Slot[T]) Update(fn func(T) T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = fn(s.value)
	for _, ch := range s.subs {
		offer(ch, s.value)
	}
	return s.value
}

// Subscribe returns a channel that yields the current value followed by
// every later write, plus a cancel func that closes the channel.
func (s *Slot[T]) Subscribe() (<-chan T, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan T, 1)
	ch <- s.value
	sid := s.nextID
	s.nextID++
	s.subs[sid] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, sid)
			close(ch)
		})
	}
	return ch, cancel
}

// Subscribers returns the number of live subscriptions.
func (s *Slot[T]) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// offer delivers v, dropping a stale undelivered value if the buffer is full.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}

// Observable is the read side of a Slot handed to consumers.
type Observable[T any] interface {
	Get() T
	Subscribe() (<-chan T, func())
}

var _ Observable[int] = (*Slot[int])(nil)
