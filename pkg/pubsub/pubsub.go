// Package pubsub provides a last-value-replay subject: a minimal
// publish/subscribe primitive for pushing state changes to observers.
//
// A Subject delivers every update to all current subscribers, in subscription
// order, before Set returns. Late subscribers immediately receive the most
// recent value. Each update is delivered at most once per subscriber.
package pubsub

import "sync"

// Subject is a concurrency-safe observable value of type T.
//
// Callbacks run synchronously on the publishing goroutine while the subject's
// lock is held. They must not call back into the same Subject; long-running
// work should be dispatched to another goroutine.
type Subject[T any] struct {
	mu     sync.Mutex
	hasVal bool
	last   T
	subs   []*subscription[T]
	nextID int
}

type subscription[T any] struct {
	id int
	fn func(T)
}

// NewSubject returns an empty Subject. Until the first Set, Get reports no
// value and new subscribers receive no replay.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

// Set stores v as the latest value and delivers it to all current
// subscribers in subscription order.
func (s *Subject[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hasVal = true
	s.last = v
	for _, sub := range s.subs {
		sub.fn(v)
	}
}

// Get returns the latest value and whether any value has been set.
func (s *Subject[T]) Get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.hasVal
}

// Subscribe registers fn to receive future updates. If a value has already
// been set, fn is invoked with it immediately (replay). The returned cancel
// function removes the subscription; it is safe to call more than once.
func (s *Subject[T]) Subscribe(fn func(T)) (cancel func()) {
	s.mu.Lock()
	sub := &subscription[T]{id: s.nextID, fn: fn}
	s.nextID++
	s.subs = append(s.subs, sub)
	if s.hasVal {
		fn(s.last)
	}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, cur := range s.subs {
			if cur.id == sub.id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}
