// Package bus carries command tokens between UI components that must not
// hold references to each other.
package bus

import "sync"

// Bus is a replay-latest publish/subscribe channel. A new subscriber is
// handed the most recently sent value right away, then every later one in
// send order. Delivery is synchronous: Send returns once every handler ran.
type Bus[T any] struct {
	mu     sync.Mutex
	latest T
	subs   []*Subscription[T]
}

// Subscription is the handle returned by Subscribe.
type Subscription[T any] struct {
	bus     *Bus[T]
	handler func(T)

	mu     sync.Mutex
	closed bool
}

// New returns a bus whose latest value starts as initial.
func New[T any](initial T) *Bus[T] {
	return &Bus[T]{latest: initial}
}

// Send records v as the latest value and delivers it to every subscriber.
func (b *Bus[T]) Send(v T) {
	b.mu.Lock()
	b.latest = v
	subs := make([]*Subscription[T], len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		s.deliver(v)
	}
}

// Subscribe registers handler and immediately replays the latest value to it.
func (b *Bus[T]) Subscribe(handler func(T)) *Subscription[T] {
	s := &Subscription[T]{bus: b, handler: handler}

	b.mu.Lock()
	b.subs = append(b.subs, s)
	latest := b.latest
	b.mu.Unlock()

	s.deliver(latest)
	return s
}

// Latest returns the most recently sent value.
func (b *Bus[T]) Latest() T {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest
}

func (b *Bus[T]) remove(s *Subscription[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub == s {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Unsubscribe stops delivery. It is safe to call more than once and from
// inside the handler itself.
func (s *Subscription[T]) Unsubscribe() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.bus.remove(s)
}

func (s *Subscription[T]) deliver(v T) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}
	s.handler(v)
}
