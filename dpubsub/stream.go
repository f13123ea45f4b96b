package dpubsub

import (
	"context"
	"iter"
)

// Stream is one node of an append-only linked list of values.
// A single writer publishes node after node,
// while any number of readers follow Next at their own pace.
//
// A reader that stops following the list
// keeps its current node and everything after it reachable,
// so abandoned readers must drop their reference.
type Stream[T any] struct {
	// Closed once Val and Next are set.
	Ready chan struct{}

	Next *Stream[T]
	Val  T
}

// NewStream returns an unpublished node.
func NewStream[T any]() *Stream[T] {
	return &Stream[T]{
		Ready: make(chan struct{}),
	}
}

// Publish sets s.Val, links a fresh unpublished node as s.Next,
// and closes s.Ready.
// It returns s.Next, which is where the writer publishes next.
//
// Publish panics if s was already published.
func (s *Stream[T]) Publish(v T) *Stream[T] {
	if s.Published() {
		panic("BUG: Stream.Publish called twice on the same node")
	}
	s.Val = v
	s.Next = NewStream[T]()
	close(s.Ready)
	return s.Next
}

// Published reports, without blocking, whether s.Val may be read.
func (s *Stream[T]) Published() bool {
	select {
	case <-s.Ready:
		return true
	default:
		return false
	}
}

// Wait blocks until s has been published or ctx is done.
// It reports whether s.Val may be read.
func (s *Stream[T]) Wait(ctx context.Context) bool {
	select {
	case <-s.Ready:
		return true
	case <-ctx.Done():
		return s.Published()
	}
}

// All yields the values of s and every following node as they are published.
// Once ctx is done, the sequence ends at the first unpublished node.
func (s *Stream[T]) All(ctx context.Context) iter.Seq[T] {
	return func(yield func(T) bool) {
		for cur := s; cur.Wait(ctx); cur = cur.Next {
			if !yield(cur.Val) {
				return
			}
		}
	}
}
