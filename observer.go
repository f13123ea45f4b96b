package drx

import "sync"

// Observer consumes a notification sequence.
//
// OnNext is called zero or more times,
// then at most one of OnError or OnCompleted is called.
// Implementations should not panic;
// a panic raised by a handler propagates to whoever triggered the notification
// and is not recovered anywhere in this package.
type Observer[T any] interface {
	OnNext(T)
	OnError(error)
	OnCompleted()
}

// ObserverFuncs is an [Observer] built from optional callbacks.
// A nil field means that notification is ignored.
type ObserverFuncs[T any] struct {
	Next      func(T)
	Error     func(error)
	Completed func()
}

func (f ObserverFuncs[T]) OnNext(v T) {
	if f.Next != nil {
		f.Next(v)
	}
}

func (f ObserverFuncs[T]) OnError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}

func (f ObserverFuncs[T]) OnCompleted() {
	if f.Completed != nil {
		f.Completed()
	}
}

// sink is the downstream half of every operator node.
// It drops anything that arrives after a terminal notification,
// which makes the node tolerant of a misbehaving upstream.
//
// A sink is not safe for concurrent use;
// upstreams deliver serially per the Observer contract.
type sink[T any] struct {
	o    Observer[T]
	done bool
}

func (s *sink[T]) next(v T) {
	if s.done {
		return
	}
	s.o.OnNext(v)
}

func (s *sink[T]) error(err error) {
	if s.done {
		return
	}
	s.done = true
	s.o.OnError(err)
}

func (s *sink[T]) completed() {
	if s.done {
		return
	}
	s.done = true
	s.o.OnCompleted()
}

// Serialize wraps o so that notifications arriving concurrently,
// or reentrantly from inside one of o's own handlers,
// are delivered one at a time in arrival order.
//
// Only contended notifications are queued.
// The goroutine that finds o idle delivers directly,
// then drains whatever queued up behind it before returning.
// The returned observer also enforces the terminal-once rule.
func Serialize[T any](o Observer[T]) Observer[T] {
	return &serialObserver[T]{o: o}
}

type serialObserver[T any] struct {
	mu       sync.Mutex
	emitting bool
	done     bool
	queue    []Notification[T]

	o Observer[T]
}

func (s *serialObserver[T]) OnNext(v T) {
	s.deliver(Next(v))
}

func (s *serialObserver[T]) OnError(err error) {
	s.deliver(Error[T](err))
}

func (s *serialObserver[T]) OnCompleted() {
	s.deliver(Completed[T]())
}

func (s *serialObserver[T]) deliver(n Notification[T]) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	if n.Kind != KindNext {
		// Anything queued or arriving later is discarded.
		s.done = true
	}
	if s.emitting {
		s.queue = append(s.queue, n)
		s.mu.Unlock()
		return
	}
	s.emitting = true
	s.mu.Unlock()

	for {
		n.Accept(s.o)

		s.mu.Lock()
		if len(s.queue) == 0 {
			s.emitting = false
			s.mu.Unlock()
			return
		}
		n = s.queue[0]
		s.queue[0] = Notification[T]{}
		s.queue = s.queue[1:]
		s.mu.Unlock()
	}
}
