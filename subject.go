package drx

import (
	"context"
	"log/slog"
	"sync"
)

// LatePolicy decides what a [Subject] does with observers
// that subscribe after it has already terminated.
type LatePolicy uint8

const (
	// ReplayTerminal delivers the recorded terminal notification
	// to a late observer immediately, inside Subscribe.
	ReplayTerminal LatePolicy = iota

	// Silence never notifies a late observer at all.
	Silence
)

// SubjectOption configures a [Subject].
type SubjectOption func(*subjectConfig)

type subjectConfig struct {
	policy LatePolicy
	log    *slog.Logger
}

// WithLatePolicy sets the late-subscriber policy.
// The default is [ReplayTerminal].
func WithLatePolicy(p LatePolicy) SubjectOption {
	return func(c *subjectConfig) {
		c.policy = p
	}
}

// WithLogger sets a logger for registry changes and termination,
// all logged at debug level.
func WithLogger(log *slog.Logger) SubjectOption {
	return func(c *subjectConfig) {
		c.log = log
	}
}

// Subject is a multicast hub.
// It is an [Observer], so a producer can push into it,
// and an [Observable], so any number of observers can subscribe to it.
// Every notification it receives is forwarded to all observers
// registered at that moment, in registration order.
//
// Once a Subject receives OnError or OnCompleted it is terminated:
// the terminal notification is forwarded, the registry is cleared,
// and every later push is ignored.
// What a later Subscribe sees depends on its [LatePolicy].
//
// A Subject is safe for concurrent use,
// but the relative order of pushes made concurrently from several goroutines
// is whatever order they win the lock in.
// Observers may subscribe, unsubscribe and push into the Subject
// from inside their own handlers.
type Subject[T any] struct {
	log    *slog.Logger
	policy LatePolicy

	mu      sync.Mutex
	nextID  uint64
	entries []*subjectEntry[T]

	terminated bool
	termErr    error
}

type subjectEntry[T any] struct {
	id  uint64
	o   Observer[T]
	ctx context.Context

	// Guarded by the Subject's mu.
	// A released entry may still be in a snapshot being forwarded,
	// so delivery re-checks this flag.
	active bool
}

// NewSubject returns a new, unterminated Subject.
func NewSubject[T any](opts ...SubjectOption) *Subject[T] {
	cfg := subjectConfig{
		policy: ReplayTerminal,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.log == nil {
		cfg.log = slog.New(slog.DiscardHandler)
	}

	return &Subject[T]{
		log:    cfg.log,
		policy: cfg.policy,
	}
}

// Subscribe registers o and returns a subscription that removes it.
// Cancelling ctx also removes it:
// once the cancel function has returned, o receives nothing more.
// An already cancelled ctx registers nothing.
//
// If s has already terminated, o is not registered.
// Under [ReplayTerminal] the terminal notification is delivered to o
// before Subscribe returns; under [Silence] o is never called.
// Either way the returned subscription is inert.
func (s *Subject[T]) Subscribe(ctx context.Context, o Observer[T]) Subscription {
	if ctx.Err() != nil {
		return Inert()
	}

	s.mu.Lock()
	if s.terminated {
		termErr := s.termErr
		s.mu.Unlock()

		if s.policy == ReplayTerminal {
			if termErr != nil {
				o.OnError(termErr)
			} else {
				o.OnCompleted()
			}
		}
		return Inert()
	}

	e := &subjectEntry[T]{
		id:     s.nextID,
		o:      o,
		ctx:    ctx,
		active: true,
	}
	s.nextID++
	s.entries = append(s.entries, e)
	n := len(s.entries)
	s.mu.Unlock()

	s.log.Debug("Observer registered", "id", e.id, "observers", n)

	// Delivery checks ctx directly,
	// so this only has to clean up the registry.
	stop := context.AfterFunc(ctx, func() {
		s.release(e)
	})
	return NewSubscription(func() {
		stop()
		s.release(e)
	})
}

func (s *Subject[T]) release(e *subjectEntry[T]) {
	s.mu.Lock()
	if !e.active {
		s.mu.Unlock()
		return
	}
	e.active = false
	for i, x := range s.entries {
		if x == e {
			s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
			break
		}
	}
	n := len(s.entries)
	s.mu.Unlock()

	s.log.Debug("Observer released", "id", e.id, "observers", n)
}

// OnNext forwards v to every registered observer.
// It does nothing if s has terminated.
func (s *Subject[T]) OnNext(v T) {
	s.mu.Lock()
	if s.terminated {
		s.mu.Unlock()
		return
	}
	snapshot := s.entries
	s.mu.Unlock()

	// Registration and release copy rather than modify s.entries in place,
	// so the snapshot stays stable while handlers run.
	for _, e := range snapshot {
		if !s.isActive(e) {
			continue
		}
		e.o.OnNext(v)
	}
}

// OnError terminates s with err and forwards it to every registered observer.
// It does nothing if s has already terminated.
func (s *Subject[T]) OnError(err error) {
	s.terminate(err, func(o Observer[T]) {
		o.OnError(err)
	})
}

// OnCompleted terminates s and forwards completion to every registered observer.
// It does nothing if s has already terminated.
func (s *Subject[T]) OnCompleted() {
	s.terminate(nil, func(o Observer[T]) {
		o.OnCompleted()
	})
}

func (s *Subject[T]) terminate(err error, notify func(Observer[T])) {
	s.mu.Lock()
	if s.terminated {
		s.mu.Unlock()
		return
	}
	// The terminal state is recorded before forwarding,
	// so a handler that pushes back into s during the fan-out is ignored.
	s.terminated = true
	s.termErr = err
	entries := s.entries
	s.entries = nil
	for _, e := range entries {
		e.active = false
	}
	s.mu.Unlock()

	s.log.Debug("Subject terminated", "observers", len(entries), "err", err)

	for _, e := range entries {
		if e.ctx.Err() != nil {
			continue
		}
		notify(e.o)
	}
}

// isActive reports whether e should still receive notifications.
func (s *Subject[T]) isActive(e *subjectEntry[T]) bool {
	if e.ctx.Err() != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return e.active
}

// HasObservers reports whether any observer is currently registered.
func (s *Subject[T]) HasObservers() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries) > 0
}

// Terminated reports whether s has terminated,
// and the error it terminated with, if any.
func (s *Subject[T]) Terminated() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminated, s.termErr
}
