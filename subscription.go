package drx

import "sync"

// Subscription represents active interest in a notification sequence.
//
// Unsubscribe withdraws that interest.
// It must be safe to call more than once, and from inside a notification
// handler that is running because of this very subscription.
// Unsubscribing never produces an error or completion notification;
// the observer simply stops receiving calls.
type Subscription interface {
	Unsubscribe()
}

// NewSubscription returns a Subscription that calls release
// the first time it is unsubscribed.
// A nil release yields an inert subscription.
func NewSubscription(release func()) Subscription {
	if release == nil {
		return Inert()
	}
	return &funcSubscription{release: release}
}

type funcSubscription struct {
	once    sync.Once
	release func()
}

func (s *funcSubscription) Unsubscribe() {
	s.once.Do(s.release)
}

// Inert returns a Subscription whose Unsubscribe does nothing.
// Observables that finish their whole production inside Subscribe return it,
// since there is nothing left to cancel by the time the caller holds it.
func Inert() Subscription {
	return inertSubscription{}
}

type inertSubscription struct{}

func (inertSubscription) Unsubscribe() {}

// Composite is a Subscription that owns any number of child subscriptions.
// Unsubscribing the composite unsubscribes every child exactly once;
// children added afterwards are unsubscribed immediately.
//
// The zero value is ready to use.
type Composite struct {
	mu     sync.Mutex
	closed bool
	subs   []Subscription
}

// Add registers sub with c.
// If c was already unsubscribed, sub is unsubscribed before Add returns.
func (c *Composite) Add(sub Subscription) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		sub.Unsubscribe()
		return
	}
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
}

// Unsubscribe releases every child in the order they were added.
func (c *Composite) Unsubscribe() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	// Children run outside the lock,
	// because a child may reenter c through a notification handler.
	for _, sub := range subs {
		sub.Unsubscribe()
	}
}

// Serial holds a single upstream subscription
// that may be cancelled before it is known.
//
// Operator nodes that self-cancel (such as [Take]) can be told to stop
// while the upstream Subscribe call is still running,
// before it has returned the Subscription to hold.
// Serial remembers the request and releases the subscription
// as soon as [*Serial.Set] provides it.
//
// The zero value is ready to use.
type Serial struct {
	mu     sync.Mutex
	closed bool
	sub    Subscription
}

// Set stores sub. It must be called at most once.
// If s was already unsubscribed, sub is released immediately.
func (s *Serial) Set(sub Subscription) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.Unsubscribe()
		return
	}
	if s.sub != nil {
		s.mu.Unlock()
		panic("BUG: Serial.Set called twice")
	}
	s.sub = sub
	s.mu.Unlock()
}

// Unsubscribe releases the held subscription, if any,
// and causes any later Set to release immediately.
func (s *Serial) Unsubscribe() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

// Closed reports whether s has been unsubscribed.
func (s *Serial) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
