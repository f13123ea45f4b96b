package drxtest

import (
	"fmt"
	"sync"

	"github.com/gordian-engine/drx"
)

// Recorder is a [drx.Observer] that records every notification it receives,
// including any that violate the notification contract,
// so tests can inspect both the sequence and its validity.
//
// Recorder is safe for concurrent use.
type Recorder[T any] struct {
	mu  sync.Mutex
	ns  []drx.Notification[T]
	bad []string

	terminated bool
	done       chan struct{}
}

// NewRecorder returns an empty Recorder.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{
		done: make(chan struct{}),
	}
}

func (r *Recorder[T]) OnNext(v T) {
	r.record(drx.Next(v))
}

func (r *Recorder[T]) OnError(err error) {
	r.record(drx.Error[T](err))
}

func (r *Recorder[T]) OnCompleted() {
	r.record(drx.Completed[T]())
}

func (r *Recorder[T]) record(n drx.Notification[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.terminated {
		r.bad = append(r.bad, fmt.Sprintf(
			"%s received after terminal notification (position %d)", n, len(r.ns),
		))
	}
	r.ns = append(r.ns, n)

	if n.IsTerminal() && !r.terminated {
		r.terminated = true
		close(r.done)
	}
}

// Notifications returns a copy of everything recorded so far, in order.
func (r *Recorder[T]) Notifications() []drx.Notification[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]drx.Notification[T], len(r.ns))
	copy(out, r.ns)
	return out
}

// Values returns the items of every recorded OnNext, in order.
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []T
	for _, n := range r.ns {
		if n.Kind == drx.KindNext {
			out = append(out, n.Value)
		}
	}
	return out
}

// Completed reports whether the first terminal notification was a completion.
func (r *Recorder[T]) Completed() bool {
	n, ok := r.terminal()
	return ok && n.Kind == drx.KindCompleted
}

// Err returns the error of the first terminal notification,
// or nil if r has not failed.
func (r *Recorder[T]) Err() error {
	n, ok := r.terminal()
	if !ok || n.Kind != drx.KindError {
		return nil
	}
	return n.Err
}

// Terminated reports whether any terminal notification was recorded.
func (r *Recorder[T]) Terminated() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.terminated
}

// Done returns a channel that is closed
// when the first terminal notification is recorded.
func (r *Recorder[T]) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// Violations describes every way the recorded sequence broke
// the notification contract.
// It is empty for a valid sequence.
func (r *Recorder[T]) Violations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.bad))
	copy(out, r.bad)
	return out
}

// Reset discards everything recorded.
// It must not be called while r is still subscribed.
func (r *Recorder[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ns = nil
	r.bad = nil
	r.terminated = false
	r.done = make(chan struct{})
}

func (r *Recorder[T]) terminal() (drx.Notification[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.ns {
		if n.IsTerminal() {
			return n, true
		}
	}
	return drx.Notification[T]{}, false
}
