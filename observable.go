package drx

import (
	"context"
	"sync"
)

// Observable produces a notification sequence for each Observer
// that subscribes to it.
//
// Subscribe may deliver the whole sequence before returning,
// or arrange for delivery later; that is up to the implementation.
// Failures are delivered through OnError, never returned from Subscribe.
//
// Cancelling ctx has the same effect as unsubscribing the returned Subscription.
// Implementations that produce synchronously must watch ctx,
// because a downstream operator may need to stop them
// before Subscribe has returned anything it could unsubscribe.
type Observable[T any] interface {
	Subscribe(ctx context.Context, o Observer[T]) Subscription
}

// ObservableFunc adapts a function to the [Observable] interface.
type ObservableFunc[T any] func(ctx context.Context, o Observer[T]) Subscription

func (f ObservableFunc[T]) Subscribe(ctx context.Context, o Observer[T]) Subscription {
	return f(ctx, o)
}

// Runner decides where a unit of work runs.
// The core never schedules anything on its own;
// a Runner is how a caller hands it a place to run.
type Runner func(func())

// Goroutine is a [Runner] that starts a new goroutine for each call.
func Goroutine(f func()) {
	go f()
}

// SubscribeOn returns an Observable that performs the subscription to src
// through run.
//
// This is how a blocking source (one that produces inside Subscribe)
// is moved off the subscribing call stack.
// Notifications are delivered wherever run executes the work.
func SubscribeOn[T any](src Observable[T], run Runner) Observable[T] {
	return ObservableFunc[T](func(ctx context.Context, o Observer[T]) Subscription {
		ctx, cancel := context.WithCancel(ctx)
		upstream := new(Serial)

		run(func() {
			if ctx.Err() != nil {
				return
			}
			upstream.Set(src.Subscribe(ctx, o))
		})

		return NewSubscription(func() {
			cancel()
			upstream.Unsubscribe()
		})
	})
}

// Collect subscribes to src and blocks until it terminates,
// returning every item it produced and the error it failed with, if any.
//
// If ctx is cancelled first, Collect unsubscribes
// and returns nil and the context's error.
// Collect must not be used on a source that never terminates
// without a cancellable ctx.
func Collect[T any](ctx context.Context, src Observable[T]) ([]T, error) {
	var items []T
	err := ForEach(ctx, src, func(v T) {
		items = append(items, v)
	})
	if err != nil && ctx.Err() != nil {
		return nil, err
	}
	return items, err
}

// ForEach subscribes to src, calls fn for every item,
// and blocks until src terminates or ctx is cancelled.
// It returns the stream error, or the context's error on cancellation.
//
// Calls to fn are serialized even if src delivers from several goroutines.
// Once ForEach returns, fn is not running and will not be called again;
// on cancellation ForEach first waits for a call already in progress.
func ForEach[T any](ctx context.Context, src Observable[T], fn func(T)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var streamErr error
	done := make(chan struct{})

	var fnMu sync.Mutex
	stopped := false

	sub := src.Subscribe(ctx, Serialize[T](ObserverFuncs[T]{
		Next: func(v T) {
			fnMu.Lock()
			defer fnMu.Unlock()
			if !stopped {
				fn(v)
			}
		},
		Error: func(err error) {
			streamErr = err
			close(done)
		},
		Completed: func() {
			close(done)
		},
	}))
	defer sub.Unsubscribe()

	// Synchronous sources are already done here;
	// prefer their result over a concurrently cancelled context.
	select {
	case <-done:
		return streamErr
	default:
	}

	select {
	case <-done:
		return streamErr
	case <-ctx.Done():
		fnMu.Lock()
		stopped = true
		fnMu.Unlock()
		return context.Cause(ctx)
	}
}
