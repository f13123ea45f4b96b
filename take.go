package drx

import "context"

// Take returns an Observable that produces at most the first n items of src.
// On receiving the n-th item it releases its upstream subscription itself,
// delivers the item and completes, without waiting for src to finish.
// Items pushed into src from inside a downstream handler
// never push the count past n.
//
// If src terminates earlier, the terminal notification passes through.
// Take with n <= 0 completes immediately and never subscribes to src.
func Take[T any](src Observable[T], n int) Observable[T] {
	if n <= 0 {
		return ObservableFunc[T](func(ctx context.Context, o Observer[T]) Subscription {
			if ctx.Err() == nil {
				o.OnCompleted()
			}
			return Inert()
		})
	}

	return ObservableFunc[T](func(ctx context.Context, o Observer[T]) Subscription {
		ctx, cancel := context.WithCancel(ctx)
		node := &takeNode[T]{
			out:       sink[T]{o: o},
			remaining: n,
			cancel:    cancel,
		}
		node.upstream.Set(src.Subscribe(ctx, node))
		return NewSubscription(node.stop)
	})
}

type takeNode[T any] struct {
	out       sink[T]
	remaining int

	cancel   context.CancelFunc
	upstream Serial
}

// stop cancels the upstream context, which halts a producer
// still running inside its Subscribe call,
// and releases the upstream subscription if one has been returned yet.
func (n *takeNode[T]) stop() {
	n.cancel()
	n.upstream.Unsubscribe()
}

func (n *takeNode[T]) OnNext(v T) {
	if n.out.done || n.remaining <= 0 {
		return
	}
	n.remaining--
	if n.remaining > 0 {
		n.out.next(v)
		return
	}

	// Upstream is released before the last delivery;
	// pushes made from inside the downstream handler are dropped.
	n.stop()
	n.out.next(v)
	n.out.completed()
}

func (n *takeNode[T]) OnError(err error) { n.out.error(err) }
func (n *takeNode[T]) OnCompleted()      { n.out.completed() }

// TakeWhile returns an Observable that produces items of src
// as long as p holds for them.
// The first item failing p is dropped,
// the upstream subscription is released, and the stream completes.
func TakeWhile[T any](src Observable[T], p func(T) bool) Observable[T] {
	return ObservableFunc[T](func(ctx context.Context, o Observer[T]) Subscription {
		ctx, cancel := context.WithCancel(ctx)
		node := &takeWhileNode[T]{
			out:    sink[T]{o: o},
			p:      p,
			cancel: cancel,
		}
		node.upstream.Set(src.Subscribe(ctx, node))
		return NewSubscription(node.stop)
	})
}

type takeWhileNode[T any] struct {
	out sink[T]
	p   func(T) bool

	cancel   context.CancelFunc
	upstream Serial
}

func (n *takeWhileNode[T]) stop() {
	n.cancel()
	n.upstream.Unsubscribe()
}

func (n *takeWhileNode[T]) OnNext(v T) {
	if n.out.done {
		return
	}
	if !n.p(v) {
		n.stop()
		n.out.completed()
		return
	}
	n.out.next(v)
}

func (n *takeWhileNode[T]) OnError(err error) { n.out.error(err) }
func (n *takeWhileNode[T]) OnCompleted()      { n.out.completed() }
