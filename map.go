package drx

import "context"

// Map returns an Observable that produces f(v) for every item v of src.
// Terminal notifications pass through unchanged.
func Map[T, U any](src Observable[T], f func(T) U) Observable[U] {
	return ObservableFunc[U](func(ctx context.Context, o Observer[U]) Subscription {
		return src.Subscribe(ctx, &mapNode[T, U]{
			out: sink[U]{o: o},
			f:   f,
		})
	})
}

type mapNode[T, U any] struct {
	out sink[U]
	f   func(T) U
}

func (n *mapNode[T, U]) OnNext(v T) {
	if n.out.done {
		return
	}
	n.out.next(n.f(v))
}

func (n *mapNode[T, U]) OnError(err error) { n.out.error(err) }
func (n *mapNode[T, U]) OnCompleted()      { n.out.completed() }

// MapErr is like [Map] for a fallible f.
// The first error returned by f releases the upstream subscription
// and fails the resulting stream with that error.
func MapErr[T, U any](src Observable[T], f func(T) (U, error)) Observable[U] {
	return ObservableFunc[U](func(ctx context.Context, o Observer[U]) Subscription {
		ctx, cancel := context.WithCancel(ctx)
		n := &mapErrNode[T, U]{
			out:    sink[U]{o: o},
			f:      f,
			cancel: cancel,
		}
		n.upstream.Set(src.Subscribe(ctx, n))
		return NewSubscription(n.stop)
	})
}

type mapErrNode[T, U any] struct {
	out sink[U]
	f   func(T) (U, error)

	cancel   context.CancelFunc
	upstream Serial
}

func (n *mapErrNode[T, U]) stop() {
	n.cancel()
	n.upstream.Unsubscribe()
}

func (n *mapErrNode[T, U]) OnNext(v T) {
	if n.out.done {
		return
	}
	u, err := n.f(v)
	if err != nil {
		n.stop()
		n.out.error(err)
		return
	}
	n.out.next(u)
}

func (n *mapErrNode[T, U]) OnError(err error) { n.out.error(err) }
func (n *mapErrNode[T, U]) OnCompleted()      { n.out.completed() }
