package drx

import "context"

// Filter returns an Observable that produces only the items of src
// for which p reports true.
// Terminal notifications pass through unchanged.
func Filter[T any](src Observable[T], p func(T) bool) Observable[T] {
	return ObservableFunc[T](func(ctx context.Context, o Observer[T]) Subscription {
		return src.Subscribe(ctx, &filterNode[T]{
			out: sink[T]{o: o},
			p:   p,
		})
	})
}

type filterNode[T any] struct {
	out sink[T]
	p   func(T) bool
}

func (n *filterNode[T]) OnNext(v T) {
	if n.out.done || !n.p(v) {
		return
	}
	n.out.next(v)
}

func (n *filterNode[T]) OnError(err error) { n.out.error(err) }
func (n *filterNode[T]) OnCompleted()      { n.out.completed() }
