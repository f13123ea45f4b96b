package drx

import "context"

// Skip returns an Observable that drops the first n items of src
// and produces the rest.
// Terminal notifications pass through unchanged,
// including when src terminates before n items were seen.
func Skip[T any](src Observable[T], n int) Observable[T] {
	return ObservableFunc[T](func(ctx context.Context, o Observer[T]) Subscription {
		return src.Subscribe(ctx, &skipNode[T]{
			out:       sink[T]{o: o},
			remaining: n,
		})
	})
}

type skipNode[T any] struct {
	out       sink[T]
	remaining int
}

func (n *skipNode[T]) OnNext(v T) {
	if n.remaining > 0 {
		n.remaining--
		return
	}
	n.out.next(v)
}

func (n *skipNode[T]) OnError(err error) { n.out.error(err) }
func (n *skipNode[T]) OnCompleted()      { n.out.completed() }
