package drx

import "context"

// Scan returns an Observable that produces the running accumulation
// of src's items: f(seed, v1), f(f(seed, v1), v2), and so on.
// Each subscription starts again from seed.
func Scan[T, A any](src Observable[T], seed A, f func(A, T) A) Observable[A] {
	return ObservableFunc[A](func(ctx context.Context, o Observer[A]) Subscription {
		return src.Subscribe(ctx, &scanNode[T, A]{
			out: sink[A]{o: o},
			acc: seed,
			f:   f,
		})
	})
}

type scanNode[T, A any] struct {
	out sink[A]
	acc A
	f   func(A, T) A
}

func (n *scanNode[T, A]) OnNext(v T) {
	if n.out.done {
		return
	}
	n.acc = n.f(n.acc, v)
	n.out.next(n.acc)
}

func (n *scanNode[T, A]) OnError(err error) { n.out.error(err) }
func (n *scanNode[T, A]) OnCompleted()      { n.out.completed() }
