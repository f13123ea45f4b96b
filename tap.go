package drx

import (
	"context"
	"log/slog"
)

// Tap returns an Observable that calls the matching callback of side
// before forwarding each notification of src unchanged.
func Tap[T any](src Observable[T], side ObserverFuncs[T]) Observable[T] {
	return ObservableFunc[T](func(ctx context.Context, o Observer[T]) Subscription {
		return src.Subscribe(ctx, &tapNode[T]{
			out:  sink[T]{o: o},
			side: side,
		})
	})
}

type tapNode[T any] struct {
	out  sink[T]
	side ObserverFuncs[T]
}

func (n *tapNode[T]) OnNext(v T) {
	if n.out.done {
		return
	}
	n.side.OnNext(v)
	n.out.next(v)
}

func (n *tapNode[T]) OnError(err error) {
	if n.out.done {
		return
	}
	n.side.OnError(err)
	n.out.error(err)
}

func (n *tapNode[T]) OnCompleted() {
	if n.out.done {
		return
	}
	n.side.OnCompleted()
	n.out.completed()
}

// Log returns an Observable that logs every notification of src to log
// at debug level, tagged with name, and otherwise forwards it unchanged.
func Log[T any](log *slog.Logger, name string, src Observable[T]) Observable[T] {
	log = log.With("stream", name)
	return Tap(src, ObserverFuncs[T]{
		Next: func(v T) {
			log.Debug("Next", "value", v)
		},
		Error: func(err error) {
			log.Debug("Error", "err", err)
		},
		Completed: func() {
			log.Debug("Completed")
		},
	})
}
