package drx

import (
	"context"
	"iter"
)

// Of returns an Observable that produces items in order, then completes.
// Production happens entirely inside Subscribe,
// so the returned subscription is inert.
func Of[T any](items ...T) Observable[T] {
	return FromSlice(items)
}

// FromSlice is like [Of] but takes the slice directly.
// The slice is read at subscription time, not copied.
func FromSlice[T any](items []T) Observable[T] {
	return generateLoop(func(e *emitter[T]) {
		for _, v := range items {
			if e.stopped() {
				return
			}
			e.OnNext(v)
		}
		e.OnCompleted()
	})
}

// FromSeq returns an Observable that ranges over seq inside Subscribe.
// seq may be unbounded; iteration stops once the subscription is cancelled,
// which is what a downstream [Take] does.
func FromSeq[T any](seq iter.Seq[T]) Observable[T] {
	return generateLoop(func(e *emitter[T]) {
		for v := range seq {
			// Checking after delivery rather than before
			// means a cancelled subscription never pulls one value too many.
			e.OnNext(v)
			if e.stopped() {
				return
			}
		}
		e.OnCompleted()
	})
}

// FromResult returns an Observable for a single fallible result.
// If err is nil, it produces v and completes;
// otherwise it fails with err and produces nothing.
func FromResult[T any](v T, err error) Observable[T] {
	return generateLoop(func(e *emitter[T]) {
		if err != nil {
			e.OnError(err)
			return
		}
		e.OnNext(v)
		e.OnCompleted()
	})
}

// Empty returns an Observable that completes immediately.
func Empty[T any]() Observable[T] {
	return generateLoop(func(e *emitter[T]) {
		e.OnCompleted()
	})
}

// Throw returns an Observable that fails immediately with err.
func Throw[T any](err error) Observable[T] {
	return generateLoop(func(e *emitter[T]) {
		e.OnError(err)
	})
}

// Never returns an Observable that never delivers anything.
func Never[T any]() Observable[T] {
	return ObservableFunc[T](func(context.Context, Observer[T]) Subscription {
		return Inert()
	})
}

// FromChannel returns an Observable that receives from ch inside Subscribe
// until ch is closed, at which point it completes.
//
// Subscribe blocks while waiting on ch;
// pair it with [SubscribeOn] to receive elsewhere.
// All subscriptions share ch, so concurrent subscribers split its values.
func FromChannel[T any](ch <-chan T) Observable[T] {
	return ObservableFunc[T](func(ctx context.Context, o Observer[T]) Subscription {
		s := sink[T]{o: o}
		for ctx.Err() == nil {
			select {
			case <-ctx.Done():
				return Inert()
			case v, ok := <-ch:
				if !ok {
					s.completed()
					return Inert()
				}
				s.next(v)
			}
		}
		return Inert()
	})
}
