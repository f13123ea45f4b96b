package drx

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// Producer is a user-supplied production routine.
//
// It pushes notifications into out and decides on its own
// when to complete or fail.
// It should return promptly once ctx is done;
// anything it pushes after that is discarded.
// Calls into out must not overlap.
type Producer[T any] func(ctx context.Context, out Observer[T])

// Generate returns a cold Observable that runs p once per subscription,
// inside the call to Subscribe.
// p is not invoked before something subscribes.
//
// The observer handed to p enforces the notification contract:
// pushes after a terminal notification, or after the subscription is released,
// are dropped.
// The context handed to p is cancelled as soon as p delivers
// a terminal notification, or the subscription is released.
//
// The only setup failure is a nil p, reported as a [*GenerateError]
// wrapping [ErrNilProducer].
func Generate[T any](p Producer[T]) (Observable[T], error) {
	if p == nil {
		return nil, &GenerateError{
			Generator: "Generate",
			Reason:    "producer must be set",
			Err:       ErrNilProducer,
		}
	}

	return ObservableFunc[T](func(ctx context.Context, o Observer[T]) Subscription {
		ctx, cancel := context.WithCancel(ctx)
		p(ctx, &emitter[T]{ctx: ctx, s: sink[T]{o: o}, cancel: cancel})

		// p may have handed out to work that outlives this call,
		// so the subscription still has something to cancel.
		return NewSubscription(cancel)
	}), nil
}

// Must panics if err is not nil, otherwise it returns obs.
// It is intended for generators built from constant configuration.
func Must[T any](obs Observable[T], err error) Observable[T] {
	if err != nil {
		panic(err)
	}
	return obs
}

type emitter[T any] struct {
	ctx context.Context
	s   sink[T]

	// Set by Generate only; cancels ctx after the terminal notification.
	cancel context.CancelFunc
}

func (e *emitter[T]) OnNext(v T) {
	if e.ctx.Err() != nil {
		return
	}
	e.s.next(v)
}

func (e *emitter[T]) OnError(err error) {
	if e.ctx.Err() != nil {
		return
	}
	e.s.error(err)
	e.release()
}

func (e *emitter[T]) OnCompleted() {
	if e.ctx.Err() != nil {
		return
	}
	e.s.completed()
	e.release()
}

func (e *emitter[T]) release() {
	if e.cancel != nil {
		e.cancel()
	}
}

// stopped reports whether the producer loop should end.
func (e *emitter[T]) stopped() bool {
	return e.s.done || e.ctx.Err() != nil
}

// Range returns an Observable producing count consecutive integers
// starting at start, then completing.
func Range(start, count int) (Observable[int], error) {
	if count < 0 {
		return nil, &GenerateError{
			Generator: "Range",
			Reason:    fmt.Sprintf("count must not be negative (got %d)", count),
		}
	}
	if count > 0 && start > math.MaxInt-(count-1) {
		return nil, &GenerateError{
			Generator: "Range",
			Reason:    fmt.Sprintf("range of %d values starting at %d overflows int", count, start),
		}
	}

	return generateLoop(func(e *emitter[int]) {
		for i := range count {
			if e.stopped() {
				return
			}
			e.OnNext(start + i)
		}
		e.OnCompleted()
	}), nil
}

// Repeat returns an Observable producing v count times, then completing.
func Repeat[T any](v T, count int) (Observable[T], error) {
	if count < 0 {
		return nil, &GenerateError{
			Generator: "Repeat",
			Reason:    fmt.Sprintf("count must not be negative (got %d)", count),
		}
	}

	return generateLoop(func(e *emitter[T]) {
		for range count {
			if e.stopped() {
				return
			}
			e.OnNext(v)
		}
		e.OnCompleted()
	}), nil
}

// Iterate returns an unbounded Observable producing
// seed, step(seed), step(step(seed)), and so on.
// It never completes; use an operator such as [Take] to bound it.
func Iterate[T any](seed T, step func(T) T) (Observable[T], error) {
	if step == nil {
		return nil, &GenerateError{
			Generator: "Iterate",
			Reason:    "step function must be set",
			Err:       ErrNilProducer,
		}
	}

	return generateLoop(func(e *emitter[T]) {
		for v := seed; !e.stopped(); v = step(v) {
			e.OnNext(v)
		}
	}), nil
}

// Unfold returns an Observable driven by a state machine:
// starting from initial, while cond(state) holds it produces result(state)
// and advances to step(state).
// It completes the first time cond reports false.
func Unfold[S, T any](
	initial S,
	cond func(S) bool,
	step func(S) S,
	result func(S) T,
) (Observable[T], error) {
	var missing []string
	if cond == nil {
		missing = append(missing, "cond")
	}
	if step == nil {
		missing = append(missing, "step")
	}
	if result == nil {
		missing = append(missing, "result")
	}
	if len(missing) > 0 {
		return nil, &GenerateError{
			Generator: "Unfold",
			Reason:    "missing " + strings.Join(missing, ", "),
			Err:       ErrNilProducer,
		}
	}

	return generateLoop(func(e *emitter[T]) {
		for s := initial; cond(s); s = step(s) {
			if e.stopped() {
				return
			}
			e.OnNext(result(s))
		}
		e.OnCompleted()
	}), nil
}

// generateLoop is Generate for the built-in generators,
// whose loops consult the emitter directly.
func generateLoop[T any](loop func(*emitter[T])) Observable[T] {
	return ObservableFunc[T](func(ctx context.Context, o Observer[T]) Subscription {
		e := &emitter[T]{ctx: ctx, s: sink[T]{o: o}}
		loop(e)
		return Inert()
	})
}
