package dpubsub

import (
	"context"

	"github.com/gordian-engine/drx"
)

// Observe subscribes to src and publishes each notification it delivers
// to the returned Stream, terminal notification included.
//
// The returned head is available immediately,
// so readers may start waiting on it before anything is published.
// If src produces synchronously, the whole sequence is already published
// by the time Observe returns.
//
// Releasing the returned subscription stops publishing;
// readers then wait on the unpublished tail until their own contexts end.
func Observe[T any](ctx context.Context, src drx.Observable[T]) (
	head *Stream[drx.Notification[T]], sub drx.Subscription,
) {
	head = NewStream[drx.Notification[T]]()
	p := &publisher[T]{tail: head}

	// Publishing is single-writer; Serialize keeps it that way
	// even if src delivers from several goroutines.
	sub = src.Subscribe(ctx, drx.Serialize[T](p))
	return head, sub
}

type publisher[T any] struct {
	tail *Stream[drx.Notification[T]]
}

func (p *publisher[T]) publish(n drx.Notification[T]) {
	p.tail = p.tail.Publish(n)
}

func (p *publisher[T]) OnNext(v T)        { p.publish(drx.Next(v)) }
func (p *publisher[T]) OnError(err error) { p.publish(drx.Error[T](err)) }
func (p *publisher[T]) OnCompleted()      { p.publish(drx.Completed[T]()) }

// Replay returns a drx.Observable that reads notifications from s onwards
// and delivers them to each subscriber, stopping after the first terminal one.
//
// Every subscription reads independently from s,
// so late subscribers still see the full sequence from s.
// Subscribe blocks while waiting for unpublished nodes;
// use [drx.SubscribeOn] to read elsewhere.
func Replay[T any](s *Stream[drx.Notification[T]]) drx.Observable[T] {
	return drx.ObservableFunc[T](func(ctx context.Context, o drx.Observer[T]) drx.Subscription {
		for cur := s; cur.Wait(ctx); cur = cur.Next {
			if ctx.Err() != nil {
				break
			}
			cur.Val.Accept(o)
			if cur.Val.IsTerminal() {
				break
			}
		}
		return drx.Inert()
	})
}
