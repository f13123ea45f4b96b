package drx

import (
	"context"
	"sync"

	"github.com/bits-and-blooms/bitset"
)

// Merge returns an Observable that subscribes to every source
// and produces the items of all of them.
//
// Items from one source keep their relative order;
// there is no ordering guarantee across sources.
// Sources that produce synchronously inside Subscribe
// are drained one after another, in argument order.
// Deliveries from sources running on different goroutines are serialized
// before they reach the downstream observer.
//
// The merged stream completes once every source has completed.
// The first error from any source fails the merged stream immediately,
// and the remaining sources are released.
// Merge of zero sources completes immediately.
func Merge[T any](sources ...Observable[T]) Observable[T] {
	return ObservableFunc[T](func(ctx context.Context, o Observer[T]) Subscription {
		if len(sources) == 0 {
			if ctx.Err() == nil {
				o.OnCompleted()
			}
			return Inert()
		}

		ctx, cancel := context.WithCancel(ctx)
		m := &mergeState[T]{
			out:       Serialize(o),
			completed: bitset.MustNew(uint(len(sources))),
			cancel:    cancel,
		}

		for i, src := range sources {
			if ctx.Err() != nil {
				// An earlier source already failed,
				// or the downstream released us mid-subscribe.
				break
			}
			m.upstreams.Add(src.Subscribe(ctx, &mergeInput[T]{m: m, idx: uint(i)}))
		}

		return NewSubscription(m.stop)
	})
}

type mergeState[T any] struct {
	out Observer[T]

	mu        sync.Mutex
	completed *bitset.BitSet
	done      bool

	cancel    context.CancelFunc
	upstreams Composite
}

func (m *mergeState[T]) stop() {
	m.cancel()
	m.upstreams.Unsubscribe()
}

// mergeInput is the observer handed to one source of a Merge.
type mergeInput[T any] struct {
	m   *mergeState[T]
	idx uint
}

func (in *mergeInput[T]) OnNext(v T) {
	m := in.m
	m.mu.Lock()
	drop := m.done || m.completed.Test(in.idx)
	m.mu.Unlock()
	if drop {
		return
	}
	m.out.OnNext(v)
}

func (in *mergeInput[T]) OnError(err error) {
	m := in.m
	m.mu.Lock()
	if m.done || m.completed.Test(in.idx) {
		m.mu.Unlock()
		return
	}
	m.done = true
	m.mu.Unlock()

	m.stop()
	m.out.OnError(err)
}

func (in *mergeInput[T]) OnCompleted() {
	m := in.m
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return
	}
	// Setting an already set bit is harmless,
	// so a source completing twice is counted once.
	m.completed.Set(in.idx)
	all := m.completed.All()
	if all {
		m.done = true
	}
	m.mu.Unlock()

	if all {
		m.out.OnCompleted()
		m.stop()
	}
}
