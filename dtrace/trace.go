package dtrace

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/gordian-engine/drx"
	otelattr "go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Config is the configuration for [Trace].
type Config struct {
	// Optional; defaults to [NopTracerProvider].
	TracerProvider TracerProvider

	// Name of the span started for every subscription.
	SpanName string

	// Extra attributes set on every span.
	Attrs []KeyValueAttr
}

// Span attribute keys set by [Trace].
const (
	ItemsAttrKey   = "drx.items"
	OutcomeAttrKey = "drx.outcome"
)

// Outcome values for [OutcomeAttrKey].
const (
	OutcomeCompleted    = "completed"
	OutcomeError        = "error"
	OutcomeUnsubscribed = "unsubscribed"
)

// Trace returns an Observable that starts a span
// each time it is subscribed to, and ends it when the subscription ends.
//
// The span is a child of any span in the subscribing context,
// and src is subscribed with the span's context,
// so traced stages of a pipeline nest inside each other.
// The span records how many items passed through
// and whether the stream completed, failed, or was unsubscribed first.
// Cancelling the subscribing context counts as unsubscribing.
func Trace[T any](src drx.Observable[T], cfg Config) drx.Observable[T] {
	tp := cfg.TracerProvider
	if tp == nil {
		tp = NopTracerProvider()
	}
	tracer := tp.Tracer("github.com/gordian-engine/drx/dtrace")

	name := cfg.SpanName
	if name == "" {
		name = "drx.Observable"
	}
	attrs := append([]KeyValueAttr(nil), cfg.Attrs...)

	return drx.ObservableFunc[T](func(ctx context.Context, o drx.Observer[T]) drx.Subscription {
		ctx, span := tracer.Start(ctx, name, oteltrace.WithAttributes(attrs...))
		n := &traceNode[T]{
			out:  o,
			span: span,
		}
		n.stopWatch = context.AfterFunc(ctx, func() {
			n.end(OutcomeUnsubscribed)
		})
		up := src.Subscribe(ctx, n)
		return drx.NewSubscription(func() {
			n.finish(OutcomeUnsubscribed)
			up.Unsubscribe()
		})
	})
}

type traceNode[T any] struct {
	out  drx.Observer[T]
	span oteltrace.Span

	// Notifications are serialized, so done needs no lock.
	done bool

	items   atomic.Int64
	endOnce sync.Once

	// Stops the context watch once the span ended some other way.
	stopWatch func() bool
}

func (n *traceNode[T]) finish(outcome string) {
	n.end(outcome)
	n.stopWatch()
}

func (n *traceNode[T]) end(outcome string) {
	n.endOnce.Do(func() {
		n.span.SetAttributes(
			otelattr.Int64(ItemsAttrKey, n.items.Load()),
			otelattr.String(OutcomeAttrKey, outcome),
		)
		n.span.End()
	})
}

func (n *traceNode[T]) OnNext(v T) {
	if n.done {
		return
	}
	n.items.Add(1)
	n.out.OnNext(v)
}

func (n *traceNode[T]) OnError(err error) {
	if n.done {
		return
	}
	n.done = true
	SpanError(n.span, err)
	n.span.AddEvent("error", oteltrace.WithAttributes(ErrorAttr(err)))
	n.finish(OutcomeError)
	n.out.OnError(err)
}

func (n *traceNode[T]) OnCompleted() {
	if n.done {
		return
	}
	n.done = true
	n.span.SetStatus(otelcodes.Ok, "")
	n.finish(OutcomeCompleted)
	n.out.OnCompleted()
}
