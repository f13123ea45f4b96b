// Package drx contains the event-propagation core of a push-based
// reactive stream library.
//
// An [Observable] produces a sequence of notifications for an [Observer]:
// zero or more calls to OnNext, optionally followed by exactly one
// terminal call, either OnError or OnCompleted.
// Nothing is ever delivered after a terminal call.
// Every operator, source and [Subject] in this package preserves that invariant,
// and the [github.com/gordian-engine/drx/drxtest] package
// checks it against arbitrary chains.
//
// Subscribing returns a [Subscription].
// Releasing it, or cancelling the context passed to Subscribe,
// stops delivery without producing any further notification.
//
// # Scheduling
//
// The core never starts goroutines or timers.
// Subscribe, OnNext, OnError and OnCompleted are plain synchronous calls,
// and a notification travels down an operator chain by ordinary recursion,
// so a chain of N operators costs roughly N stack frames per delivery.
// [SubscribeOn] only moves where Subscribe runs;
// it does not change that per-delivery depth.
// Items pushed back into a [Subject] from inside a handler
// nest a further delivery on the same stack.
// Sources that must block, such as those in the dfs, dquic and dcron packages,
// block inside Subscribe unless the caller moves them with [SubscribeOn].
//
// # Hot and cold
//
// All sources and generators in this package are cold:
// each subscription runs an independent production.
// A [Subject] is hot: every subscriber observes the same,
// already-in-progress sequence.
// Operators are as hot or cold as their upstream.
package drx
