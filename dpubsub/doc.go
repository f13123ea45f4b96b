// Package dpubsub contains types for in-application
// publish-subscribe patterns.
//
// The [Stream] type simplifies the pattern of
// a single publisher with many concurrent readers,
// who all need to observe the same sequence of values
// but each consume it at their own pace.
//
// [Observe] and [Replay] bridge between a Stream of notifications
// and the push-based drx protocol:
// Observe records a drx.Observable into a Stream,
// and Replay turns such a Stream back into a drx.Observable.
package dpubsub
