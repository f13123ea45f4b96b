// Package dquic adapts QUIC connections and streams from quic-go
// into drx Observables.
//
// [Datagrams] turns the unreliable datagrams arriving on a connection
// into a stream of payloads,
// and [Chunks] turns a receive stream into a stream of byte chunks.
//
// Both block inside Subscribe while waiting on the network,
// so they are normally subscribed through [drx.SubscribeOn].
package dquic
