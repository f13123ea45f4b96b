package dquic

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gordian-engine/drx"
	"github.com/quic-go/quic-go"
)

// DatagramReceiver is the subset of [quic.Connection]
// needed by [Datagrams].
type DatagramReceiver interface {
	ReceiveDatagram(context.Context) ([]byte, error)
}

var _ DatagramReceiver = quic.Connection(nil)

// DatagramsConfig is the configuration for [Datagrams].
type DatagramsConfig struct {
	// Connection to receive datagrams from.
	// Datagram support must have been negotiated
	// through [quic.Config.EnableDatagrams].
	Conn DatagramReceiver

	// Optional; defaults to discarding all output.
	Log *slog.Logger
}

// Datagrams returns an Observable producing the payload
// of every datagram received on cfg.Conn.
//
// Closing the connection with application error code zero
// completes the stream.
// Any other connection error is delivered through OnError.
// Cancelling the subscription stops receiving without a terminal notification.
//
// Every subscription calls ReceiveDatagram on the same connection,
// so concurrent subscribers split the datagrams between them.
// Share a single subscription through a [*drx.Subject] to fan them out.
func Datagrams(cfg DatagramsConfig) (drx.Observable[[]byte], error) {
	if cfg.Conn == nil {
		return nil, &drx.GenerateError{
			Generator: "dquic.Datagrams",
			Reason:    "Conn must be set",
		}
	}

	log := cfg.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	conn := cfg.Conn

	return drx.Generate(func(ctx context.Context, out drx.Observer[[]byte]) {
		for {
			d, err := conn.ReceiveDatagram(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if IsGracefulClose(err) {
					log.Debug("Connection closed; completing datagram stream")
					out.OnCompleted()
					return
				}
				log.Debug("Failed to receive datagram", "err", err)
				out.OnError(err)
				return
			}

			out.OnNext(d)
		}
	})
}

// IsGracefulClose reports whether err indicates
// that a connection was closed on purpose with application error code zero,
// by either side.
func IsGracefulClose(err error) bool {
	var appErr *quic.ApplicationError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.ErrorCode == 0
}
