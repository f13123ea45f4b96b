package dquic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gordian-engine/drx"
	"github.com/quic-go/quic-go"
)

// ReceiveStream is the subset of [quic.ReceiveStream]
// needed by [Chunks].
type ReceiveStream interface {
	Read([]byte) (int, error)
	CancelRead(quic.StreamErrorCode)
}

var _ ReceiveStream = quic.ReceiveStream(nil)

// ChunksConfig is the configuration for [Chunks].
type ChunksConfig struct {
	// Stream to read from.
	Stream ReceiveStream

	// Maximum size of a single produced chunk.
	// Reads may return less.
	ChunkSize int

	// Error code sent to the peer
	// when the subscription is cancelled before the stream ends.
	// Must fit in 62 bits.
	CancelCode quic.StreamErrorCode

	// Optional; defaults to discarding all output.
	Log *slog.Logger
}

func (c ChunksConfig) validate() error {
	var err error

	if c.Stream == nil {
		err = errors.Join(err, errors.New("Stream must be set"))
	}
	if c.ChunkSize <= 0 {
		err = errors.Join(err, fmt.Errorf(
			"ChunkSize must be positive (got %d)", c.ChunkSize,
		))
	}
	if (c.CancelCode >> 62) > 0 {
		err = errors.Join(err, fmt.Errorf(
			"CancelCode must fit in 62 bits (got 0x%x)", c.CancelCode,
		))
	}

	return err
}

// Chunks returns an Observable producing the bytes read from cfg.Stream,
// in chunks of at most cfg.ChunkSize bytes.
// Each chunk is a fresh slice that the observer may retain.
//
// The stream completes when the peer finishes its side of the stream,
// and fails with the read error otherwise.
// Cancelling the subscription cancels the read side of the QUIC stream
// with cfg.CancelCode, which also unblocks a pending read.
//
// A QUIC stream can only be read once,
// so the returned Observable should be subscribed only once.
func Chunks(cfg ChunksConfig) (drx.Observable[[]byte], error) {
	if err := cfg.validate(); err != nil {
		return nil, &drx.GenerateError{
			Generator: "dquic.Chunks",
			Reason:    "invalid configuration",
			Err:       err,
		}
	}

	log := cfg.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return drx.Generate(func(ctx context.Context, out drx.Observer[[]byte]) {
		s := cfg.Stream
		stop := context.AfterFunc(ctx, func() {
			s.CancelRead(cfg.CancelCode)
		})
		defer stop()

		buf := make([]byte, cfg.ChunkSize)
		for {
			n, err := s.Read(buf)
			if n > 0 {
				out.OnNext(append([]byte(nil), buf[:n]...))
			}

			if err == nil {
				continue
			}

			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, io.EOF) {
				out.OnCompleted()
				return
			}

			log.Debug("Failed to read from stream", "err", err)
			out.OnError(err)
			return
		}
	})
}
