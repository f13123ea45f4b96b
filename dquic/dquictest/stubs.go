// Package dquictest contains in-memory stand-ins
// for the QUIC connection and stream interfaces used by dquic.
package dquictest

import (
	"context"
	"io"
	"sync"

	"github.com/gordian-engine/drx/dquic"
	"github.com/quic-go/quic-go"
)

// DatagramConn is an in-memory [dquic.DatagramReceiver].
//
// Each [*DatagramConn.Push] blocks until a ReceiveDatagram call takes it,
// so every datagram pushed before [*DatagramConn.Close]
// is observed before the close.
type DatagramConn struct {
	ch chan []byte

	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error
}

var _ dquic.DatagramReceiver = (*DatagramConn)(nil)

func NewDatagramConn() *DatagramConn {
	return &DatagramConn{
		ch:     make(chan []byte),
		closed: make(chan struct{}),
	}
}

// Push hands d to the next ReceiveDatagram call.
// It returns false if ctx is cancelled or the connection is closed first.
func (c *DatagramConn) Push(ctx context.Context, d []byte) bool {
	select {
	case <-ctx.Done():
		return false
	case <-c.closed:
		return false
	case c.ch <- d:
		return true
	}
}

// Close makes every later ReceiveDatagram call
// fail with a local [*quic.ApplicationError] carrying code and msg.
func (c *DatagramConn) Close(code quic.ApplicationErrorCode, msg string) {
	c.closeOnce.Do(func() {
		c.closeErr = &quic.ApplicationError{
			ErrorCode:    code,
			ErrorMessage: msg,
		}
		close(c.closed)
	})
}

// ReceiveDatagram implements [dquic.DatagramReceiver].
func (c *DatagramConn) ReceiveDatagram(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	case <-c.closed:
		return nil, c.closeErr
	case d := <-c.ch:
		return d, nil
	}
}

// PipeStream is a [dquic.ReceiveStream] backed by an [io.Pipe].
// Writes to W become readable from the stream;
// closing W finishes the stream.
type PipeStream struct {
	r *io.PipeReader
	W *io.PipeWriter

	mu         sync.Mutex
	canceled   bool
	cancelCode quic.StreamErrorCode
}

var _ dquic.ReceiveStream = (*PipeStream)(nil)

func NewPipeStream() *PipeStream {
	r, w := io.Pipe()
	return &PipeStream{r: r, W: w}
}

func (s *PipeStream) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

// CancelRead records code and fails pending and later reads
// with a local [*quic.StreamError].
func (s *PipeStream) CancelRead(code quic.StreamErrorCode) {
	s.mu.Lock()
	if s.canceled {
		s.mu.Unlock()
		return
	}
	s.canceled = true
	s.cancelCode = code
	s.mu.Unlock()

	s.r.CloseWithError(&quic.StreamError{ErrorCode: code})
}

// Canceled reports whether CancelRead was called, and with which code.
func (s *PipeStream) Canceled() (bool, quic.StreamErrorCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canceled, s.cancelCode
}
