package dtest

import (
	"io"
	"log/slog"
	"testing"

	"github.com/neilotoole/slogt"
)

// NewLogger returns a debug-level logger that writes through t.Log,
// so output is attributed to the test and only shown on failure or with -v.
func NewLogger(t testing.TB) *slog.Logger {
	t.Helper()

	return slogt.New(t, slogt.Factory(func(w io.Writer) slog.Handler {
		return slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}))
}
