package drxtest

import (
	"context"
	"testing"

	"github.com/gordian-engine/drx"
	"github.com/stretchr/testify/require"
)

// ObservableFactory returns a fresh Observable under test,
// along with the exact items it must produce before completing.
//
// The Observable must be cold, finite and synchronous:
// it completes inside Subscribe.
type ObservableFactory[T any] func() (obs drx.Observable[T], want []T)

// RequireValid fails t if r recorded any breach of the notification contract.
func RequireValid[T any](t testing.TB, r *Recorder[T]) {
	t.Helper()
	require.Empty(t, r.Violations(), "notification contract violated")
}

// TestObservableCompliance runs a suite of protocol checks against
// Observables produced by f.
func TestObservableCompliance[T any](t *testing.T, f ObservableFactory[T]) {
	t.Run("produces items then completes once", func(t *testing.T) {
		t.Parallel()

		obs, want := f()
		r := NewRecorder[T]()
		obs.Subscribe(context.Background(), r)

		RequireValid(t, r)
		require.True(t, r.Completed())
		require.Equal(t, len(want)+1, len(r.Notifications()))
		if len(want) == 0 {
			require.Empty(t, r.Values())
		} else {
			require.Equal(t, want, r.Values())
		}
	})

	t.Run("each subscription is an independent run", func(t *testing.T) {
		t.Parallel()

		obs, _ := f()
		r1 := NewRecorder[T]()
		r2 := NewRecorder[T]()
		obs.Subscribe(context.Background(), r1)
		obs.Subscribe(context.Background(), r2)

		RequireValid(t, r1)
		RequireValid(t, r2)
		require.Equal(t, r1.Notifications(), r2.Notifications())
	})

	t.Run("unsubscribe is idempotent", func(t *testing.T) {
		t.Parallel()

		obs, _ := f()
		r := NewRecorder[T]()
		sub := obs.Subscribe(context.Background(), r)

		require.NotPanics(t, func() {
			sub.Unsubscribe()
			sub.Unsubscribe()
		})
		RequireValid(t, r)
	})

	t.Run("cancelled context produces nothing", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		obs, _ := f()
		r := NewRecorder[T]()
		obs.Subscribe(ctx, r)

		require.Empty(t, r.Notifications())
	})

	t.Run("take one stops after the first item", func(t *testing.T) {
		t.Parallel()

		obs, want := f()
		r := NewRecorder[T]()
		drx.Take(obs, 1).Subscribe(context.Background(), r)

		RequireValid(t, r)
		require.True(t, r.Completed())
		if len(want) == 0 {
			require.Empty(t, r.Values())
		} else {
			require.Equal(t, want[:1], r.Values())
		}
	})

	t.Run("unsubscribing from a handler stops delivery", func(t *testing.T) {
		t.Parallel()

		obs, want := f()
		if len(want) < 2 {
			t.Skip("needs at least two items")
		}

		// Cancelling the subscription context is the only handle
		// a handler has while a synchronous source is still inside Subscribe.
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		r := NewRecorder[T]()
		obs.Subscribe(ctx, drx.ObserverFuncs[T]{
			Next: func(v T) {
				r.OnNext(v)
				cancel()
			},
			Error:     r.OnError,
			Completed: r.OnCompleted,
		})

		RequireValid(t, r)
		require.Equal(t, want[:1], r.Values())
		require.False(t, r.Terminated())
	})
}
