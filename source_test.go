package drx_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/gordian-engine/drx"
	"github.com/gordian-engine/drx/drxtest"
	"github.com/gordian-engine/drx/internal/dtest"
	"github.com/stretchr/testify/require"
)

func TestFromResult(t *testing.T) {
	t.Parallel()

	t.Run("ok value", func(t *testing.T) {
		t.Parallel()

		r := drxtest.NewRecorder[string]()
		sub := drx.FromResult("v", nil).Subscribe(context.Background(), r)

		require.Equal(t, []drx.Notification[string]{
			drx.Next("v"),
			drx.Completed[string](),
		}, r.Notifications())
		require.NotPanics(t, sub.Unsubscribe)
	})

	t.Run("error value", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		r := drxtest.NewRecorder[string]()
		drx.FromResult("ignored", boom).Subscribe(context.Background(), r)

		require.Equal(t, []drx.Notification[string]{drx.Error[string](boom)}, r.Notifications())
	})
}

func TestFromSeq(t *testing.T) {
	t.Parallel()

	got, err := drx.Collect(context.Background(), drx.FromSeq(slices.Values([]string{"a", "b"})))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, got)
}

func TestNever(t *testing.T) {
	t.Parallel()

	r := drxtest.NewRecorder[int]()
	drx.Never[int]().Subscribe(context.Background(), r)
	require.Empty(t, r.Notifications())
}

func TestFromChannel(t *testing.T) {
	t.Parallel()

	ch := make(chan int)
	r := drxtest.NewRecorder[int]()
	sub := drx.SubscribeOn(drx.FromChannel(ch), drx.Goroutine).Subscribe(context.Background(), r)
	defer sub.Unsubscribe()

	dtest.SendSoon(t, ch, 1)
	dtest.SendSoon(t, ch, 2)
	close(ch)

	dtest.ReceiveSoon(t, r.Done())
	require.Equal(t, []int{1, 2}, r.Values())
	require.True(t, r.Completed())
}

func TestFromChannel_unsubscribeStopsReceiving(t *testing.T) {
	t.Parallel()

	ch := make(chan int)
	r := drxtest.NewRecorder[int]()
	sub := drx.SubscribeOn(drx.FromChannel(ch), drx.Goroutine).Subscribe(context.Background(), r)

	dtest.SendSoon(t, ch, 1)
	require.Eventually(t, func() bool {
		return len(r.Values()) == 1
	}, dtest.ScheduleDelay, time.Millisecond)
	sub.Unsubscribe()

	// Nothing is receiving any more, so this send never lands.
	select {
	case ch <- 2:
		t.Fatal("send should have blocked after unsubscribe")
	case <-time.After(20 * time.Millisecond):
	}

	require.Equal(t, []int{1}, r.Values())
	require.False(t, r.Terminated())
}
