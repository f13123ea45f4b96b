package dpubsub_test

import (
	"context"
	"slices"
	"testing"

	"github.com/gordian-engine/drx/dpubsub"
	"github.com/gordian-engine/drx/internal/dtest"
	"github.com/stretchr/testify/require"
)

func TestStream_Publish(t *testing.T) {
	t.Parallel()

	s := dpubsub.NewStream[int]()
	dtest.NotSending(t, s.Ready)
	require.False(t, s.Published())

	next := s.Publish(1)
	dtest.IsSending(t, s.Ready)
	require.True(t, s.Published())
	require.Equal(t, 1, s.Val)
	require.Same(t, s.Next, next)
	require.False(t, next.Published())
}

func TestStream_Publish_panicsOnCalledTwice(t *testing.T) {
	t.Parallel()

	s := dpubsub.NewStream[int]()
	s.Publish(1)

	require.Panics(t, func() {
		s.Publish(1)
	})
	require.Equal(t, 1, s.Val)
}

func TestStream_Wait(t *testing.T) {
	t.Parallel()

	s := dpubsub.NewStream[int]()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.False(t, s.Wait(ctx))

	s.Publish(3)
	require.True(t, s.Wait(context.Background()))

	// A published node is readable even with a cancelled context.
	require.True(t, s.Wait(ctx))
}

func TestStream_All(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	head := dpubsub.NewStream[string]()
	got := make(chan []string, 1)
	go func() {
		got <- slices.Collect(head.All(ctx))
	}()

	tail := head.Publish("a")
	tail = tail.Publish("b")
	dtest.NotSending(t, got)

	cancel()
	require.Equal(t, []string{"a", "b"}, dtest.ReceiveSoon(t, got))

	// Unpublished tail.
	require.False(t, tail.Published())
}

func TestStream_All_stopsEarly(t *testing.T) {
	t.Parallel()

	head := dpubsub.NewStream[int]()
	tail := head
	for i := range 5 {
		tail = tail.Publish(i)
	}

	var got []int
	for v := range head.All(context.Background()) {
		got = append(got, v)
		if v == 2 {
			break
		}
	}
	require.Equal(t, []int{0, 1, 2}, got)
}
