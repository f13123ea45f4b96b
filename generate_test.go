package drx_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/gordian-engine/drx"
	"github.com/gordian-engine/drx/drxtest"
	"github.com/stretchr/testify/require"
)

func TestGenerate_lazyAndCold(t *testing.T) {
	t.Parallel()

	runs := 0
	obs, err := drx.Generate(func(_ context.Context, out drx.Observer[int]) {
		runs++
		out.OnNext(runs)
		out.OnCompleted()
	})
	require.NoError(t, err)
	require.Zero(t, runs)

	got1, err := drx.Collect(context.Background(), obs)
	require.NoError(t, err)
	got2, err := drx.Collect(context.Background(), obs)
	require.NoError(t, err)

	require.Equal(t, []int{1}, got1)
	require.Equal(t, []int{2}, got2)
}

func TestGenerate_enforcesContract(t *testing.T) {
	t.Parallel()

	obs, err := drx.Generate(func(_ context.Context, out drx.Observer[int]) {
		out.OnNext(1)
		out.OnError(errors.New("first"))
		out.OnNext(2)
		out.OnCompleted()
	})
	require.NoError(t, err)

	r := drxtest.NewRecorder[int]()
	obs.Subscribe(context.Background(), r)

	drxtest.RequireValid(t, r)
	require.Equal(t, []int{1}, r.Values())
	require.EqualError(t, r.Err(), "first")
}

func TestGenerate_unsubscribeSilencesLaterPushes(t *testing.T) {
	t.Parallel()

	var out drx.Observer[int]
	obs, err := drx.Generate(func(_ context.Context, o drx.Observer[int]) {
		// Keep the push capability beyond Subscribe,
		// as an asynchronous producer would.
		out = o
	})
	require.NoError(t, err)

	r := drxtest.NewRecorder[int]()
	sub := obs.Subscribe(context.Background(), r)

	out.OnNext(1)
	sub.Unsubscribe()
	out.OnNext(2)
	out.OnCompleted()

	require.Equal(t, []int{1}, r.Values())
	require.False(t, r.Terminated())
}

func TestGenerate_terminalCancelsContext(t *testing.T) {
	t.Parallel()

	for name, terminate := range map[string]func(drx.Observer[int]){
		"completed": func(o drx.Observer[int]) { o.OnCompleted() },
		"error":     func(o drx.Observer[int]) { o.OnError(errors.New("boom")) },
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var pctx context.Context
			obs, err := drx.Generate(func(ctx context.Context, out drx.Observer[int]) {
				pctx = ctx
				out.OnNext(1)
				require.NoError(t, ctx.Err())
				terminate(out)
			})
			require.NoError(t, err)

			// Nobody unsubscribes; termination alone releases the context.
			r := drxtest.NewRecorder[int]()
			obs.Subscribe(context.Background(), r)

			require.True(t, r.Terminated())
			require.ErrorIs(t, pctx.Err(), context.Canceled)
		})
	}
}

func TestGenerate_nilProducer(t *testing.T) {
	t.Parallel()

	_, err := drx.Generate[int](nil)

	var genErr *drx.GenerateError
	require.ErrorAs(t, err, &genErr)
	require.Equal(t, "Generate", genErr.Generator)
	require.ErrorIs(t, err, drx.ErrNilProducer)
}

func TestRange(t *testing.T) {
	t.Parallel()

	t.Run("produces consecutive values", func(t *testing.T) {
		t.Parallel()

		got, err := drx.Collect(context.Background(), drx.Must(drx.Range(5, 3)))
		require.NoError(t, err)
		require.Equal(t, []int{5, 6, 7}, got)
	})

	t.Run("zero count completes empty", func(t *testing.T) {
		t.Parallel()

		got, err := drx.Collect(context.Background(), drx.Must(drx.Range(5, 0)))
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("negative count", func(t *testing.T) {
		t.Parallel()

		_, err := drx.Range(0, -1)
		var genErr *drx.GenerateError
		require.ErrorAs(t, err, &genErr)
		require.Equal(t, "Range", genErr.Generator)
	})

	t.Run("overflow", func(t *testing.T) {
		t.Parallel()

		_, err := drx.Range(math.MaxInt, 2)
		require.Error(t, err)

		_, err = drx.Range(math.MaxInt, 1)
		require.NoError(t, err)
	})
}

func TestRepeat(t *testing.T) {
	t.Parallel()

	got, err := drx.Collect(context.Background(), drx.Must(drx.Repeat("x", 3)))
	require.NoError(t, err)
	require.Equal(t, []string{"x", "x", "x"}, got)

	_, err = drx.Repeat("x", -2)
	require.Error(t, err)
}

func TestIterate_nilStep(t *testing.T) {
	t.Parallel()

	_, err := drx.Iterate[int](0, nil)
	require.ErrorIs(t, err, drx.ErrNilProducer)
}

func TestUnfold(t *testing.T) {
	t.Parallel()

	type fib struct{ a, b int }
	obs := drx.Must(drx.Unfold(
		fib{0, 1},
		func(s fib) bool { return s.a < 50 },
		func(s fib) fib { return fib{s.b, s.a + s.b} },
		func(s fib) int { return s.a },
	))

	got, err := drx.Collect(context.Background(), obs)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 1, 2, 3, 5, 8, 13, 21, 34}, got)

	_, err = drx.Unfold[int, int](0, nil, nil, func(int) int { return 0 })
	var genErr *drx.GenerateError
	require.ErrorAs(t, err, &genErr)
	require.Equal(t, "missing cond, step", genErr.Reason)
}

func TestMust_panics(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		drx.Must(drx.Range(0, -1))
	})
}
