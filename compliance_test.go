package drx_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/gordian-engine/drx"
	"github.com/gordian-engine/drx/drxtest"
	"github.com/gordian-engine/drx/internal/dtest"
	"github.com/stretchr/testify/require"
)

func TestCompliance_sources(t *testing.T) {
	t.Parallel()

	cases := map[string]drxtest.ObservableFactory[int]{
		"of": func() (drx.Observable[int], []int) {
			return drx.Of(1, 2, 3), []int{1, 2, 3}
		},
		"empty": func() (drx.Observable[int], []int) {
			return drx.Empty[int](), nil
		},
		"from result": func() (drx.Observable[int], []int) {
			return drx.FromResult(7, nil), []int{7}
		},
		"from seq": func() (drx.Observable[int], []int) {
			return drx.FromSeq(slices.Values([]int{4, 5})), []int{4, 5}
		},
		"range": func() (drx.Observable[int], []int) {
			return drx.Must(drx.Range(10, 4)), []int{10, 11, 12, 13}
		},
		"repeat": func() (drx.Observable[int], []int) {
			return drx.Must(drx.Repeat(9, 3)), []int{9, 9, 9}
		},
		"generate": func() (drx.Observable[int], []int) {
			return drx.Must(drx.Generate(func(ctx context.Context, out drx.Observer[int]) {
				for i := range 3 {
					if ctx.Err() != nil {
						return
					}
					out.OnNext(i)
				}
				out.OnCompleted()
			})), []int{0, 1, 2}
		},
	}

	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			drxtest.TestObservableCompliance(t, f)
		})
	}
}

func TestCompliance_operators(t *testing.T) {
	t.Parallel()

	cases := map[string]drxtest.ObservableFactory[int]{
		"map then filter": func() (drx.Observable[int], []int) {
			return drx.Filter(
				drx.Map(drx.Of(1, 2, 3, 4), func(x int) int { return x * 2 }),
				func(x int) bool { return x > 4 },
			), []int{6, 8}
		},
		"take": func() (drx.Observable[int], []int) {
			return drx.Take(drx.Must(drx.Iterate(0, func(x int) int { return x + 1 })), 3), []int{0, 1, 2}
		},
		"skip": func() (drx.Observable[int], []int) {
			return drx.Skip(drx.Of(1, 2, 3), 1), []int{2, 3}
		},
		"merge": func() (drx.Observable[int], []int) {
			return drx.Merge(drx.Of(1, 2), drx.Of(3)), []int{1, 2, 3}
		},
		"scan": func() (drx.Observable[int], []int) {
			return drx.Scan(drx.Of(1, 2, 3), 0, func(a, x int) int { return a + x }), []int{1, 3, 6}
		},
		"take while": func() (drx.Observable[int], []int) {
			return drx.TakeWhile(drx.Of(1, 2, 9, 3), func(x int) bool { return x < 5 }), []int{1, 2}
		},
	}

	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			drxtest.TestObservableCompliance(t, f)
		})
	}
}

// stage is one randomly chosen link in a generated operator chain.
type stage struct {
	name  string
	apply func(drx.Observable[int]) drx.Observable[int]
}

func randomStage(rng *rand.Rand) stage {
	k := rng.IntN(8)
	n := rng.IntN(5)
	switch k {
	case 0:
		return stage{fmt.Sprintf("map(+%d)", n), func(o drx.Observable[int]) drx.Observable[int] {
			return drx.Map(o, func(x int) int { return x + n })
		}}
	case 1:
		return stage{fmt.Sprintf("filter(%%%d)", n+2), func(o drx.Observable[int]) drx.Observable[int] {
			return drx.Filter(o, func(x int) bool { return x%(n+2) != 0 })
		}}
	case 2:
		return stage{fmt.Sprintf("take(%d)", n), func(o drx.Observable[int]) drx.Observable[int] {
			return drx.Take(o, n)
		}}
	case 3:
		return stage{fmt.Sprintf("skip(%d)", n), func(o drx.Observable[int]) drx.Observable[int] {
			return drx.Skip(o, n)
		}}
	case 4:
		return stage{"merge(self)", func(o drx.Observable[int]) drx.Observable[int] {
			return drx.Merge(o, o)
		}}
	case 5:
		return stage{fmt.Sprintf("maperr(fail>%d)", n*10), func(o drx.Observable[int]) drx.Observable[int] {
			return drx.MapErr(o, func(x int) (int, error) {
				if x > n*10 {
					return 0, errors.New("too large")
				}
				return x, nil
			})
		}}
	case 6:
		return stage{"scan(+)", func(o drx.Observable[int]) drx.Observable[int] {
			return drx.Scan(o, 0, func(a, x int) int { return a + x })
		}}
	default:
		return stage{"merge(throw)", func(o drx.Observable[int]) drx.Observable[int] {
			return drx.Merge(o, drx.Throw[int](errors.New("thrown")))
		}}
	}
}

// source is the head of a generated chain.
// A hot source is backed by subj, which the test drives after subscribing.
type source struct {
	name   string
	obs    drx.Observable[int]
	subj   *drx.Subject[int]
	pushes int
}

func randomSource(rng *rand.Rand) source {
	switch rng.IntN(6) {
	case 0:
		return source{name: "empty", obs: drx.Empty[int]()}
	case 1:
		n := rng.IntN(20)
		return source{name: fmt.Sprintf("range(%d)", n), obs: drx.Must(drx.Range(0, n))}
	case 2:
		// Unbounded, but capped so a chain that filters everything out
		// still terminates.
		naturals := drx.Must(drx.Iterate(0, func(x int) int { return x + 1 }))
		return source{name: "naturals | take(1000)", obs: drx.Take(naturals, 1000)}
	case 3:
		return source{name: "fail", obs: drx.Throw[int](errors.New("source failed"))}
	default:
		subj := drx.NewSubject[int]()
		n := rng.IntN(30)
		return source{
			name:   fmt.Sprintf("subject(%d)", n),
			obs:    subj,
			subj:   subj,
			pushes: n,
		}
	}
}

// pushBack records like its Recorder,
// and also pushes a bounded number of extra items into subj
// from inside its OnNext.
type pushBack struct {
	*drxtest.Recorder[int]

	subj *drx.Subject[int]
	left int
}

func (p *pushBack) OnNext(v int) {
	p.Recorder.OnNext(v)
	if p.left > 0 {
		p.left--
		p.subj.OnNext(v + 1)
	}
}

func TestProtocol_randomChains(t *testing.T) {
	t.Parallel()

	rng := dtest.RandForTest(t)

	for range 500 {
		src := randomSource(rng)
		name, obs := src.name, src.obs
		for range 1 + rng.IntN(5) {
			st := randomStage(rng)
			name += " | " + st.name
			obs = st.apply(obs)
		}

		// The final take also exercises self-cancellation mid-chain.
		obs = drx.Take(obs, 50)
		name += " | take(50)"

		r := drxtest.NewRecorder[int]()
		var o drx.Observer[int] = r
		cancelAt := -1
		if src.subj != nil {
			if rng.IntN(2) == 0 {
				o = &pushBack{Recorder: r, subj: src.subj, left: 20}
				name += " (pushing back)"
			}
			if rng.IntN(3) == 0 {
				cancelAt = rng.IntN(src.pushes + 1)
				name += fmt.Sprintf(" (cancel after %d)", cancelAt)
			}
		}

		ctx, cancel := context.WithCancel(context.Background())
		obs.Subscribe(ctx, o)

		if src.subj != nil {
			seen := -1
			for i := 0; i <= src.pushes; i++ {
				if i == cancelAt {
					cancel()
					seen = len(r.Notifications())
				}
				if i < src.pushes {
					src.subj.OnNext(i)
				}
			}
			src.subj.OnCompleted()

			if seen >= 0 {
				require.Lenf(t, r.Notifications(), seen, "chain %s delivered after cancel", name)
			}
		}
		cancel()

		require.Emptyf(t, r.Violations(), "chain %s", name)
		require.LessOrEqualf(t, len(r.Values()), 50, "chain %s", name)
		if cancelAt < 0 {
			require.Truef(t, r.Terminated(), "chain %s did not terminate", name)
		}
	}
}
