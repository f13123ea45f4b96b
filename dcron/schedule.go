// Package dcron exposes cron schedules as drx Observables.
package dcron

import (
	"context"
	"log/slog"
	"time"

	"github.com/gordian-engine/drx"
	"github.com/robfig/cron/v3"
)

// parser accepts standard five-field specs, an optional leading seconds field,
// and descriptors such as "@hourly" or "@every 10m".
var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Config is the configuration for [Schedule].
type Config struct {
	// Cron expression.
	Spec string

	// Time zone the expression is evaluated in.
	// Defaults to [time.Local].
	Location *time.Location

	// Clock hooks, defaulting to [time.Now] and [time.After].
	// Tests override these to avoid real waiting.
	Now   func() time.Time
	After func(time.Duration) <-chan time.Time

	// Optional; defaults to discarding all output.
	Log *slog.Logger
}

// Schedule returns an Observable producing the activation times of cfg.Spec.
//
// Each subscription starts from the current time
// and waits for each activation in turn inside Subscribe,
// so it is normally used with [drx.SubscribeOn].
// The produced value is the scheduled activation time,
// not the possibly later time the wait ended.
//
// The stream completes if the schedule has no further activations,
// and otherwise runs until the subscription is cancelled.
// A spec that does not parse is reported as a [*drx.GenerateError].
func Schedule(cfg Config) (drx.Observable[time.Time], error) {
	sched, err := parser.Parse(cfg.Spec)
	if err != nil {
		return nil, &drx.GenerateError{
			Generator: "dcron.Schedule",
			Reason:    "failed to parse spec " + `"` + cfg.Spec + `"`,
			Err:       err,
		}
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	after := cfg.After
	if after == nil {
		after = time.After
	}
	log := cfg.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return drx.Generate(func(ctx context.Context, out drx.Observer[time.Time]) {
		prev := now().In(loc)
		for {
			next := sched.Next(prev)
			if next.IsZero() {
				log.Debug("Schedule has no further activations", "spec", cfg.Spec, "after", prev)
				out.OnCompleted()
				return
			}

			wait := max(next.Sub(now()), 0)
			select {
			case <-ctx.Done():
				return
			case <-after(wait):
			}

			out.OnNext(next)
			prev = next
		}
	})
}
