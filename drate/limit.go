// Package drate contains a rate-limiting operator for drx Observables.
package drate

import (
	"log/slog"

	"github.com/gordian-engine/drx"
	"golang.org/x/time/rate"
)

// Config is the configuration for [Limit].
type Config struct {
	// Limiter consulted once per item.
	// It may be shared between several streams to give them a common budget.
	Limiter *rate.Limiter

	// Optional; dropped items are logged at debug level.
	Log *slog.Logger
}

// Limit returns an Observable producing the items of src
// that cfg.Limiter allows at the moment they arrive.
// Items over the limit are dropped rather than delayed,
// so the upstream is never blocked and nothing is buffered.
// Terminal notifications always pass through.
func Limit[T any](src drx.Observable[T], cfg Config) (drx.Observable[T], error) {
	if cfg.Limiter == nil {
		return nil, &drx.GenerateError{
			Generator: "drate.Limit",
			Reason:    "Limiter must be set",
		}
	}

	lim := cfg.Limiter
	log := cfg.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return drx.Filter(src, func(T) bool {
		if lim.Allow() {
			return true
		}
		log.Debug("Dropping item over rate limit", "limit", lim.Limit(), "burst", lim.Burst())
		return false
	}), nil
}
