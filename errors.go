package drx

import "errors"

// ErrNilProducer is the [GenerateError] cause
// when a generator is constructed without a production function.
var ErrNilProducer = errors.New("nil production function")

// GenerateError is returned when a generator cannot be constructed
// from the configuration it was given.
//
// It describes a setup failure, not a stream failure:
// an Observable that was built successfully reports its failures
// through OnError instead.
type GenerateError struct {
	// Name of the generator that rejected its configuration,
	// such as "Range" or "dcron.Schedule".
	Generator string

	// Human-readable description of what was wrong.
	Reason string

	// Underlying cause, if any.
	Err error
}

func (e *GenerateError) Error() string {
	msg := "drx: invalid " + e.Generator + " configuration: " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GenerateError) Unwrap() error {
	return e.Err
}
