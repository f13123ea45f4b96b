// Package dtrace wraps drx Observables in OpenTelemetry spans.
//
// The type aliases here let callers configure tracing
// while only referencing the dtrace package.
package dtrace

import (
	otelattr "go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	otpnoop "go.opentelemetry.io/otel/trace/noop"
)

type TracerProvider = oteltrace.TracerProvider

type Tracer = oteltrace.Tracer

type KeyValueAttr = otelattr.KeyValue

// NopTracerProvider returns the otel no-op tracer provider.
// This is intended to use as a fallback when a nil tracer provider is given.
func NopTracerProvider() TracerProvider {
	return otpnoop.NewTracerProvider()
}

// StringAttr is an alias to [otelattr.String].
func StringAttr(key, val string) KeyValueAttr {
	return otelattr.String(key, val)
}

// SpanError sets the given span to error status,
// with detail from err.Error().
func SpanError(span oteltrace.Span, err error) {
	span.SetStatus(otelcodes.Error, err.Error())
}

// ErrorAttr returns an attribute with the key "err"
// and the lazily evaluated value of err's Error() method.
func ErrorAttr(err error) KeyValueAttr {
	return otelattr.Stringer("err", errStringer{err: err})
}

type errStringer struct {
	err error
}

func (e errStringer) String() string {
	return e.err.Error()
}
