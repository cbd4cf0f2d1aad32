// Package htrace wraps the OpenTelemetry tracing API
// so that the rest of the module only references one package.
package htrace

import (
	"encoding/hex"

	otelattr "go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
	otpnoop "go.opentelemetry.io/otel/trace/noop"
)

type TracerProvider = oteltrace.TracerProvider

type Tracer = oteltrace.Tracer

type Span = oteltrace.Span

type KeyValueAttr = otelattr.KeyValue

// TracerName is the instrumentation name used for every tracer in this module.
const TracerName = "github.com/gordian-engine/hashtree"

// NopTracerProvider returns the otel no-op tracer provider.
// This is intended to use as a fallback when a nil tracer provider is given.
func NopTracerProvider() TracerProvider {
	return otpnoop.NewTracerProvider()
}

// NewTracer returns the module tracer from tp,
// or from the no-op provider if tp is nil.
func NewTracer(tp TracerProvider) Tracer {
	if tp == nil {
		tp = NopTracerProvider()
	}
	return tp.Tracer(TracerName)
}

// WithAttributes is an alias to [oteltrace.WithAttributes]
// to allow consumers to only reference the htrace package.
func WithAttributes(attrs ...KeyValueAttr) oteltrace.SpanStartEventOption {
	return oteltrace.WithAttributes(attrs...)
}

// HexAttr returns a string attribute holding val in lowercase hex.
// Formatting happens immediately,
// so callers should check Span.IsRecording first on hot paths.
func HexAttr(key string, val []byte) KeyValueAttr {
	return otelattr.String(key, hex.EncodeToString(val))
}

func LeafCountAttr(n int) KeyValueAttr {
	return otelattr.Int("hashtree.leaves", n)
}

func HeightAttr(h int) KeyValueAttr {
	return otelattr.Int("hashtree.height", h)
}

func LeafWorkersAttr(n int) KeyValueAttr {
	return otelattr.Int("hashtree.leaf_workers", n)
}
