package tracing

import (
	"fmt"
)

// TracerNamed is an interface that allows types to customize their
// name shown in traces and logs.
type TracerNamed interface {
	TracerName() string
}

// tracerName resolves the name of the tracer for the actor. Interceptor
// references and other string-like actors are used as-is.
func tracerName(obj interface{}) string {
	switch t := obj.(type) {
	case nil:
		return ""
	case string:
		return t
	case TracerNamed:
		return t.TracerName()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%T", obj)
	}
}

// fmtSpanName appends the name of the given function (spanName) to the tracer
// name, if set.
func fmtSpanName(tracerName, spanName string) string {
	if len(tracerName) != 0 && len(spanName) != 0 {
		return tracerName + "." + spanName
	}
	// Either (or both) are empty, so they can be concatenated.
	if name := tracerName + spanName; len(name) != 0 {
		return name
	}
	return "<unnamed_span>"
}
