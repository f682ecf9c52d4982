package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// loggingSpan is a composite Span logging changes to it using the given
// Logger.
type loggingSpan struct {
	Span

	provider TracerProvider
	log      Logger
	err      *error
	errFn    ErrRegisterFunc
}

const (
	spanNameKey              = "span-name"
	spanEventKey             = "span-event"
	spanStatusCodeKey        = "span-status-code"
	spanStatusDescriptionKey = "span-status-description"
	// SpanAttributePrefix is the prefix used when logging an attribute registered
	// with a Span.
	SpanAttributePrefix = "span-attr-"
)

func (s *loggingSpan) TracerProvider() trace.TracerProvider { return s.provider }

func (s *loggingSpan) End(options ...trace.SpanEndOption) {
	log := s.log.WithCallDepth(1)
	if s.err != nil && s.errFn != nil {
		s.errFn(*s.err, s, log)
	}

	log.Info("ending span")
	s.Span.End(options...)
}

func (s *loggingSpan) AddEvent(name string, options ...trace.EventOption) {
	s.log.WithCallDepth(1).Info("span event", spanEventKey, name)
	s.Span.AddEvent(name, options...)
}

func (s *loggingSpan) RecordError(err error, options ...trace.EventOption) {
	s.log.WithCallDepth(1).Error(err, "span error")
	s.Span.RecordError(err, options...)
}

func (s *loggingSpan) SetStatus(code codes.Code, description string) {
	// The description is only meaningful for errors.
	args := []interface{}{spanStatusCodeKey, code.String()}
	if code == codes.Error {
		args = append(args, spanStatusDescriptionKey, description)
	}
	s.log.WithCallDepth(1).Info("span status change", args...)
	s.Span.SetStatus(code, description)
}

func (s *loggingSpan) SetName(name string) {
	s.log.WithCallDepth(1).Info("span name change", spanNameKey, name)
	s.Span.SetName(name)
}

func (s *loggingSpan) SetAttributes(kv ...attribute.KeyValue) {
	s.log.WithCallDepth(1).Info("span attribute change", kvListToLogAttrs(kv)...)
	s.Span.SetAttributes(kv...)
}

func kvListToLogAttrs(kv []attribute.KeyValue) []interface{} {
	attrs := make([]interface{}, 0, len(kv)*2)
	for _, item := range kv {
		attrs = append(attrs, SpanAttributePrefix+string(item.Key), item.Value.AsInterface())
	}
	return attrs
}
