package traceyaml

import (
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func (s *SpanInfo) newChild(spanName string, opts ...trace.SpanStartOption) *SpanInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	child := newSpanInfo(spanName, opts...)
	child.isChild = true
	s.Children = append(s.Children, child)
	return child
}

func newSpanInfo(spanName string, opts ...trace.SpanStartOption) *SpanInfo {
	return &SpanInfo{
		Name:        spanName,
		StartConfig: spanConfigFromStart(opts...),
		mu:          &sync.Mutex{},
	}
}

func newAttrs(attrList []attribute.KeyValue) []Attribute {
	if len(attrList) == 0 {
		return nil
	}
	return attrsInto(make([]Attribute, 0, len(attrList)), attrList)
}

// attrsInto sets the attributes of attrList in attrs. Existing keys are
// overwritten in place, new keys are appended.
func attrsInto(attrs []Attribute, attrList []attribute.KeyValue) []Attribute {
outer:
	for _, kv := range attrList {
		attr := Attribute{
			Key:   string(kv.Key),
			Type:  kv.Value.Type().String(),
			Value: kv.Value.AsInterface(),
		}
		for i := range attrs {
			if attrs[i].Key == attr.Key {
				attrs[i] = attr
				continue outer
			}
		}
		attrs = append(attrs, attr)
	}
	return attrs
}

func spanConfigFromStart(opts ...trace.SpanStartOption) *SpanConfig {
	if len(opts) == 0 {
		return nil
	}
	cfg := trace.NewSpanStartConfig(opts...)
	return spanConfigFrom(&cfg)
}

func spanConfigFromEnd(opts ...trace.SpanEndOption) *SpanConfig {
	if len(opts) == 0 {
		return nil
	}
	cfg := trace.NewSpanEndConfig(opts...)
	return spanConfigFrom(&cfg)
}

func spanConfigFrom(sc *trace.SpanConfig) *SpanConfig {
	out := &SpanConfig{
		Attributes: newAttrs(sc.Attributes()),
		Links:      len(sc.Links()),
		NewRoot:    sc.NewRoot(),
	}
	if kind := sc.SpanKind(); kind != trace.SpanKindUnspecified {
		out.SpanKind = kind.String()
	}
	return out
}

func eventAttrs(opts ...trace.EventOption) []Attribute {
	cfg := trace.NewEventConfig(opts...)
	return newAttrs(cfg.Attributes())
}

func statusFrom(code codes.Code, description string) Status {
	st := Status{Code: code.String()}
	if code == codes.Error {
		st.Description = description
	}
	return st
}

func errorFrom(err error, opts ...trace.EventOption) Error {
	return Error{
		Error:      fmt.Sprintf("%v", err),
		Attributes: eventAttrs(opts...),
	}
}
