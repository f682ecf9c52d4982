package traceyaml

import (
	"sync"
)

// SpanInfo captures all events, errors, names, attributes, configuration
// and children that can be registered to a span in the order they were
// registered.
type SpanInfo struct {
	Name          string      `json:"name" yaml:"name"`
	NameChanges   []string    `json:"nameChanges,omitempty" yaml:"nameChanges,omitempty"`
	StartConfig   *SpanConfig `json:"startConfig,omitempty" yaml:"startConfig,omitempty"`
	Events        []Event     `json:"events,omitempty" yaml:"events,omitempty"`
	Errors        []Error     `json:"errors,omitempty" yaml:"errors,omitempty"`
	StatusChanges []Status    `json:"statusChanges,omitempty" yaml:"statusChanges,omitempty"`
	Attributes    []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	EndConfig     *SpanConfig `json:"endConfig,omitempty" yaml:"endConfig,omitempty"`

	Children []*SpanInfo `json:"children,omitempty" yaml:"children,omitempty"`

	mu      *sync.Mutex
	isChild bool
	ended   bool
}

// Event represents an event registered using span.AddEvent().
type Event struct {
	Name       string      `json:"name" yaml:"name"`
	Attributes []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Error represents an error registered using span.RecordError().
type Error struct {
	Error      string      `json:"error" yaml:"error"`
	Attributes []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Status represents a status update registered using span.SetStatus().
// Description is only set for errors.
type Status struct {
	Code        string `json:"code" yaml:"code"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// SpanConfig is created from []trace.SpanStartOption or []trace.SpanEndOption.
type SpanConfig struct {
	Attributes []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Links      int         `json:"links,omitempty" yaml:"links,omitempty"`
	NewRoot    bool        `json:"newRoot,omitempty" yaml:"newRoot,omitempty"`
	SpanKind   string      `json:"spanKind,omitempty" yaml:"spanKind,omitempty"`
}

// Attribute is a typed key-value pair registered with a span. Type is the
// name of the attribute.Type, for example "STRING" or "INT64".
type Attribute struct {
	Key   string      `json:"key" yaml:"key"`
	Type  string      `json:"type" yaml:"type"`
	Value interface{} `json:"value" yaml:"value"`
}

// Ended tells whether End() has been called for the span.
func (s *SpanInfo) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// Attribute returns the last value registered for key, either at span
// start or through SetAttributes.
func (s *SpanInfo) Attribute(key string) (Attribute, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.Attributes) - 1; i >= 0; i-- {
		if s.Attributes[i].Key == key {
			return s.Attributes[i], true
		}
	}
	if s.StartConfig != nil {
		for i := len(s.StartConfig.Attributes) - 1; i >= 0; i-- {
			if s.StartConfig.Attributes[i].Key == key {
				return s.StartConfig.Attributes[i], true
			}
		}
	}
	return Attribute{}, false
}

// Find returns the first span named name in a depth-first walk starting
// from s, or nil.
func (s *SpanInfo) Find(name string) *SpanInfo {
	if s.Name == name {
		return s
	}
	s.mu.Lock()
	children := append([]*SpanInfo(nil), s.Children...)
	s.mu.Unlock()

	for _, child := range children {
		if found := child.Find(name); found != nil {
			return found
		}
	}
	return nil
}
