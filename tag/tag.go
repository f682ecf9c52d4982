// Package tag implements typed, named span attributes.
//
// A Tag is declared once, usually as a package-level variable, with a name
// and a Kind. Writing a value through the Tag onto a span only succeeds if
// the value has the declared Kind; nothing is ever coerced. Tags that
// describe a closed set of categories (for example the layer of a span)
// additionally carry a vocabulary, and the sum types Layer and SpanKind are
// the intended way of writing them.
//
// Spans are anything with a SetAttributes(...attribute.KeyValue) method, in
// particular go.opentelemetry.io/otel/trace.Span.
package tag

import (
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
)

// Span is the part of a span the tag model writes to. It is implemented by
// trace.Span, and by *Bag.
type Span interface {
	SetAttributes(kv ...attribute.KeyValue)
}

// Option configures a Tag at declaration time.
type Option interface {
	applyToTag(t *Tag) error
}

type optionFunc func(t *Tag) error

func (f optionFunc) applyToTag(t *Tag) error { return f(t) }

// WithDefault declares the value a span gets for this tag when an
// interceptor seeds it using SetDefault. The default must have the kind of
// the tag.
func WithDefault(v interface{}) Option {
	return optionFunc(func(t *Tag) error {
		val, err := toValue(t.kind, v)
		if err != nil {
			return err
		}
		t.def = val
		t.hasDef = true
		return nil
	})
}

// WithVocabulary restricts a String tag to the given values. Writes of any
// other string fail with a *VocabularyError.
func WithVocabulary(values ...string) Option {
	return vocabularyOption(values)
}

type vocabularyOption []string

func (o vocabularyOption) applyToTag(t *Tag) error {
	if t.kind != KindString {
		return fmt.Errorf("tag %q: vocabulary requires kind %s, not %s", t.name, KindString, t.kind)
	}
	if len(o) == 0 {
		return fmt.Errorf("tag %q: empty vocabulary", t.name)
	}
	t.vocabulary = append([]string(nil), o...)
	return nil
}

// Tag is an immutable descriptor of a span attribute: a name, the Kind of
// the values it accepts, an optional default and an optional vocabulary.
//
// A *Tag is safe for concurrent use.
type Tag struct {
	name       string
	kind       Kind
	def        attribute.Value
	hasDef     bool
	vocabulary []string
}

// Declare creates a new Tag. Declare does not register the Tag anywhere; use
// Registry.Declare for that.
func Declare(name string, kind Kind, opts ...Option) (*Tag, error) {
	if len(name) == 0 {
		return nil, errEmptyName
	}
	if !ValidKind(kind) {
		return nil, fmt.Errorf("tag %q: invalid kind %s", name, kind)
	}
	t := &Tag{name: name, kind: kind}
	// Vocabularies are applied before defaults, so the default can be
	// checked against it regardless of option order.
	for _, opt := range sortOptions(opts) {
		if err := opt.applyToTag(t); err != nil {
			return nil, withTagName(err, name)
		}
	}
	if t.hasDef && t.kind == KindString {
		if err := t.checkVocabulary(t.def.AsString()); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// MustDeclare is like Declare, but panics on error. It is meant for
// package-level tag variables.
func MustDeclare(name string, kind Kind, opts ...Option) *Tag {
	t, err := Declare(name, kind, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the name of the tag, which is also the attribute key.
func (t *Tag) Name() string { return t.name }

// Kind returns the declared kind.
func (t *Tag) Kind() Kind { return t.kind }

// Key returns the attribute key values are written under.
func (t *Tag) Key() attribute.Key { return attribute.Key(t.name) }

// Default returns the declared default, if any.
func (t *Tag) Default() (attribute.Value, bool) { return t.def, t.hasDef }

// Vocabulary returns a copy of the closed set of values this tag accepts,
// or nil if any value of the tag's kind is accepted.
func (t *Tag) Vocabulary() []string {
	if t.vocabulary == nil {
		return nil
	}
	return append([]string(nil), t.vocabulary...)
}

func (t *Tag) String() string { return t.name + "(" + t.kind.String() + ")" }

// KeyValue converts v to an attribute.KeyValue for this tag, validating
// kind and vocabulary. It is useful for passing tags as span start options.
func (t *Tag) KeyValue(v interface{}) (attribute.KeyValue, error) {
	val, err := toValue(t.kind, v)
	if err != nil {
		return attribute.KeyValue{}, withTagName(err, t.name)
	}
	if t.kind == KindString {
		if err := t.checkVocabulary(val.AsString()); err != nil {
			return attribute.KeyValue{}, err
		}
	}
	return attribute.KeyValue{Key: t.Key(), Value: val}, nil
}

// Set writes v onto span under this tag, replacing any value the span
// already had for it. If v is not of the tag's kind, or not in the tag's
// vocabulary, nothing is written and the error is returned.
func (t *Tag) Set(span Span, v interface{}) error {
	kv, err := t.KeyValue(v)
	if err != nil {
		return err
	}
	span.SetAttributes(kv)
	return nil
}

// MustSet is like Set, but panics on error. A kind mismatch is a bug in the
// interceptor, and MustSet makes it surface in tests.
func (t *Tag) MustSet(span Span, v interface{}) {
	if err := t.Set(span, v); err != nil {
		panic(err)
	}
}

// SetDefault writes the declared default onto span, and returns false if
// the tag has no default.
func (t *Tag) SetDefault(span Span) bool {
	if !t.hasDef {
		return false
	}
	span.SetAttributes(attribute.KeyValue{Key: t.Key(), Value: t.def})
	return true
}

// sameAs returns true if o declares the same tag as t.
func (t *Tag) sameAs(o *Tag) bool {
	if t.name != o.name || t.kind != o.kind || t.hasDef != o.hasDef {
		return false
	}
	if t.hasDef && t.def != o.def {
		return false
	}
	if len(t.vocabulary) != len(o.vocabulary) {
		return false
	}
	for i := range t.vocabulary {
		if t.vocabulary[i] != o.vocabulary[i] {
			return false
		}
	}
	return true
}

func (t *Tag) checkVocabulary(s string) error {
	if t.vocabulary == nil {
		return nil
	}
	for _, v := range t.vocabulary {
		if v == s {
			return nil
		}
	}
	return &VocabularyError{Tag: t.name, Value: s, Vocabulary: t.Vocabulary()}
}

func sortOptions(opts []Option) []Option {
	sorted := make([]Option, 0, len(opts))
	var rest []Option
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if _, ok := opt.(vocabularyOption); ok {
			sorted = append(sorted, opt)
			continue
		}
		rest = append(rest, opt)
	}
	return append(sorted, rest...)
}

func withTagName(err error, name string) error {
	var kindErr *KindMismatchError
	if errors.As(err, &kindErr) && len(kindErr.Tag) == 0 {
		kindErr.Tag = name
	}
	var rangeErr *ValueRangeError
	if errors.As(err, &rangeErr) && len(rangeErr.Tag) == 0 {
		rangeErr.Tag = name
	}
	return err
}
