package tag

import (
	"sync"

	"go.opentelemetry.io/otel/attribute"
)

var _ Span = &Bag{}

// Bag is an in-memory attribute bag. Values are keyed by tag name and
// overwritten on repeated writes; nothing is ever removed. A Bag can collect
// tags before a span exists, and hand them over as start options using
// trace.WithAttributes(bag.Attributes()...).
//
// A Bag is safe for concurrent use.
type Bag struct {
	mu    sync.Mutex
	vals  map[attribute.Key]attribute.Value
	order []attribute.Key
}

// NewBag returns an empty *Bag.
func NewBag() *Bag { return &Bag{} }

// SetAttributes implements Span.
func (b *Bag) SetAttributes(kv ...attribute.KeyValue) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.vals == nil {
		b.vals = make(map[attribute.Key]attribute.Value, len(kv))
	}
	for _, item := range kv {
		if _, ok := b.vals[item.Key]; !ok {
			b.order = append(b.order, item.Key)
		}
		b.vals[item.Key] = item.Value
	}
}

// Get returns the value stored for t, and its kind.
func (b *Bag) Get(t *Tag) (attribute.Value, Kind, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	v, ok := b.vals[t.Key()]
	if !ok {
		return attribute.Value{}, 0, false
	}
	k, _ := kindOfValue(v)
	return v, k, true
}

// Len returns the number of distinct keys written.
func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.order)
}

// Attributes returns the stored attributes in the order their keys were
// first written.
func (b *Bag) Attributes() []attribute.KeyValue {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]attribute.KeyValue, 0, len(b.order))
	for _, k := range b.order {
		out = append(out, attribute.KeyValue{Key: k, Value: b.vals[k]})
	}
	return out
}

// CopyTo writes all stored attributes onto span.
func (b *Bag) CopyTo(span Span) {
	if attrs := b.Attributes(); len(attrs) != 0 {
		span.SetAttributes(attrs...)
	}
}
