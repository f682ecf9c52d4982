package tag_test

import (
	"testing"

	"github.com/luxas/deklarative/instrument/tag"
	"github.com/luxas/deklarative/instrument/tag/tagfakes"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestTag_SetWritesOneAttribute(t *testing.T) {
	s := &tagfakes.FakeSpan{}

	assert.NoError(t, tag.DBStatement.Set(s, "GET foo"))
	assert.Error(t, tag.DBStatement.Tag.Set(s, 42))
	tag.StatusCode.Set(s, 503)

	assert.Equal(t, 2, s.SetAttributesCallCount())
	assert.Equal(t,
		[]attribute.KeyValue{attribute.String("db.statement", "GET foo")},
		s.SetAttributesArgsForCall(0))
	assert.Equal(t,
		[]attribute.KeyValue{attribute.Int64("status_code", 503)},
		s.SetAttributesArgsForCall(1))
}

func TestBag_CopyTo(t *testing.T) {
	bag := tag.NewBag()
	assert.NoError(t, tag.HTTP.Method.Set(bag, "GET"))
	tag.StatusCode.Set(bag, 200)

	s := &tagfakes.FakeSpan{}
	bag.CopyTo(s)
	assert.Equal(t, 1, s.SetAttributesCallCount())
	assert.Equal(t, []attribute.KeyValue{
		attribute.String("http.method", "GET"),
		attribute.Int64("status_code", 200),
	}, s.SetAttributesArgsForCall(0))

	empty := &tagfakes.FakeSpan{}
	tag.NewBag().CopyTo(empty)
	assert.Equal(t, 0, empty.SetAttributesCallCount())
}
