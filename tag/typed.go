package tag

// StringTag is a Tag of KindString with a statically typed Set.
type StringTag struct{ *Tag }

// String declares a StringTag, panicking on an invalid declaration.
func String(name string, opts ...Option) StringTag {
	return StringTag{MustDeclare(name, KindString, opts...)}
}

// Set writes v onto span. It only fails if the tag has a vocabulary that
// doesn't include v.
func (t StringTag) Set(span Span, v string) error { return t.Tag.Set(span, v) }

// IntTag is a Tag of KindInt with a statically typed Set.
type IntTag struct{ *Tag }

// Int declares an IntTag, panicking on an invalid declaration.
func Int(name string, opts ...Option) IntTag {
	return IntTag{MustDeclare(name, KindInt, opts...)}
}

// Set writes v onto span.
func (t IntTag) Set(span Span, v int64) { t.Tag.MustSet(span, v) }

// BoolTag is a Tag of KindBool with a statically typed Set.
type BoolTag struct{ *Tag }

// Bool declares a BoolTag, panicking on an invalid declaration.
func Bool(name string, opts ...Option) BoolTag {
	return BoolTag{MustDeclare(name, KindBool, opts...)}
}

// Set writes v onto span.
func (t BoolTag) Set(span Span, v bool) { t.Tag.MustSet(span, v) }
