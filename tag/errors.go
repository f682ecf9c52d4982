package tag

import (
	"errors"
	"fmt"
)

var (
	// ErrKindMismatch is matched by every *KindMismatchError using errors.Is.
	ErrKindMismatch = &KindMismatchError{}
	// ErrNotInVocabulary is matched by every *VocabularyError using errors.Is.
	ErrNotInVocabulary = &VocabularyError{}
	// ErrDuplicateTag is matched by every *DuplicateTagError using errors.Is.
	ErrDuplicateTag = &DuplicateTagError{}

	errEmptyName = errors.New("tag name must not be empty")
)

// KindMismatchError is returned when a value of one kind is written through
// a Tag declared with another kind. It indicates a bug in the caller, and
// is never recovered from by this package.
type KindMismatchError struct {
	// Tag is the name of the tag, if known.
	Tag string
	// Want is the declared kind of the tag.
	Want Kind
	// Got is the kind of the given value, zero if the value has no kind.
	Got Kind
	// Value is the offending value.
	Value interface{}
}

func (e *KindMismatchError) Error() string {
	got := e.Got.String()
	if !ValidKind(e.Got) {
		got = fmt.Sprintf("%T", e.Value)
	}
	msg := fmt.Sprintf("kind mismatch: want %s, got %s (%#v)", e.Want, got, e.Value)
	if len(e.Tag) != 0 {
		msg = fmt.Sprintf("tag %q: %s", e.Tag, msg)
	}
	return msg
}

func (e *KindMismatchError) Is(target error) bool {
	//nolint:errorlint
	_, ok := target.(*KindMismatchError)
	return ok
}

// ValueRangeError is returned when an unsigned integer does not fit in the
// int64 an Integer tag stores.
type ValueRangeError struct {
	Tag   string
	Value interface{}
}

func (e *ValueRangeError) Error() string {
	return fmt.Sprintf("tag %q: value %v overflows int64", e.Tag, e.Value)
}

// VocabularyError is returned when a string outside a tag's closed
// vocabulary is written to it.
type VocabularyError struct {
	Tag        string
	Value      string
	Vocabulary []string
}

func (e *VocabularyError) Error() string {
	return fmt.Sprintf("tag %q: value %q is not one of %q", e.Tag, e.Value, e.Vocabulary)
}

func (e *VocabularyError) Is(target error) bool {
	//nolint:errorlint
	_, ok := target.(*VocabularyError)
	return ok
}

// DuplicateTagError is returned by a Registry when a tag name is declared a
// second time with a different definition.
type DuplicateTagError struct {
	Name     string
	Existing *Tag
}

func (e *DuplicateTagError) Error() string {
	if e.Existing == nil {
		return fmt.Sprintf("tag %q already declared", e.Name)
	}
	return fmt.Sprintf("tag %q already declared with kind %s", e.Name, e.Existing.Kind())
}

func (e *DuplicateTagError) Is(target error) bool {
	//nolint:errorlint
	_, ok := target.(*DuplicateTagError)
	return ok
}
