package match

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrInvalidMatcher is the sentinel for *InvalidMatcherError.
//nolint:gochecknoglobals
var ErrInvalidMatcher = &InvalidMatcherError{}

// InvalidMatcherError describes a matcher that was constructed with
// arguments that can never match anything sensible.
type InvalidMatcherError struct {
	Matcher string
	Reason  string
}

func (e *InvalidMatcherError) Error() string {
	return fmt.Sprintf("invalid matcher %s: %s", e.Matcher, e.Reason)
}

// Is returns true if target is an *InvalidMatcherError.
func (e *InvalidMatcherError) Is(target error) bool {
	_, ok := target.(*InvalidMatcherError) //nolint:errorlint
	return ok
}

func invalid(matcher, reason string) error {
	return &InvalidMatcherError{Matcher: matcher, Reason: reason}
}

type validator interface {
	validate() error
}

// Validate checks a ClassMatcher or MemberMatcher, and any matchers it is
// composed of. Matchers implemented outside of this package are assumed to
// be valid, unless they are nil.
func Validate(m interface{}) error {
	if isNil(m) {
		return invalid("<nil>", "matcher is nil")
	}
	if v, ok := m.(validator); ok {
		return v.validate()
	}
	return nil
}

// IsInvalid returns true if err was caused by an invalid matcher.
func IsInvalid(err error) bool { return errors.Is(err, ErrInvalidMatcher) }

func isNil(m interface{}) bool {
	if m == nil {
		return true
	}
	v := reflect.ValueOf(m)
	switch v.Kind() { //nolint:exhaustive
	case reflect.Ptr, reflect.Func, reflect.Map, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
