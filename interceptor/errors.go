package interceptor

import "fmt"

//nolint:gochecknoglobals
var (
	// ErrUnresolved is the sentinel for *UnresolvedError.
	ErrUnresolved = &UnresolvedError{}
	// ErrArgumentsReadOnly is the sentinel for *ArgumentsReadOnlyError.
	ErrArgumentsReadOnly = &ArgumentsReadOnlyError{}
)

// UnresolvedError is returned when a Ref can't be resolved to an
// interceptor of the wanted Kind.
type UnresolvedError struct {
	Ref  Ref
	Kind Kind
	// Registered is true if Ref is registered, but for the other Kind.
	Registered bool
}

func (e *UnresolvedError) Error() string {
	if e.Registered {
		return fmt.Sprintf("interceptor %q is not a %s interceptor", e.Ref, e.Kind)
	}
	return fmt.Sprintf("no %s interceptor registered as %q", e.Kind, e.Ref)
}

// Is returns true if target is an *UnresolvedError.
func (e *UnresolvedError) Is(target error) bool {
	_, ok := target.(*UnresolvedError) //nolint:errorlint
	return ok
}

// ArgumentsReadOnlyError is returned when an interceptor tries to replace
// the arguments of a call it was not allowed to.
type ArgumentsReadOnlyError struct {
	Method string
}

func (e *ArgumentsReadOnlyError) Error() string {
	return fmt.Sprintf("arguments of %s are read-only: the intercept point does not override arguments", e.Method)
}

// Is returns true if target is an *ArgumentsReadOnlyError.
func (e *ArgumentsReadOnlyError) Is(target error) bool {
	_, ok := target.(*ArgumentsReadOnlyError) //nolint:errorlint
	return ok
}
